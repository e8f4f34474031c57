// Package rebrandly is a client of the Rebrandly links API.
package rebrandly

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"dslf/internal/domain/models"
	jsonmodels "dslf/internal/domain/models/json"
	"dslf/internal/httpclient"
	"dslf/internal/provider"
)

// Name is the provider name accepted by the import command.
const Name = "rebrandly"

// DefaultBaseURL - Rebrandly API root.
const DefaultBaseURL = "https://api.rebrandly.com"

// MaxPageSize is the largest page the API serves.
const MaxPageSize = 25

// Environment variables holding the API key, in lookup order.
const (
	EnvAPIKey = "REBRANDLY_API_KEY"
	EnvToken  = "REBRANDLY_TOKEN"
)

const maxErrorBody = 4 << 10

// Client implements provider.LinkProvider over the Rebrandly API.
type Client struct {
	doer     httpclient.HTTPDoer
	baseURL  string
	apiKey   string
	pageSize int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithPageSize sets the requested page size, capped at MaxPageSize.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 && n <= MaxPageSize {
			c.pageSize = n
		}
	}
}

// NewClient - constructor for Client.
func NewClient(doer httpclient.HTTPDoer, apiKey string, opts ...Option) *Client {
	c := &Client{
		doer:     doer,
		baseURL:  DefaultBaseURL,
		apiKey:   apiKey,
		pageSize: MaxPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIKeyFromEnv returns REBRANDLY_API_KEY, falling back to REBRANDLY_TOKEN.
func APIKeyFromEnv() (string, error) {
	for _, key := range []string{EnvAPIKey, EnvToken} {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val, nil
		}
	}
	return "", fmt.Errorf("%w: %s or %s environment variable not set", provider.ErrMissingCredentials, EnvAPIKey, EnvToken)
}

// PageSize returns the number of links requested per page.
func (c *Client) PageSize() int {
	return c.pageSize
}

// FetchPage requests the page after cursor. Inactive links are dropped from the result
// but still count towards Full and Cursor.
func (c *Client) FetchPage(ctx context.Context, cursor string) (provider.LinkPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(cursor), nil)
	if err != nil {
		return provider.LinkPage{}, fmt.Errorf("build rebrandly request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.doer.Do(req)
	if err != nil {
		return provider.LinkPage{}, fmt.Errorf("rebrandly request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := classifyStatus(resp); err != nil {
		return provider.LinkPage{}, err
	}

	var raw []jsonmodels.RebrandlyLink
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return provider.LinkPage{}, fmt.Errorf("decode rebrandly links: %w", err)
	}

	page := provider.LinkPage{Full: len(raw) == c.pageSize}
	if len(raw) > 0 {
		page.Cursor = raw[len(raw)-1].ID
	}
	for _, l := range raw {
		if !l.Active() {
			continue
		}
		page.Links = append(page.Links, toImportedLink(l))
	}
	return page, nil
}

func (c *Client) pageURL(cursor string) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(c.pageSize))
	if cursor != "" {
		q.Set("last", cursor)
	}
	return c.baseURL + "/v1/links?" + q.Encode()
}

func classifyStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return provider.ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", provider.ErrUnauthorized, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &provider.StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
}

// toImportedLink maps a link to this service's path, percent-encoding the slashtag the way
// clients request it.
func toImportedLink(l jsonmodels.RebrandlyLink) models.ImportedLink {
	path := strings.TrimSpace(l.Slashtag)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return models.ImportedLink{
		ShortPath:   (&url.URL{Path: path}).EscapedPath(),
		Destination: strings.TrimSpace(l.Destination),
		Domain:      l.Domain.FullName,
	}
}

var _ provider.LinkProvider = (*Client)(nil)
