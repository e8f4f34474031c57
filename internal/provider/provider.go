// Package provider defines the seam between the importer and link-shortener APIs.
package provider

import (
	"context"
	"errors"
	"fmt"

	"dslf/internal/domain/models"
)

// ErrRateLimited - the provider answered 429; the request may be retried later.
var ErrRateLimited = errors.New("rate limited by provider")

// ErrUnauthorized - the provider rejected the credentials.
var ErrUnauthorized = errors.New("unauthorized by provider")

// ErrMissingCredentials - no API key is configured for the provider.
var ErrMissingCredentials = errors.New("missing provider credentials")

// ErrUnsupportedProvider - no importer exists for the requested provider name.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// StatusError - the provider answered with an unexpected HTTP status.
type StatusError struct {
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("provider API error %d", e.StatusCode)
	}
	return fmt.Sprintf("provider API error %d: %s", e.StatusCode, e.Body)
}

// LinkPage - one page of links.
type LinkPage struct {
	// Links: importable links of the page, already filtered by the provider client.
	Links []models.ImportedLink
	// Cursor: opaque position of the last raw link, empty when the page was empty.
	Cursor string
	// Full: the page held as many raw links as requested, so more may follow.
	Full bool
}

// LinkProvider fetches links one page at a time.
type LinkProvider interface {
	FetchPage(ctx context.Context, cursor string) (LinkPage, error)
	PageSize() int
}
