// Package httpclient holds the outbound HTTP seam shared by the validator and the importers.
package httpclient

import (
	"net/http"
	"time"
)

//go:generate mockgen -destination=../mocks/mock_httpclient.go -package=mocks dslf/internal/httpclient HTTPDoer

// HTTPDoer captures the subset of *http.Client the probes and provider clients rely on.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// New returns a client that never follows redirects, so a probe sees the first answer of a target.
// Per-request deadlines come from the request context.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

var _ HTTPDoer = (*http.Client)(nil)
