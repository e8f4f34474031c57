// Package httpclienttest provides an in-memory HTTPDoer for tests.
package httpclienttest

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"dslf/internal/httpclient"
)

// FakeDoer implements httpclient.HTTPDoer and answers from a queue of responses.
type FakeDoer struct {
	t         testing.TB
	mu        sync.Mutex
	responses []*http.Response
	requests  []*http.Request
}

// NewFakeDoer returns a FakeDoer seeded with the responses returned by successive Do calls.
func NewFakeDoer(t testing.TB, responses ...*http.Response) *FakeDoer {
	return &FakeDoer{
		t:         t,
		responses: append([]*http.Response(nil), responses...),
	}
}

// Do records the request and returns the next queued response.
func (f *FakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if len(f.responses) == 0 {
		f.t.Errorf("fake http client has no responses left for request %s %s", req.Method, req.URL.String())
		return NewStringResponse(http.StatusInternalServerError, ""), nil
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

// Requests returns the HTTP requests captured so far.
func (f *FakeDoer) Requests() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.requests...)
}

// NewStringResponse builds a minimal http.Response with the provided status code and body.
func NewStringResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

var _ httpclient.HTTPDoer = (*FakeDoer)(nil)
