package rebrandly

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dslf/internal/domain/models"
	jsonmodels "dslf/internal/domain/models/json"
	"dslf/internal/httpclient/httpclienttest"
	"dslf/internal/mocks"
	"dslf/internal/provider"
	"dslf/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linkJSON(id, slashtag, destination, status string) string {
	statusField := ""
	if status != "" {
		statusField = fmt.Sprintf(`,"status":%q`, status)
	}
	return fmt.Sprintf(`{"id":%q,"title":"t","slashtag":%q,"destination":%q,"createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z","shortUrl":"rebrand.ly/%s","favourite":false,"domain":{"id":"d1","fullName":"rebrand.ly"}%s}`,
		id, slashtag, destination, slashtag, statusField)
}

func TestFetchPage(t *testing.T) {
	body := "[" + strings.Join([]string{
		linkJSON("1", "gh", "https://github.com/x", "active"),
		linkJSON("2", "old", "https://example.com/old", "deleted"),
		linkJSON("3", "/docs", "https://docs.example.com", ""),
	}, ",") + "]"
	doer := httpclienttest.NewFakeDoer(t, httpclienttest.NewStringResponse(http.StatusOK, body))
	client := NewClient(doer, "secret", WithPageSize(3))

	page, err := client.FetchPage(context.Background(), "")
	require.NoError(t, err)

	require.Equal(t, []models.ImportedLink{
		{ShortPath: "/gh", Destination: "https://github.com/x", Domain: "rebrand.ly"},
		{ShortPath: "/docs", Destination: "https://docs.example.com", Domain: "rebrand.ly"},
	}, page.Links)
	assert.Equal(t, "3", page.Cursor, "Cursor is the id of the last raw link")
	assert.True(t, page.Full, "Full counts raw links including inactive ones")

	reqs := doer.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodGet, reqs[0].Method)
	assert.Equal(t, "https://api.rebrandly.com/v1/links?limit=3", reqs[0].URL.String())
	assert.Equal(t, "secret", reqs[0].Header.Get("apikey"))
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))
}

func TestToImportedLink(t *testing.T) {
	testCases := []struct {
		slashtag    string
		destination string
		expected    models.ImportedLink
	}{
		{slashtag: "gh", destination: "https://github.com/x", expected: models.ImportedLink{ShortPath: "/gh", Destination: "https://github.com/x"}},
		{slashtag: "/docs", destination: "https://docs.example.com", expected: models.ImportedLink{ShortPath: "/docs", Destination: "https://docs.example.com"}},
		{slashtag: " padded ", destination: " https://x.example/p ", expected: models.ImportedLink{ShortPath: "/padded", Destination: "https://x.example/p"}},
		{slashtag: "café", destination: "https://x.example/c", expected: models.ImportedLink{ShortPath: "/caf%C3%A9", Destination: "https://x.example/c"}},
		{slashtag: "a b", destination: "https://x.example/s", expected: models.ImportedLink{ShortPath: "/a%20b", Destination: "https://x.example/s"}},
		{slashtag: "what?", destination: "https://x.example/q", expected: models.ImportedLink{ShortPath: "/what%3F", Destination: "https://x.example/q"}},
	}

	for _, tc := range testCases {
		t.Run(tc.slashtag, func(t *testing.T) {
			got := toImportedLink(jsonmodels.RebrandlyLink{Slashtag: tc.slashtag, Destination: tc.destination})
			assert.Equal(t, tc.expected, got)
			assert.NoError(t, repository.CheckEntry(0, got.RouteEntry()), "Imported links load back")
		})
	}
}

func TestFetchPageCursor(t *testing.T) {
	doer := httpclienttest.NewFakeDoer(t, httpclienttest.NewStringResponse(http.StatusOK, "[]"))
	client := NewClient(doer, "secret")

	page, err := client.FetchPage(context.Background(), "abc")
	require.NoError(t, err)
	assert.Empty(t, page.Links)
	assert.Empty(t, page.Cursor)
	assert.False(t, page.Full)
	assert.Equal(t, 25, client.PageSize())

	q := doer.Requests()[0].URL.Query()
	assert.Equal(t, "25", q.Get("limit"))
	assert.Equal(t, "abc", q.Get("last"))
}

func TestFetchPageErrors(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     string
		sentinel error
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, sentinel: provider.ErrRateLimited},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"message":"Unauthorized"}`, sentinel: provider.ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, sentinel: provider.ErrUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doer := httpclienttest.NewFakeDoer(t, httpclienttest.NewStringResponse(tc.status, tc.body))
			_, err := NewClient(doer, "secret").FetchPage(context.Background(), "")
			require.ErrorIs(t, err, tc.sentinel)
		})
	}

	t.Run("server error", func(t *testing.T) {
		doer := httpclienttest.NewFakeDoer(t, httpclienttest.NewStringResponse(http.StatusBadGateway, " upstream down \n"))
		_, err := NewClient(doer, "secret").FetchPage(context.Background(), "")

		var statusErr *provider.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
		assert.Equal(t, "provider API error 502: upstream down", statusErr.Error())
		assert.False(t, errors.Is(err, provider.ErrRateLimited))
	})

	t.Run("malformed body", func(t *testing.T) {
		doer := httpclienttest.NewFakeDoer(t, httpclienttest.NewStringResponse(http.StatusOK, `{"not":"an array"}`))
		_, err := NewClient(doer, "secret").FetchPage(context.Background(), "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "decode rebrandly links")
	})
}

func TestFetchPageTransportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	doer := mocks.NewMockHTTPDoer(ctrl)
	doer.EXPECT().Do(gomock.Any()).Return(nil, errors.New("dial tcp: connection refused"))

	_, err := NewClient(doer, "secret").FetchPage(context.Background(), "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection refused")
}

func TestFetchPageOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/links" || r.Header.Get("apikey") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[" + linkJSON("9", "promo", "https://example.com/offer", "active") + "]"))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), "secret", WithBaseURL(srv.URL+"/"))
	page, err := client.FetchPage(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, page.Links, 1)
	assert.Equal(t, "/promo", page.Links[0].ShortPath)
	assert.False(t, page.Full)

	_, err = NewClient(srv.Client(), "wrong", WithBaseURL(srv.URL)).FetchPage(context.Background(), "")
	require.ErrorIs(t, err, provider.ErrUnauthorized)
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Run("Primary variable", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "key")
		t.Setenv(EnvToken, "token")
		key, err := APIKeyFromEnv()
		require.NoError(t, err)
		require.Equal(t, "key", key)
	})

	t.Run("Fallback variable", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		t.Setenv(EnvToken, "token")
		key, err := APIKeyFromEnv()
		require.NoError(t, err)
		require.Equal(t, "token", key)
	})

	t.Run("Missing", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		t.Setenv(EnvToken, "")
		_, err := APIKeyFromEnv()
		require.ErrorIs(t, err, provider.ErrMissingCredentials)
	})
}
