package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"dslf/internal/config"
	"dslf/internal/domain/models"
	"dslf/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

var testEntries = []models.RouteEntry{
	{Path: "/gh", Target: "https://github.com/x", Status: models.Permanent},
	{Path: "/promo", Target: "https://example.com/offer", Status: models.Temporary},
	{Path: "/", Target: "https://example.com/home", Status: models.Temporary},
	{Path: "/utm", Target: "https://example.com/p?utm_source=newsletter&q=hello%20world#pricing", Status: models.Permanent},
	{Path: "/docs", Target: "https://docs.example.com", Status: models.Temporary},
	{Path: "/a%20b", Target: "https://example.com/space", Status: models.Permanent},
	{Path: "/caf%C3%A9", Target: "https://example.com/cafe", Status: models.Temporary},
}

func newTestController(t *testing.T, modern bool, staticDir string, sugar *zap.SugaredLogger) *Controller {
	t.Helper()
	table, err := storage.NewRouteTable(testEntries)
	require.NoError(t, err)

	c := config.NewConfig()
	c.Modern = modern
	c.StaticDir = staticDir
	if sugar == nil {
		sugar = zaptest.NewLogger(t).Sugar()
	}
	return NewController(c, table, sugar)
}

func serve(h http.Handler, method, target string) *http.Response {
	r := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w.Result()
}

func TestNormalizePath(t *testing.T) {
	testCases := map[string]string{
		"/":     "/",
		"":      "",
		"/gh":   "/gh",
		"/gh/":  "/gh",
		"/gh//": "/gh/",
		"/a/b/": "/a/b",
	}
	for in, expected := range testCases {
		assert.Equal(t, expected, NormalizePath(in), "NormalizePath(%q)", in)
	}
}

func TestDispatch(t *testing.T) {
	testCases := []struct {
		name         string
		method       string
		path         string
		modern       bool
		expectedCode int
		location     string
	}{
		{name: "permanent", method: http.MethodGet, path: "/gh", expectedCode: http.StatusMovedPermanently, location: "https://github.com/x"},
		{name: "trailing slash", method: http.MethodGet, path: "/gh/", expectedCode: http.StatusMovedPermanently, location: "https://github.com/x"},
		{name: "temporary", method: http.MethodGet, path: "/promo", expectedCode: http.StatusFound, location: "https://example.com/offer"},
		{name: "root", method: http.MethodGet, path: "/", expectedCode: http.StatusFound, location: "https://example.com/home"},
		{name: "query and fragment kept verbatim", method: http.MethodGet, path: "/utm", expectedCode: http.StatusMovedPermanently, location: "https://example.com/p?utm_source=newsletter&q=hello%20world#pricing"},
		{name: "post is redirected", method: http.MethodPost, path: "/gh", expectedCode: http.StatusMovedPermanently, location: "https://github.com/x"},
		{name: "modern permanent", method: http.MethodGet, path: "/gh", modern: true, expectedCode: http.StatusPermanentRedirect, location: "https://github.com/x"},
		{name: "modern temporary", method: http.MethodPut, path: "/promo/", modern: true, expectedCode: http.StatusTemporaryRedirect, location: "https://example.com/offer"},
		{name: "missing", method: http.MethodGet, path: "/missing", expectedCode: http.StatusNotFound},
		{name: "case sensitive", method: http.MethodGet, path: "/GH", expectedCode: http.StatusNotFound},
		{name: "only one slash stripped", method: http.MethodGet, path: "/gh//", expectedCode: http.StatusNotFound},
		{name: "escaped path", method: http.MethodGet, path: "/a%20b", expectedCode: http.StatusMovedPermanently, location: "https://example.com/space"},
		{name: "escaped path with trailing slash", method: http.MethodGet, path: "/a%20b/", expectedCode: http.StatusMovedPermanently, location: "https://example.com/space"},
		{name: "escaped utf-8", method: http.MethodGet, path: "/caf%C3%A9", expectedCode: http.StatusFound, location: "https://example.com/cafe"},
		{name: "encoded slash is not a trailing slash", method: http.MethodGet, path: "/gh%2F", expectedCode: http.StatusNotFound},
		{name: "encoded letters are compared as sent", method: http.MethodGet, path: "/g%68", expectedCode: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			controller := newTestController(t, tc.modern, "", nil)
			res := serve(controller.Dispatch(), tc.method, tc.path)
			defer func() {
				require.NoError(t, res.Body.Close())
			}()

			require.Equal(t, tc.expectedCode, res.StatusCode, "Response code does not match expected")
			if tc.location == "" {
				require.Empty(t, res.Header.Get("Location"))
				return
			}
			require.Equal(t, tc.location, res.Header.Get("Location"))
			body, err := io.ReadAll(res.Body)
			require.NoError(t, err)
			require.Empty(t, body, "Redirect body must be empty")
		})
	}
}

func TestLookupKey(t *testing.T) {
	testCases := map[string]string{
		"/gh":         "/gh",
		"/gh/":        "/gh",
		"/":           "/",
		"/a%20b":      "/a%20b",
		"/gh%2F":      "/gh%2F",
		"/caf%C3%A9/": "/caf%C3%A9",
		"/gh?x=1":     "/gh",
	}
	for target, expected := range testCases {
		r := httptest.NewRequest(http.MethodGet, target, nil)
		assert.Equal(t, expected, LookupKey(r.URL), "LookupKey(%q)", target)
	}
}

func TestHealthHandler(t *testing.T) {
	controller := newTestController(t, false, "", nil)

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			res := serve(controller.HealthHandler(), method, "/health")
			defer func() {
				require.NoError(t, res.Body.Close())
			}()
			require.Equal(t, http.StatusOK, res.StatusCode)
		})
	}
}

func TestStaticFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("body{}"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "blog"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blog", "index.html"), []byte("<h1>blog</h1>"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0o700))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "index.html"), []byte("static docs"), 0o600))

	controller := newTestController(t, false, dir, nil)
	h := controller.Dispatch()

	testCases := []struct {
		name         string
		method       string
		path         string
		expectedCode int
		expectedBody string
	}{
		{name: "regular file", method: http.MethodGet, path: "/style.css", expectedCode: http.StatusOK, expectedBody: "body{}"},
		{name: "directory with index", method: http.MethodGet, path: "/blog/", expectedCode: http.StatusOK, expectedBody: "<h1>blog</h1>"},
		{name: "directory without index", method: http.MethodGet, path: "/empty/", expectedCode: http.StatusNotFound},
		{name: "missing file", method: http.MethodGet, path: "/nope.js", expectedCode: http.StatusNotFound},
		{name: "file used as directory", method: http.MethodGet, path: "/style.css/x", expectedCode: http.StatusNotFound},
		{name: "traversal stays inside root", method: http.MethodGet, path: "/../../etc/passwd", expectedCode: http.StatusNotFound},
		{name: "post is not served", method: http.MethodPost, path: "/style.css", expectedCode: http.StatusNotFound},
		{name: "route wins over asset", method: http.MethodGet, path: "/docs/", expectedCode: http.StatusFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := serve(h, tc.method, tc.path)
			defer func() {
				require.NoError(t, res.Body.Close())
			}()

			require.Equal(t, tc.expectedCode, res.StatusCode)
			if tc.expectedBody != "" {
				body, err := io.ReadAll(res.Body)
				require.NoError(t, err)
				require.Equal(t, tc.expectedBody, string(body))
			}
		})
	}
}

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	controller := newTestController(t, true, "", zap.New(core).Sugar())
	h := controller.LoggingMiddleware(controller.Dispatch())

	res := serve(h, http.MethodGet, "/gh/")
	require.NoError(t, res.Body.Close())
	require.Equal(t, http.StatusPermanentRedirect, res.StatusCode)
	requestID := res.Header.Get(RequestIDHeader)
	require.NotEmpty(t, requestID)

	res = serve(h, http.MethodDelete, "/missing")
	require.NoError(t, res.Body.Close())

	entries := logs.All()
	require.Len(t, entries, 2)

	hit := entries[0].ContextMap()
	assert.Equal(t, "request", entries[0].Message)
	assert.Equal(t, http.MethodGet, hit["method"])
	assert.Equal(t, "/gh", hit["path"])
	assert.Equal(t, "redirect", hit["resolution"])
	assert.Equal(t, "https://github.com/x", hit["target"])
	assert.EqualValues(t, http.StatusPermanentRedirect, hit["status"])
	assert.EqualValues(t, 0, hit["size"])
	assert.Equal(t, requestID, hit["request_id"])
	assert.Contains(t, hit, "duration")

	miss := entries[1].ContextMap()
	assert.Equal(t, http.MethodDelete, miss["method"])
	assert.Equal(t, "not_found", miss["resolution"])
	assert.Equal(t, "", miss["target"])
	assert.EqualValues(t, http.StatusNotFound, miss["status"])
	assert.NotEqual(t, requestID, miss["request_id"])
}

func TestLoggingMiddlewareHealth(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	controller := newTestController(t, false, "", zap.New(core).Sugar())

	res := serve(controller.LoggingMiddleware(controller.HealthHandler()), http.MethodGet, "/health")
	require.NoError(t, res.Body.Close())

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "health", fields["resolution"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.EqualValues(t, len(healthBody), fields["size"])
}
