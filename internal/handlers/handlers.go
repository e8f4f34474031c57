// Package handlers implements the HTTP side of the redirect service.
package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"dslf/internal/config"
	"dslf/internal/storage"

	"go.uber.org/zap"
)

// Controller answers requests from a route table, with an optional static-asset fallback.
type Controller struct {
	table     storage.RouteStore
	sugar     *zap.SugaredLogger
	static    http.Handler
	staticDir string
	modern    bool
}

// NewController - constructor for Controller. An empty conf.StaticDir disables the static fallback.
func NewController(conf *config.Config, table storage.RouteStore, sugar *zap.SugaredLogger) *Controller {
	con := &Controller{
		table:     table,
		sugar:     sugar,
		staticDir: conf.StaticDir,
		modern:    conf.Modern,
	}
	if con.staticDir != "" {
		con.static = http.FileServer(http.Dir(con.staticDir))
	}
	return con
}

// healthBody is the response body of the health endpoint.
const healthBody = "OK"

// NormalizePath strips exactly one trailing slash unless the path is the root.
func NormalizePath(p string) string {
	if len(p) > 1 && p[len(p)-1] == '/' {
		return p[:len(p)-1]
	}
	return p
}

// LookupKey returns the route table key of a request: its escaped path, normalized.
// Encoded bytes are compared as sent, so "/gh%2F" is not "/gh/".
func LookupKey(u *url.URL) string {
	return NormalizePath(u.EscapedPath())
}

// Dispatch resolves the request path against the route table.
func (con *Controller) Dispatch() http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		p := LookupKey(req.URL)

		if e, ok := con.table.Lookup(p); ok {
			markResolution(res, ResolutionRedirect, e.Target)
			res.Header()["Location"] = []string{e.Target}
			res.WriteHeader(e.Status.StatusCode(con.modern))
			return
		}

		con.serveFallback(res, req)
	}
}

// HealthHandler always answers 200 regardless of the route table.
func (con *Controller) HealthHandler() http.HandlerFunc {
	return func(res http.ResponseWriter, _ *http.Request) {
		markResolution(res, ResolutionHealth, "")
		res.Header().Set("Content-Type", "text/plain; charset=utf-8")
		res.WriteHeader(http.StatusOK)
		if _, err := res.Write([]byte(healthBody)); err != nil {
			con.sugar.Debugw("write health response", "error", err)
		}
	}
}

// serveFallback serves an existing static asset or answers 404.
func (con *Controller) serveFallback(res http.ResponseWriter, req *http.Request) {
	if con.static == nil || (req.Method != http.MethodGet && req.Method != http.MethodHead) {
		con.notFound(res, req)
		return
	}

	found, err := con.staticExists(req.URL.Path)
	if err != nil {
		con.sugar.Errorw("stat static asset", "path", req.URL.Path, "error", err)
		markResolution(res, ResolutionError, "")
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if !found {
		con.notFound(res, req)
		return
	}

	markResolution(res, ResolutionStatic, "")
	con.static.ServeHTTP(res, req)
}

func (con *Controller) notFound(res http.ResponseWriter, req *http.Request) {
	markResolution(res, ResolutionNotFound, "")
	http.NotFound(res, req)
}

// staticExists reports whether urlPath names a regular file, or a directory with index.html, under the static root.
func (con *Controller) staticExists(urlPath string) (bool, error) {
	clean := path.Clean("/" + urlPath)
	if strings.ContainsRune(clean, 0) {
		return false, nil
	}
	full := filepath.Join(con.staticDir, filepath.FromSlash(clean))

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return false, nil
		}
		return false, err
	}
	if info.Mode().IsRegular() {
		return true, nil
	}
	if !info.IsDir() {
		return false, nil
	}

	index, err := os.Stat(filepath.Join(full, "index.html"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return index.Mode().IsRegular(), nil
}
