package handlers

import (
	"net/http"
	"time"

	"github.com/9ssi7/nanoid"
)

// Resolution - how a request was answered, as reported in the access log.
type Resolution string

// Resolutions reported by the access log.
const (
	ResolutionRedirect Resolution = "redirect"
	ResolutionStatic   Resolution = "static"
	ResolutionNotFound Resolution = "not_found"
	ResolutionHealth   Resolution = "health"
	ResolutionError    Resolution = "error"
)

// RequestIDHeader carries the id attached to every logged request.
const RequestIDHeader = "X-Request-Id"

type (
	responseData struct {
		resolution Resolution
		target     string
		status     int
		size       int
	}

	loggingResponseWriter struct {
		http.ResponseWriter
		responseData *responseData
	}

	resolutionRecorder interface {
		setResolution(r Resolution, target string)
	}
)

// Write records the number of body bytes written.
func (r *loggingResponseWriter) Write(b []byte) (int, error) {
	if r.responseData.status == 0 {
		r.responseData.status = http.StatusOK
	}
	size, err := r.ResponseWriter.Write(b)
	r.responseData.size += size
	return size, err
}

// WriteHeader records the status code.
func (r *loggingResponseWriter) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	if r.responseData.status == 0 {
		r.responseData.status = statusCode
	}
}

func (r *loggingResponseWriter) setResolution(res Resolution, target string) {
	r.responseData.resolution = res
	r.responseData.target = target
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *loggingResponseWriter) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// markResolution tells the access log, if any, how the request was answered.
func markResolution(w http.ResponseWriter, r Resolution, target string) {
	if rec, ok := w.(resolutionRecorder); ok {
		rec.setResolution(r, target)
	}
}

func (d *responseData) finalResolution() Resolution {
	switch {
	case d.resolution != "":
		return d.resolution
	case d.status == http.StatusNotFound:
		return ResolutionNotFound
	default:
		return ResolutionError
	}
}

func generateRequestID() string {
	id, err := nanoid.New()
	if err != nil {
		return ""
	}
	return id
}

// LoggingMiddleware emits one access log record per request.
func (con *Controller) LoggingMiddleware(h http.Handler) http.Handler {
	logFn := func(res http.ResponseWriter, req *http.Request) {
		start := time.Now()
		requestID := generateRequestID()
		if requestID != "" {
			res.Header().Set(RequestIDHeader, requestID)
		}

		data := &responseData{}
		lw := &loggingResponseWriter{
			ResponseWriter: res,
			responseData:   data,
		}

		defer func() {
			status := data.status
			if status == 0 {
				status = http.StatusOK
			}
			con.sugar.Infow("request",
				"method", req.Method,
				"path", LookupKey(req.URL),
				"resolution", string(data.finalResolution()),
				"target", data.target,
				"status", status,
				"size", data.size,
				"duration", time.Since(start),
				"request_id", requestID,
			)
		}()

		h.ServeHTTP(lw, req)
	}

	return http.HandlerFunc(logFn)
}
