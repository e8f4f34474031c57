package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"dslf/internal/config"
	"dslf/internal/domain/models"
	"dslf/internal/storage"

	"go.uber.org/zap"
)

func prepare(b *testing.B, n int) *Controller {
	b.Helper()
	entries := make([]models.RouteEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, models.RouteEntry{
			Path:   "/r" + strconv.Itoa(i),
			Target: "https://example.com/target/" + strconv.Itoa(i),
			Status: models.RedirectKind(i % 2),
		})
	}
	table, err := storage.NewRouteTable(entries)
	if err != nil {
		b.Fatal(err)
	}
	return NewController(config.NewConfig(), table, zap.NewNop().Sugar())
}

func BenchmarkDispatchHit(b *testing.B) {
	controller := prepare(b, 10000)
	handler := controller.Dispatch()
	r := httptest.NewRequest(http.MethodGet, "/r5000/", nil)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), r)
	}
}

func BenchmarkDispatchMiss(b *testing.B) {
	controller := prepare(b, 10000)
	handler := controller.Dispatch()
	r := httptest.NewRequest(http.MethodGet, "/missing", nil)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), r)
	}
}

func BenchmarkLoggingMiddleware(b *testing.B) {
	controller := prepare(b, 100)
	handler := controller.LoggingMiddleware(controller.Dispatch())
	r := httptest.NewRequest(http.MethodGet, "/r42", nil)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), r)
	}
}
