package app

import (
	"dslf/internal/config"
	"dslf/internal/handlers"
	"dslf/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// InitMiddleware - initializes middleware handlers for the router.
// The access log wraps the recoverer so a recovered panic is still logged as an error.
func InitMiddleware(r *chi.Mux, conf *config.Config, ctrl *handlers.Controller) {
	if !conf.Silent {
		r.Use(ctrl.LoggingMiddleware)
	}
	r.Use(middleware.Recoverer)
}

// Routing - registers routes for the redirect controller.
// Registered routes:
//   - any method "/health" and "/health/": liveness probe through ctrl.HealthHandler().
//   - any method "/*": route table lookup and static fallback through ctrl.Dispatch().
func Routing(r *chi.Mux, ctrl *handlers.Controller) {
	r.Handle(repository.HealthPath, ctrl.HealthHandler())
	r.Handle(repository.HealthPath+"/", ctrl.HealthHandler())
	r.Handle("/*", ctrl.Dispatch())
}

// NewRouter builds the router with middleware and routes.
func NewRouter(conf *config.Config, ctrl *handlers.Controller) *chi.Mux {
	r := chi.NewRouter()
	InitMiddleware(r, conf, ctrl)
	Routing(r, ctrl)
	return r
}
