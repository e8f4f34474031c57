// Package app wires the route table, the controller and the HTTP server together.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"dslf/internal/config"
	"dslf/internal/handlers"
	"dslf/internal/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CreateServer creates and configures an HTTP server.
func CreateServer(c *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              c.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: c.ReadHeaderTimeout,
	}
}

// Run listens on the configured address and serves table until ctx is cancelled.
func Run(ctx context.Context, c *config.Config, table storage.RouteStore, sugar *zap.SugaredLogger) error {
	ctrl := handlers.NewController(c, table, sugar)
	srv := CreateServer(c, NewRouter(c, ctrl))

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind to %s: %w", srv.Addr, err)
	}

	sugar.Infow("Forwarding service running",
		"addr", "http://"+ln.Addr().String(),
		"rules", table.Len(),
		"modern", c.Modern,
		"static_dir", c.StaticDir,
	)
	return Serve(ctx, srv, ln, c.ShutdownTimeout, sugar)
}

// Serve serves srv on ln and shuts it down gracefully once ctx is done.
// In-flight requests get shutdownTimeout to complete.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration, sugar *zap.SugaredLogger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		sugar.Infow("Shutting down", "timeout", shutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
