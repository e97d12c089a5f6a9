// Package server holds the process lifecycle shared by the service binaries.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/config"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/discovery"
)

const ShutdownTimeout = 10 * time.Second

// Run serves handler on addr until ctx is done, then drains in-flight requests.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "🚀 HTTP server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()

	slog.InfoContext(ctx, "🛑 HTTP server shutting down", "addr", addr)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return <-errCh
}

// ConnectConsul returns nil when discovery is disabled or the agent is
// unreachable; callers then use their fallback URLs.
func ConnectConsul(ctx context.Context, cfg config.ConsulConfig) *discovery.ConsulClient {
	if !cfg.Enabled {
		return nil
	}

	consul, err := discovery.NewConsulClient(ctx, cfg)
	if err != nil {
		slog.WarnContext(ctx, "⚠️ Consul unavailable, using fallback URLs", "error", err)
		return nil
	}
	return consul
}

// Announce registers the service with consul and returns the matching
// deregistration. Both are no-ops without a consul client.
func Announce(ctx context.Context, consul *discovery.ConsulClient, cfg *config.Config) func() {
	if consul == nil {
		return func() {}
	}

	err := consul.Register(ctx, discovery.ServiceConfig{
		Name: cfg.ServiceName,
		ID:   cfg.ServiceID,
		Port: cfg.HTTP.Port,
		Tags: []string{"ecommerce", "api"},
	})
	if err != nil {
		slog.WarnContext(ctx, "⚠️ Failed to register with Consul", "error", err)
		return func() {}
	}

	return func() {
		if err := consul.Deregister(context.WithoutCancel(ctx), cfg.ServiceID); err != nil {
			slog.WarnContext(ctx, "⚠️ Failed to deregister from Consul", "error", err)
		}
	}
}
