package client

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Resolver finds the base URL of a healthy instance of a service.
// discovery.ConsulClient implements it.
type Resolver interface {
	GetServiceURL(ctx context.Context, serviceName string) (string, error)
}

// Endpoint locates a downstream service through a Resolver, falling back to a
// fixed URL when there is no resolver or it cannot find the service.
type Endpoint struct {
	Service  string
	Fallback string
	Resolver Resolver
}

func (e Endpoint) URL(ctx context.Context) string {
	if e.Resolver == nil {
		return e.Fallback
	}

	url, err := e.Resolver.GetServiceURL(ctx, e.Service)
	if err != nil {
		slog.WarnContext(ctx, "⚠️ Service not resolved, using fallback",
			"service", e.Service, "fallback", e.Fallback, "error", err)
		return e.Fallback
	}

	return url
}

// NewHTTPClient returns a client whose requests carry trace context and are
// recorded as client spans.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
