// Package gateway routes public API traffic to the order and product
// services, re-resolving their addresses on a fixed interval.
package gateway

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/client"
)

const DefaultRefreshInterval = 10 * time.Second

type Gateway struct {
	endpoints []client.Endpoint
	client    *http.Client

	mutex    sync.RWMutex
	proxies  map[string]*httputil.ReverseProxy
	services map[string]string
}

func New(ctx context.Context, endpoints ...client.Endpoint) *Gateway {
	g := &Gateway{
		endpoints: endpoints,
		client:    client.NewHTTPClient(2 * time.Second),
		proxies:   make(map[string]*httputil.ReverseProxy),
		services:  make(map[string]string),
	}

	g.discoverServices(ctx)

	return g
}

func (g *Gateway) discoverServices(ctx context.Context) {
	for _, e := range g.endpoints {
		g.updateProxy(ctx, e.Service, e.URL(ctx))
	}
}

func (g *Gateway) updateProxy(ctx context.Context, serviceName, serviceURL string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.services[serviceName] == serviceURL {
		return
	}

	target, err := url.Parse(serviceURL)
	if err != nil || target.Host == "" {
		slog.ErrorContext(ctx, "❌ Invalid URL", "service", serviceName, "url", serviceURL, "error", err)
		return
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.Transport = otelhttp.NewTransport(http.DefaultTransport)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		slog.ErrorContext(r.Context(), "❌ Proxy error", "service", serviceName, "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"error": "service unavailable"}`)
	}

	g.proxies[serviceName] = proxy
	g.services[serviceName] = serviceURL
	slog.InfoContext(ctx, "✅ Updated route", "service", serviceName, "url", serviceURL)
}

// Watch re-resolves every service each interval until ctx is done.
func (g *Gateway) Watch(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			g.discoverServices(ctx)
		}
	}
}

func (g *Gateway) getProxy(serviceName string) *httputil.ReverseProxy {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.proxies[serviceName]
}

// Proxy forwards the request unchanged to serviceName.
func (g *Gateway) Proxy(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		proxy := g.getProxy(serviceName)
		if proxy == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": serviceName + " unavailable"})
			return
		}
		slog.DebugContext(c.Request.Context(), "🔀 Routing", "method", c.Request.Method, "path", c.Request.URL.Path, "service", serviceName)
		proxy.ServeHTTP(c.Writer, c.Request)
	}
}

func (g *Gateway) snapshot() map[string]string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return maps.Clone(g.services)
}

func (g *Gateway) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	statuses := make(map[string]string)
	allHealthy := true

	for name, base := range g.snapshot() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/health", nil)
		if err != nil {
			statuses[name] = "unhealthy"
			allHealthy = false
			continue
		}

		resp, err := g.client.Do(req)
		if err != nil || resp.StatusCode != http.StatusOK {
			statuses[name] = "unhealthy"
			allHealthy = false
		} else {
			statuses[name] = "healthy"
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
	}

	status := "healthy"
	if !allHealthy {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"service":  "api-gateway",
		"services": statuses,
	})
}

func (g *Gateway) ListServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"services": g.snapshot()})
}

// RegisterRoutes mounts the health endpoints and the proxied API prefixes.
func RegisterRoutes(router gin.IRouter, g *Gateway, orderService, productService string) {
	router.GET("/health", g.HealthCheck)
	router.GET("/services", g.ListServices)

	v1 := router.Group("/api/v1")
	orders := g.Proxy(orderService)
	v1.Any("/orders", orders)
	v1.Any("/orders/*path", orders)
	v1.Any("/order-lines/*path", orders)

	products := g.Proxy(productService)
	v1.Any("/products", products)
	v1.Any("/products/*path", products)
}
