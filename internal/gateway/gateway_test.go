package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/client"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/gateway"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))
}

func backend(t *testing.T, name string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"backend": name, "path": r.URL.Path, "method": r.Method})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// serveGateway runs the gateway engine behind a real listener; the reverse
// proxy needs a ResponseWriter that supports CloseNotify.
func serveGateway(t *testing.T, g *gateway.Gateway) string {
	t.Helper()

	router := gin.New()
	gateway.RegisterRoutes(router, g, "order-service", "product-service")

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv.URL
}

func call(t *testing.T, base, method, path string) (int, map[string]any) {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), method, base+path, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestRoutesReachTheRightService(t *testing.T) {
	orders := backend(t, "orders")
	products := backend(t, "products")

	g := gateway.New(t.Context(),
		client.Endpoint{Service: "order-service", Fallback: orders.URL},
		client.Endpoint{Service: "product-service", Fallback: products.URL},
	)
	base := serveGateway(t, g)

	tests := []struct {
		method      string
		path        string
		wantBackend string
	}{
		{http.MethodPost, "/api/v1/orders", "orders"},
		{http.MethodGet, "/api/v1/orders/7", "orders"},
		{http.MethodGet, "/api/v1/order-lines/order/7", "orders"},
		{http.MethodGet, "/api/v1/products", "products"},
		{http.MethodPost, "/api/v1/products/purchase", "products"},
		{http.MethodDelete, "/api/v1/products/3", "products"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			code, body := call(t, base, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, code)
			assert.Equal(t, tt.wantBackend, body["backend"])
			assert.Equal(t, tt.path, body["path"])
			assert.Equal(t, tt.method, body["method"])
		})
	}
}

type switchingResolver struct {
	url atomic.Value
}

func (r *switchingResolver) GetServiceURL(context.Context, string) (string, error) {
	u, _ := r.url.Load().(string)
	if u == "" {
		return "", errors.New("no healthy instances")
	}
	return u, nil
}

func TestWatchPicksUpNewAddress(t *testing.T) {
	first := backend(t, "first")
	second := backend(t, "second")

	resolver := &switchingResolver{}
	g := gateway.New(t.Context(), client.Endpoint{Service: "product-service", Fallback: first.URL, Resolver: resolver})
	base := serveGateway(t, g)

	_, body := call(t, base, http.MethodGet, "/api/v1/products")
	assert.Equal(t, "first", body["backend"])

	ctx, cancel := context.WithCancel(t.Context())
	var eg errgroup.Group
	eg.Go(func() error { return g.Watch(ctx, 5*time.Millisecond) })

	resolver.url.Store(second.URL)
	assert.Eventually(t, func() bool {
		resp, err := http.Get(base + "/api/v1/products")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var body map[string]string
		return json.NewDecoder(resp.Body).Decode(&body) == nil && body["backend"] == "second"
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, eg.Wait())

	_, body = call(t, base, http.MethodGet, "/services")
	assert.Equal(t, map[string]any{"product-service": second.URL}, body["services"])
}

func TestUnknownServiceAndDeadBackend(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()

	g := gateway.New(t.Context(), client.Endpoint{Service: "order-service", Fallback: dead.URL})
	base := serveGateway(t, g)

	code, body := call(t, base, http.MethodGet, "/api/v1/products")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "product-service unavailable", body["error"])

	code, body = call(t, base, http.MethodGet, "/api/v1/orders")
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "service unavailable", body["error"])

	code, body = call(t, base, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, map[string]any{"order-service": "unhealthy"}, body["services"])
}
