package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/client"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/models"
)

func newServer(t *testing.T, handler http.HandlerFunc) client.Endpoint {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return client.Endpoint{Service: "test", Fallback: srv.URL}
}

func httpClient() *http.Client {
	return client.NewHTTPClient(2 * time.Second)
}

func TestCustomerClient(t *testing.T) {
	endpoint := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)

		switch r.URL.Path {
		case "/api/v1/customers/cust-1":
			_ = json.NewEncoder(w).Encode(models.Customer{ID: "cust-1", FirstName: "Ada", Email: "ada@example.com"})
		case "/api/v1/customers/cust-404":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"boom"}`))
		}
	})
	c := client.NewCustomerClient(endpoint, httpClient())

	tests := []struct {
		name      string
		id        string
		wantEmail string
		wantNil   bool
		wantError string
	}{
		{name: "found: ok", id: "cust-1", wantEmail: "ada@example.com"},
		{name: "not found: nil", id: "cust-404", wantNil: true},
		{name: "server error: fail", id: "cust-500", wantError: "customer-service returned status 500: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			customer, err := c.FindCustomerByID(context.Background(), tt.id)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				assert.True(t, client.IsStatus(err, http.StatusInternalServerError))
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, customer)
				return
			}
			require.NotNil(t, customer)
			assert.Equal(t, tt.wantEmail, customer.Email)
		})
	}
}

func TestProductClientPurchase(t *testing.T) {
	endpoint := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/products/purchase", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var lines []models.PurchaseLine
		require.NoError(t, json.NewDecoder(r.Body).Decode(&lines))

		if lines[0].ProductID == 999 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"one or more products does not exist: [999]"}`))
			return
		}

		results := make([]models.PurchaseResult, 0, len(lines))
		for _, l := range lines {
			results = append(results, models.PurchaseResult{ProductID: l.ProductID, Price: decimal.RequireFromString("19.99"), Quantity: l.Quantity})
		}
		_ = json.NewEncoder(w).Encode(results)
	})
	c := client.NewProductClient(endpoint, httpClient())

	results, err := c.PurchaseProducts(context.Background(), []models.PurchaseLine{{ProductID: 10, Quantity: 3}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 10, results[0].ProductID)
	assert.True(t, decimal.RequireFromString("19.99").Equal(results[0].Price))

	_, err = c.PurchaseProducts(context.Background(), []models.PurchaseLine{{ProductID: 999, Quantity: 1}})
	require.EqualError(t, err, "product-service returned status 400: one or more products does not exist: [999]")
}

func TestPaymentClient(t *testing.T) {
	var got models.PaymentRequest
	status := http.StatusCreated

	endpoint := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/payments", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`7`))
	})
	c := client.NewPaymentClient(endpoint, httpClient())

	req := models.PaymentRequest{
		Amount:         decimal.RequireFromString("59.97"),
		PaymentMethod:  models.PaymentMethodCreditCard,
		OrderID:        1,
		OrderReference: "ORD-1",
		Customer:       models.Customer{ID: "cust-1"},
	}
	require.NoError(t, c.RequestOrderPayment(context.Background(), req))
	assert.Equal(t, 1, got.OrderID)
	assert.Equal(t, "ORD-1", got.OrderReference)

	status = http.StatusServiceUnavailable
	err := c.RequestOrderPayment(context.Background(), req)
	require.EqualError(t, err, "payment-service returned status 503: 7")
}

func TestClientHonoursContext(t *testing.T) {
	release := make(chan struct{})
	endpoint := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	c := client.NewPaymentClient(endpoint, httpClient())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.RequestOrderPayment(ctx, models.PaymentRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type stubResolver struct {
	url string
	err error
}

func (r stubResolver) GetServiceURL(context.Context, string) (string, error) {
	return r.url, r.err
}

func TestEndpointURL(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "http://fallback", client.Endpoint{Fallback: "http://fallback"}.URL(ctx))

	resolved := client.Endpoint{Service: "product-service", Fallback: "http://fallback", Resolver: stubResolver{url: "http://10.0.0.7:8081"}}
	assert.Equal(t, "http://10.0.0.7:8081", resolved.URL(ctx))

	failing := client.Endpoint{Service: "product-service", Fallback: "http://fallback", Resolver: stubResolver{err: errors.New("no healthy instances")}}
	assert.Equal(t, "http://fallback", failing.URL(ctx))
}
