package client

import (
	"context"
	"net/http"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/models"
)

type PaymentClient struct {
	endpoint   Endpoint
	httpClient *http.Client
}

func NewPaymentClient(endpoint Endpoint, httpClient *http.Client) *PaymentClient {
	return &PaymentClient{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

// RequestOrderPayment submits the payment request. Any 2xx counts as accepted.
func (c *PaymentClient) RequestOrderPayment(ctx context.Context, req models.PaymentRequest) error {
	u := c.endpoint.URL(ctx) + "/api/v1/payments"
	return doJSON(ctx, c.httpClient, "payment-service", http.MethodPost, u, req, nil)
}
