package client

import (
	"context"
	"net/http"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/models"
)

type ProductClient struct {
	endpoint   Endpoint
	httpClient *http.Client
}

func NewProductClient(endpoint Endpoint, httpClient *http.Client) *ProductClient {
	return &ProductClient{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

// PurchaseProducts reserves all lines or none and returns them priced, in request order.
func (c *ProductClient) PurchaseProducts(ctx context.Context, lines []models.PurchaseLine) ([]models.PurchaseResult, error) {
	u := c.endpoint.URL(ctx) + "/api/v1/products/purchase"

	var results []models.PurchaseResult
	if err := doJSON(ctx, c.httpClient, "product-service", http.MethodPost, u, lines, &results); err != nil {
		return nil, err
	}

	return results, nil
}
