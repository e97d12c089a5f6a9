package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/models"
)

type CustomerClient struct {
	endpoint   Endpoint
	httpClient *http.Client
}

func NewCustomerClient(endpoint Endpoint, httpClient *http.Client) *CustomerClient {
	return &CustomerClient{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

// FindCustomerByID returns nil, nil when the customer service answers 404.
func (c *CustomerClient) FindCustomerByID(ctx context.Context, customerID string) (*models.Customer, error) {
	u := c.endpoint.URL(ctx) + "/api/v1/customers/" + url.PathEscape(customerID)

	var customer models.Customer
	err := doJSON(ctx, c.httpClient, "customer-service", http.MethodGet, u, nil, &customer)
	if IsStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &customer, nil
}
