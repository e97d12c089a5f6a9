package orders

import (
	"context"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/models"
)

// CustomerGateway returns nil, nil when the customer does not exist.
type CustomerGateway interface {
	FindCustomerByID(ctx context.Context, customerID string) (*models.Customer, error)
}

// ProductGateway prices and reserves every line or fails the whole call.
type ProductGateway interface {
	PurchaseProducts(ctx context.Context, lines []models.PurchaseLine) ([]models.PurchaseResult, error)
}

type PaymentGateway interface {
	RequestOrderPayment(ctx context.Context, req models.PaymentRequest) error
}

type ConfirmationPublisher interface {
	SendOrderConfirmation(ctx context.Context, confirmation models.OrderConfirmation) error
}

// OrderStore assigns identities on create. GetByID returns nil, nil for an unknown id.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	CreateLine(ctx context.Context, line *models.OrderLine) error
	GetByID(ctx context.Context, id int) (*models.Order, error)
	GetAll(ctx context.Context) ([]models.Order, error)
	GetLines(ctx context.Context, orderID int) ([]models.OrderLine, error)
}
