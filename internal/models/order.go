package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

// remember to add new methods to the validPaymentMethods map
const (
	PaymentMethodPaypal     PaymentMethod = "PAYPAL"
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodVisa       PaymentMethod = "VISA"
	PaymentMethodMasterCard PaymentMethod = "MASTER_CARD"
	PaymentMethodBitcoin    PaymentMethod = "BITCOIN"
)

var validPaymentMethods = map[PaymentMethod]struct{}{
	PaymentMethodPaypal:     {},
	PaymentMethodCreditCard: {},
	PaymentMethodVisa:       {},
	PaymentMethodMasterCard: {},
	PaymentMethodBitcoin:    {},
}

func ToPaymentMethod(s string) (PaymentMethod, error) {
	method := PaymentMethod(s)
	if _, ok := validPaymentMethods[method]; ok {
		return method, nil
	}

	return "", fmt.Errorf("invalid payment method %q", s)
}

type Order struct {
	ID             int             `json:"id"`
	Reference      string          `json:"reference"`
	TotalAmount    decimal.Decimal `json:"amount"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	CustomerID     string          `json:"customer_id"`
	CreatedAt      time.Time       `json:"created_at"`
	LastModifiedAt time.Time       `json:"last_modified_at"`
}

type OrderLine struct {
	ID        int     `json:"id"`
	OrderID   int     `json:"order_id"`
	ProductID int     `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

// OrderRequest is the input of the order placement workflow. It is never persisted as is.
type OrderRequest struct {
	Reference     string          `json:"reference"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"payment_method" binding:"required"`
	CustomerID    string          `json:"customer_id" binding:"required"`
	Products      []PurchaseLine  `json:"products" binding:"required,min=1,dive"`
}

// Validate checks the amount, the payment method, the customer and every product line.
func (r OrderRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return errors.New("amount must be greater than 0")
	}

	if r.PaymentMethod == "" {
		return errors.New("payment method should be precised")
	}

	if _, err := ToPaymentMethod(string(r.PaymentMethod)); err != nil {
		return err
	}

	if strings.TrimSpace(r.CustomerID) == "" {
		return errors.New("customer should be present")
	}

	if len(r.Products) == 0 {
		return errors.New("you should at least purchase one product")
	}

	for i, line := range r.Products {
		if err := line.Validate(); err != nil {
			return fmt.Errorf("products[%d]: %w", i, err)
		}
	}

	return nil
}

// ToOrder maps the request onto the order row the store will create.
func (r OrderRequest) ToOrder() Order {
	return Order{
		Reference:     r.Reference,
		TotalAmount:   r.Amount,
		PaymentMethod: r.PaymentMethod,
		CustomerID:    r.CustomerID,
	}
}
