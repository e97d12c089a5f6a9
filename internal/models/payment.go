package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest is sent to the payment service once the order rows exist.
type PaymentRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	OrderID        int             `json:"order_id"`
	OrderReference string          `json:"order_reference"`
	Customer       Customer        `json:"customer"`
}

func (r PaymentRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return errors.New("amount must be greater than 0")
	}
	if _, err := ToPaymentMethod(string(r.PaymentMethod)); err != nil {
		return err
	}
	if r.OrderID <= 0 {
		return errors.New("order id must be positive")
	}
	return nil
}

type Payment struct {
	ID             int             `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	OrderID        int             `json:"order_id"`
	OrderReference string          `json:"order_reference"`
	CustomerID     string          `json:"customer_id"`
	CreatedAt      time.Time       `json:"created_at"`
	LastModifiedAt time.Time       `json:"last_modified_at"`
}
