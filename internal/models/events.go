package models

import "github.com/shopspring/decimal"

// OrderConfirmation is published when an order has been placed
type OrderConfirmation struct {
	OrderReference string           `json:"order_reference"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	PaymentMethod  PaymentMethod    `json:"payment_method"`
	Customer       Customer         `json:"customer"`
	Products       []PurchaseResult `json:"products"`
}
