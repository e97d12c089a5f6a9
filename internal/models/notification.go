package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type NotificationType string

const NotificationOrderConfirmation NotificationType = "ORDER_CONFIRMATION"

// Notification is the record the notification service keeps of every message it sent.
type Notification struct {
	ID             int              `json:"id"`
	MessageID      string           `json:"message_id,omitempty"`
	Type           NotificationType `json:"type"`
	OrderReference string           `json:"order_reference"`
	Recipient      string           `json:"recipient"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	ProductCount   int              `json:"product_count"`
	SentAt         time.Time        `json:"sent_at"`
}

// NewOrderConfirmationNotification builds the record for the broker message messageID.
func NewOrderConfirmationNotification(messageID string, c OrderConfirmation) Notification {
	return Notification{
		MessageID:      messageID,
		Type:           NotificationOrderConfirmation,
		OrderReference: c.OrderReference,
		Recipient:      c.Customer.Email,
		TotalAmount:    c.TotalAmount,
		ProductCount:   len(c.Products),
	}
}
