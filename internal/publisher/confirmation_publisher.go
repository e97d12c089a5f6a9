package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/models"
)

const OrderConfirmationQueue = "order.confirmation"

// Broker is the part of messaging.RabbitMQ the publisher needs.
type Broker interface {
	DeclareQueue(ctx context.Context, name string) error
	Publish(ctx context.Context, queue string, message []byte) error
}

type ConfirmationPublisher struct {
	broker Broker
	queue  string
}

// NewConfirmationPublisher declares queue and returns a publisher bound to it.
// An empty queue selects OrderConfirmationQueue.
func NewConfirmationPublisher(ctx context.Context, broker Broker, queue string) (*ConfirmationPublisher, error) {
	if queue == "" {
		queue = OrderConfirmationQueue
	}

	if err := broker.DeclareQueue(ctx, queue); err != nil {
		return nil, err
	}

	return &ConfirmationPublisher{broker: broker, queue: queue}, nil
}

// SendOrderConfirmation publishes the confirmation once. Broker confirms are not awaited.
func (p *ConfirmationPublisher) SendOrderConfirmation(ctx context.Context, confirmation models.OrderConfirmation) error {
	data, err := json.Marshal(confirmation)
	if err != nil {
		return fmt.Errorf("failed to marshal order confirmation: %w", err)
	}

	if err := p.broker.Publish(ctx, p.queue, data); err != nil {
		return fmt.Errorf("failed to publish order confirmation %s: %w", confirmation.OrderReference, err)
	}

	return nil
}
