package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/config"
)

var ErrClosed = errors.New("rabbitmq connection closed")

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitMQ(ctx context.Context, cfg config.RabbitMQConfig) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	slog.InfoContext(ctx, "✅ Connected to RabbitMQ", "host", cfg.Host, "port", cfg.Port)

	return &RabbitMQ{
		conn:    conn,
		channel: channel,
	}, nil
}

// DeclareQueue creates a durable queue if it doesn't exist.
func (r *RabbitMQ) DeclareQueue(ctx context.Context, name string) error {
	_, err := r.channel.QueueDeclare(
		name,  // queue name
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}

	slog.InfoContext(ctx, "✅ Queue declared", "queue", name)
	return nil
}

// Publish sends a persistent JSON message to queue through the default
// exchange. The trace context of ctx travels in the message headers.
func (r *RabbitMQ) Publish(ctx context.Context, queue string, message []byte) error {
	headers := amqp.Table{}
	otel.GetTextMapPropagator().Inject(ctx, HeaderCarrier(headers))

	err := r.channel.PublishWithContext(ctx,
		"",    // exchange
		queue, // routing key (queue name)
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now().UTC(),
			Headers:      headers,
			Body:         message,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message to %s: %w", queue, err)
	}

	slog.DebugContext(ctx, "📤 Message published", "queue", queue)
	return nil
}

// Consume receives messages from a queue with manual acknowledgement.
func (r *RabbitMQ) Consume(ctx context.Context, queue string, prefetch int) (<-chan amqp.Delivery, error) {
	if prefetch > 0 {
		if err := r.channel.Qos(prefetch, 0, false); err != nil {
			return nil, fmt.Errorf("failed to set prefetch: %w", err)
		}
	}

	messages, err := r.channel.ConsumeWithContext(ctx,
		queue, // queue name
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to consume messages: %w", err)
	}

	slog.InfoContext(ctx, "👂 Listening on queue", "queue", queue)
	return messages, nil
}

// Healthy reports whether the connection and channel are still open.
func (r *RabbitMQ) Healthy() bool {
	return r.conn != nil && !r.conn.IsClosed() && r.channel != nil && !r.channel.IsClosed()
}

// Ping fails with ErrClosed once the connection or channel has dropped.
func (r *RabbitMQ) Ping(context.Context) error {
	if !r.Healthy() {
		return ErrClosed
	}
	return nil
}

func (r *RabbitMQ) Close() error {
	var err error
	if r.channel != nil {
		err = r.channel.Close()
	}
	if r.conn != nil {
		if cerr := r.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
