package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/db"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/messaging"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/models"
)

const tracerName = "github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/consumer"

// ErrDeliveriesClosed is returned by Run when the broker closes the delivery channel.
var ErrDeliveriesClosed = errors.New("delivery channel closed")

const (
	DefaultMaxRetries   = 3
	DefaultInitialDelay = 500 * time.Millisecond
)

type Notifier interface {
	Notify(ctx context.Context, messageID string, confirmation models.OrderConfirmation) error
}

type NotificationConsumer struct {
	notifier Notifier
	tracer   trace.Tracer

	maxRetries   uint64
	initialDelay time.Duration
}

type Option func(*NotificationConsumer)

// WithRetry sets how often a failed notification is retried in process, and
// the first delay between attempts, before the delivery is handed back.
func WithRetry(maxRetries uint64, initialDelay time.Duration) Option {
	return func(c *NotificationConsumer) {
		c.maxRetries = maxRetries
		c.initialDelay = initialDelay
	}
}

func NewNotificationConsumer(notifier Notifier, opts ...Option) *NotificationConsumer {
	c := &NotificationConsumer{
		notifier:     notifier,
		tracer:       otel.Tracer(tracerName),
		maxRetries:   DefaultMaxRetries,
		initialDelay: DefaultInitialDelay,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *NotificationConsumer) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialDelay
	b.MaxInterval = 10 * c.initialDelay
	return backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)
}

// Run handles order confirmations until ctx is done or the channel closes.
// Malformed messages are dropped. A notifier failure is retried with
// exponential backoff; a delivery that still fails is requeued once and
// dropped when it fails again after redelivery.
func (c *NotificationConsumer) Run(ctx context.Context, messages <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrDeliveriesClosed
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *NotificationConsumer) handle(ctx context.Context, msg amqp.Delivery) {
	ctx, span := c.tracer.Start(messaging.ExtractContext(ctx, msg.Headers), "consumer.OrderConfirmation",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.message.id", msg.MessageId),
			attribute.String("messaging.destination.name", msg.RoutingKey),
		),
	)
	defer span.End()

	slog.InfoContext(ctx, "📥 Received order confirmation", "message_id", msg.MessageId)

	var confirmation models.OrderConfirmation
	if err := json.Unmarshal(msg.Body, &confirmation); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed message")
		slog.ErrorContext(ctx, "❌ Failed to parse order confirmation", "message_id", msg.MessageId, "error", err)
		c.settle(ctx, msg.Nack(false, false))
		return
	}

	span.SetAttributes(attribute.String("order.reference", confirmation.OrderReference))

	notify := func() error {
		return c.notifier.Notify(ctx, msg.MessageId, confirmation)
	}
	retrying := func(err error, wait time.Duration) {
		slog.WarnContext(ctx, "⚠️ Notification failed, retrying",
			"order_reference", confirmation.OrderReference, "retry_in", wait, "error", err)
	}
	if err := backoff.RetryNotify(notify, c.backOff(ctx), retrying); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		requeue := !msg.Redelivered
		if requeue {
			slog.WarnContext(ctx, "⚠️ Notification failed, requeued",
				"order_reference", confirmation.OrderReference, "error", err)
		} else {
			slog.ErrorContext(ctx, "❌ Notification failed after redelivery, dropped",
				"order_reference", confirmation.OrderReference, "message_id", msg.MessageId, "error", err)
		}
		c.settle(ctx, msg.Nack(false, requeue))
		return
	}

	c.settle(ctx, msg.Ack(false))
	slog.InfoContext(ctx, "✅ Order confirmation processed", "order_reference", confirmation.OrderReference)
}

func (c *NotificationConsumer) settle(ctx context.Context, err error) {
	if err != nil {
		slog.ErrorContext(ctx, "failed to settle delivery", "error", err)
	}
}

type NotificationStore interface {
	Save(ctx context.Context, n *models.Notification) error
}

// StoreNotifier records one notification per broker message.
type StoreNotifier struct {
	store NotificationStore
}

func NewStoreNotifier(store NotificationStore) *StoreNotifier {
	return &StoreNotifier{store: store}
}

func (n *StoreNotifier) Notify(ctx context.Context, messageID string, confirmation models.OrderConfirmation) error {
	if confirmation.Customer.Email == "" {
		slog.WarnContext(ctx, "⚠️ Customer has no email, notification skipped",
			"order_reference", confirmation.OrderReference, "customer_id", confirmation.Customer.ID)
		return nil
	}

	notification := models.NewOrderConfirmationNotification(messageID, confirmation)
	err := n.store.Save(ctx, &notification)
	if errors.Is(err, db.ErrDuplicateNotification) {
		slog.InfoContext(ctx, "Duplicate delivery, notification already recorded",
			"order_reference", confirmation.OrderReference, "message_id", messageID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("save notification for order %s: %w", confirmation.OrderReference, err)
	}

	slog.InfoContext(ctx, "📧 Order confirmation sent",
		"order_reference", confirmation.OrderReference,
		"recipient", notification.Recipient,
		"amount", confirmation.TotalAmount.StringFixed(2),
	)
	return nil
}
