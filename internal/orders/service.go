// Package orders places orders by driving the customer, product, payment and
// notification collaborators in a fixed sequence.
//
// The workflow is a saga without compensation: the order row is the first
// durable side effect and stays in place whatever fails after it.
package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/models"
)

const tracerName = "github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/orders"

// DefaultStepTimeout bounds every gateway call unless WithStepTimeout says otherwise.
const DefaultStepTimeout = 10 * time.Second

type Service struct {
	store     OrderStore
	customers CustomerGateway
	products  ProductGateway
	payments  PaymentGateway
	publisher ConfirmationPublisher

	stepTimeout time.Duration
	tracer      trace.Tracer
}

type Option func(*Service)

// WithStepTimeout sets the deadline applied to each gateway call. Zero disables it.
func WithStepTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.stepTimeout = d
	}
}

func NewService(
	store OrderStore,
	customers CustomerGateway,
	products ProductGateway,
	payments PaymentGateway,
	publisher ConfirmationPublisher,
	opts ...Option,
) *Service {
	s := &Service{
		store:       store,
		customers:   customers,
		products:    products,
		payments:    payments,
		publisher:   publisher,
		stepTimeout: DefaultStepTimeout,
		tracer:      otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateOrder places an order and returns its id.
//
// Steps run strictly in sequence: customer lookup, product purchase, order
// row, order lines, payment request, confirmation event. Nothing is retried
// and nothing written before a failure is undone.
func (s *Service) CreateOrder(ctx context.Context, req models.OrderRequest) (int, error) {
	ctx, span := s.tracer.Start(ctx, "orders.CreateOrder",
		trace.WithAttributes(
			attribute.String("order.reference", req.Reference),
			attribute.String("customer.id", req.CustomerID),
			attribute.Int("order.lines", len(req.Products)),
		),
	)
	defer span.End()

	orderID, err := s.createOrder(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "create order failed", "reference", req.Reference, "error", err)
		return 0, err
	}

	span.SetAttributes(attribute.Int("order.id", orderID))
	slog.InfoContext(ctx, "order created", "order_id", orderID, "reference", req.Reference)

	return orderID, nil
}

func (s *Service) createOrder(ctx context.Context, req models.OrderRequest) (int, error) {
	if err := req.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBusinessRule, err)
	}

	var customer *models.Customer
	err := s.callGateway(ctx, "customers.FindCustomerByID", func(ctx context.Context) (err error) {
		customer, err = s.customers.FindCustomerByID(ctx, req.CustomerID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%w: customers.FindCustomerByID: %w", ErrUpstream, err)
	}
	if customer == nil {
		return 0, fmt.Errorf("%w: %w: %s", ErrBusinessRule, ErrCustomerNotFound, req.CustomerID)
	}

	var purchased []models.PurchaseResult
	err = s.callGateway(ctx, "products.PurchaseProducts", func(ctx context.Context) (err error) {
		purchased, err = s.products.PurchaseProducts(ctx, req.Products)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%w: products.PurchaseProducts: %w", ErrUpstream, err)
	}
	if len(purchased) != len(req.Products) {
		return 0, fmt.Errorf("%w: %w: got %d of %d",
			ErrUpstream, ErrPartialReservation, len(purchased), len(req.Products))
	}

	order := req.ToOrder()
	if err := s.store.Create(ctx, &order); err != nil {
		return 0, fmt.Errorf("%w: store.Create: %w", ErrPersistence, err)
	}

	for i, p := range req.Products {
		line := models.OrderLine{
			OrderID:   order.ID,
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
		}
		if err := s.store.CreateLine(ctx, &line); err != nil {
			s.logPartialOrder(ctx, order.ID, "store.CreateLine", err)
			return 0, fmt.Errorf("%w: store.CreateLine[%d]: %w", ErrPersistence, i, err)
		}
	}

	payment := models.PaymentRequest{
		Amount:         req.Amount,
		PaymentMethod:  req.PaymentMethod,
		OrderID:        order.ID,
		OrderReference: order.Reference,
		Customer:       *customer,
	}
	err = s.callGateway(ctx, "payments.RequestOrderPayment", func(ctx context.Context) error {
		return s.payments.RequestOrderPayment(ctx, payment)
	})
	if err != nil {
		s.logPartialOrder(ctx, order.ID, "payments.RequestOrderPayment", err)
		return 0, fmt.Errorf("%w: payments.RequestOrderPayment: %w", ErrUpstream, err)
	}

	confirmation := models.OrderConfirmation{
		OrderReference: req.Reference,
		TotalAmount:    req.Amount,
		PaymentMethod:  req.PaymentMethod,
		Customer:       *customer,
		Products:       purchased,
	}
	err = s.callGateway(ctx, "publisher.SendOrderConfirmation", func(ctx context.Context) error {
		return s.publisher.SendOrderConfirmation(ctx, confirmation)
	})
	if err != nil {
		s.logPartialOrder(ctx, order.ID, "publisher.SendOrderConfirmation", err)
		return 0, fmt.Errorf("%w: publisher.SendOrderConfirmation: %w", ErrUpstream, err)
	}

	return order.ID, nil
}

// callGateway runs one remote step in its own span and under the step deadline.
func (s *Service) callGateway(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, name)
	defer span.End()

	if s.stepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.stepTimeout)
		defer cancel()
	}

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

// logPartialOrder records that rows for orderID were committed before step failed.
func (s *Service) logPartialOrder(ctx context.Context, orderID int, step string, err error) {
	slog.ErrorContext(ctx, "order left partially processed",
		"order_id", orderID,
		"failed_step", step,
		"error", err,
	)
}

func (s *Service) FindAll(ctx context.Context) ([]models.Order, error) {
	orders, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: store.GetAll: %w", ErrPersistence, err)
	}

	return orders, nil
}

func (s *Service) FindByID(ctx context.Context, orderID int) (models.Order, error) {
	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return models.Order{}, fmt.Errorf("%w: store.GetByID: %w", ErrPersistence, err)
	}

	if order == nil {
		return models.Order{}, fmt.Errorf("%w: cannot find order with the provided id %d", ErrNotFound, orderID)
	}

	return *order, nil
}

// FindLines returns the lines of an order in creation order. An unknown order has no lines.
func (s *Service) FindLines(ctx context.Context, orderID int) ([]models.OrderLine, error) {
	lines, err := s.store.GetLines(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: store.GetLines: %w", ErrPersistence, err)
	}

	return lines, nil
}
