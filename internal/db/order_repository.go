package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/models"
)

// OrderRepository stores orders and their lines. Each write is its own
// statement; the order placement workflow decides what happens between them.
type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(database *PostgresDB) *OrderRepository {
	return &OrderRepository{db: database.Conn}
}

// Create inserts the order and fills in its id and timestamps.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (reference, total_amount, payment_method, customer_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, last_modified_at
	`
	err := r.db.QueryRowContext(ctx, query,
		order.Reference,
		order.TotalAmount,
		order.PaymentMethod,
		order.CustomerID,
	).Scan(&order.ID, &order.CreatedAt, &order.LastModifiedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

func (r *OrderRepository) CreateLine(ctx context.Context, line *models.OrderLine) error {
	query := `
		INSERT INTO order_lines (order_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query, line.OrderID, line.ProductID, line.Quantity).Scan(&line.ID)
	if err != nil {
		return fmt.Errorf("failed to insert order line: %w", err)
	}

	return nil
}

// GetAll returns all orders, newest first.
func (r *OrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	query := `
		SELECT id, reference, total_amount, payment_method, customer_id, created_at, last_modified_at
		FROM orders ORDER BY id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}

// GetByID returns nil, nil when the order does not exist.
func (r *OrderRepository) GetByID(ctx context.Context, id int) (*models.Order, error) {
	query := `
		SELECT id, reference, total_amount, payment_method, customer_id, created_at, last_modified_at
		FROM orders WHERE id = $1
	`

	var order models.Order
	err := scanOrder(r.db.QueryRowContext(ctx, query, id), &order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}

// GetLines returns the lines of an order in insertion order.
func (r *OrderRepository) GetLines(ctx context.Context, orderID int) ([]models.OrderLine, error) {
	query := `SELECT id, order_id, product_id, quantity FROM order_lines WHERE order_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	lines := []models.OrderLine{}
	for rows.Next() {
		var l models.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order lines: %w", err)
	}

	return lines, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner, o *models.Order) error {
	return row.Scan(&o.ID, &o.Reference, &o.TotalAmount, &o.PaymentMethod, &o.CustomerID, &o.CreatedAt, &o.LastModifiedAt)
}
