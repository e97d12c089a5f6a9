package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/models"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(database *PostgresDB) *PaymentRepository {
	return &PaymentRepository{db: database.Conn}
}

func (r *PaymentRepository) Create(ctx context.Context, req models.PaymentRequest) (*models.Payment, error) {
	query := `
		INSERT INTO payments (amount, payment_method, order_id, order_reference, customer_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, amount, payment_method, order_id, order_reference, customer_id, created_at, last_modified_at
	`

	var p models.Payment
	row := r.db.QueryRowContext(ctx, query, req.Amount, req.PaymentMethod, req.OrderID, req.OrderReference, req.Customer.ID)
	if err := scanPayment(row, &p); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	return &p, nil
}

// GetByID returns nil, nil when the payment does not exist.
func (r *PaymentRepository) GetByID(ctx context.Context, id int) (*models.Payment, error) {
	query := `
		SELECT id, amount, payment_method, order_id, order_reference, customer_id, created_at, last_modified_at
		FROM payments WHERE id = $1
	`

	var p models.Payment
	if err := scanPayment(r.db.QueryRowContext(ctx, query, id), &p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &p, nil
}

func scanPayment(row rowScanner, p *models.Payment) error {
	return row.Scan(&p.ID, &p.Amount, &p.PaymentMethod, &p.OrderID, &p.OrderReference, &p.CustomerID, &p.CreatedAt, &p.LastModifiedAt)
}
