package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/models"
)

// ErrDuplicateNotification is returned by Save when a notification for the
// same broker message already exists.
var ErrDuplicateNotification = errors.New("notification already recorded")

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(database *PostgresDB) *NotificationRepository {
	return &NotificationRepository{db: database.Conn}
}

func (r *NotificationRepository) Save(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (message_id, type, order_reference, recipient, total_amount, product_count)
		VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6)
		ON CONFLICT (message_id) DO NOTHING
		RETURNING id, sent_at
	`
	err := r.db.QueryRowContext(ctx, query, n.MessageID, n.Type, n.OrderReference, n.Recipient, n.TotalAmount, n.ProductCount).
		Scan(&n.ID, &n.SentAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("message %s: %w", n.MessageID, ErrDuplicateNotification)
	}
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}

func (r *NotificationRepository) GetByOrderReference(ctx context.Context, reference string) ([]models.Notification, error) {
	query := `
		SELECT id, COALESCE(message_id, ''), type, order_reference, recipient, total_amount, product_count, sent_at
		FROM notifications WHERE order_reference = $1 ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.MessageID, &n.Type, &n.OrderReference, &n.Recipient, &n.TotalAmount, &n.ProductCount, &n.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, nil
}
