package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/config"
)

//go:embed schema/orders.sql
var OrderSchema string

//go:embed schema/products.sql
var ProductSchema string

//go:embed schema/notifications.sql
var NotificationSchema string

//go:embed schema/payments.sql
var PaymentSchema string

//go:embed schema/customers.sql
var CustomerSchema string

type PostgresDB struct {
	Conn *sql.DB
}

func NewPostgresDB(ctx context.Context, cfg config.PostgresConfig) (*PostgresDB, error) {
	return Open(ctx, cfg.DSN())
}

// Open connects with a lib/pq connection string or URL.
func Open(ctx context.Context, dsn string) (*PostgresDB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.InfoContext(ctx, "✅ Connected to PostgreSQL")
	return &PostgresDB{Conn: conn}, nil
}

// Migrate applies an idempotent schema script.
func (db *PostgresDB) Migrate(ctx context.Context, schema string) error {
	if _, err := db.Conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.Conn.PingContext(ctx)
}

func (db *PostgresDB) Close() error {
	return db.Conn.Close()
}
