package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/db"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/models"
)

func startPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("ecommerce"),
		postgres.WithUsername("ecommerce"),
		postgres.WithPassword("ecommerce123"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, "", fmt.Errorf("container.ConnectionString: %w", err)
	}

	return container, connStr, nil
}

// openMigrated starts Postgres and applies every schema.
func openMigrated(ctx context.Context) (testcontainers.Container, *db.PostgresDB, error) {
	container, connStr, err := startPostgres(ctx)
	if err != nil {
		return container, nil, err
	}

	database, err := db.Open(ctx, connStr)
	if err != nil {
		return container, nil, fmt.Errorf("db.Open: %w", err)
	}

	for _, schema := range []string{db.OrderSchema, db.ProductSchema, db.NotificationSchema, db.PaymentSchema, db.CustomerSchema} {
		if err := database.Migrate(ctx, schema); err != nil {
			return container, database, fmt.Errorf("database.Migrate: %w", err)
		}
	}

	return container, database, nil
}

var decimalComparer = cmp.Comparer(func(x, y decimal.Decimal) bool {
	return x.Equal(y)
})

func diffIgnoringTimestamps(want, got any) string {
	return cmp.Diff(want, got,
		decimalComparer,
		cmpopts.IgnoreFields(models.Order{}, "CreatedAt", "LastModifiedAt"),
		cmpopts.IgnoreFields(models.Product{}, "CreatedAt"),
		cmpopts.EquateEmpty(),
	)
}

func randomOrder() models.Order {
	return models.Order{
		Reference:     gofakeit.UUID(),
		TotalAmount:   decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2),
		PaymentMethod: models.PaymentMethodVisa,
		CustomerID:    gofakeit.UUID(),
	}
}

func randomProductRequest(quantity float64) models.CreateProductRequest {
	return models.CreateProductRequest{
		Name:              gofakeit.ProductName(),
		Description:       gofakeit.ProductDescription(),
		AvailableQuantity: quantity,
		Price:             decimal.NewFromFloat(gofakeit.Price(1, 100)).Round(2),
	}
}

func skipShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
}
