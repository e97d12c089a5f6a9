package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/models"
)

var (
	ErrProductNotFound   = errors.New("one or more products does not exist")
	ErrInsufficientStock = errors.New("insufficient stock quantity")
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(database *PostgresDB) *ProductRepository {
	return &ProductRepository{db: database.Conn}
}

func (r *ProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	query := "SELECT id, name, description, available_quantity, price, created_at FROM products ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}

// GetByID returns nil, nil when the product does not exist.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	query := "SELECT id, name, description, available_quantity, price, created_at FROM products WHERE id = $1"

	var p models.Product
	err := scanProduct(r.db.QueryRowContext(ctx, query, id), &p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	query := `
		INSERT INTO products (name, description, available_quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, available_quantity, price, created_at
	`

	var p models.Product
	err := scanProduct(r.db.QueryRowContext(ctx, query, req.Name, req.Description, req.AvailableQuantity, req.Price), &p)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}

	return nil
}

// Purchase reserves every line or none. Rows are locked in id order, a
// product requested on several lines must cover their sum, and the results
// follow the order of lines.
func (r *ProductRepository) Purchase(ctx context.Context, lines []models.PurchaseLine) ([]models.PurchaseResult, error) {
	requested := make(map[int]float64, len(lines))
	for _, l := range lines {
		requested[l.ProductID] += l.Quantity
	}
	ids := lo.Map(lo.Keys(requested), func(id int, _ int) int64 { return int64(id) })

	return withTx(ctx, r.db, func(tx *sql.Tx) ([]models.PurchaseResult, error) {
		query := `
			SELECT id, name, description, available_quantity, price, created_at
			FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE
		`
		rows, err := tx.QueryContext(ctx, query, pq.Array(ids))
		if err != nil {
			return nil, fmt.Errorf("failed to lock products: %w", err)
		}
		defer rows.Close()

		stored := make(map[int]models.Product, len(ids))
		for rows.Next() {
			var p models.Product
			if err := scanProduct(rows, &p); err != nil {
				return nil, fmt.Errorf("failed to scan product: %w", err)
			}
			stored[p.ID] = p
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate products: %w", err)
		}

		if missing := lo.Without(lo.Keys(requested), lo.Keys(stored)...); len(missing) > 0 {
			return nil, fmt.Errorf("%w: %v", ErrProductNotFound, sortedInts(missing))
		}

		for _, id := range sortedInts(lo.Keys(requested)) {
			p := stored[id]
			if p.AvailableQuantity < requested[id] {
				return nil, fmt.Errorf("%w for product %d: available %g, requested %g",
					ErrInsufficientStock, id, p.AvailableQuantity, requested[id])
			}

			_, err := tx.ExecContext(ctx,
				"UPDATE products SET available_quantity = available_quantity - $1 WHERE id = $2",
				requested[id], id)
			if err != nil {
				return nil, fmt.Errorf("failed to update stock of product %d: %w", id, err)
			}
		}

		return lo.Map(lines, func(l models.PurchaseLine, _ int) models.PurchaseResult {
			p := stored[l.ProductID]
			return models.PurchaseResult{
				ProductID:   p.ID,
				Name:        p.Name,
				Description: p.Description,
				Price:       p.Price,
				Quantity:    l.Quantity,
			}
		}), nil
	})
}

func scanProduct(row rowScanner, p *models.Product) error {
	return row.Scan(&p.ID, &p.Name, &p.Description, &p.AvailableQuantity, &p.Price, &p.CreatedAt)
}

func sortedInts(ids []int) []int {
	slices.Sort(ids)
	return ids
}
