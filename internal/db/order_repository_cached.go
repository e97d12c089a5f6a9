package db

import (
	"context"
	"fmt"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/models"
)

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	CreateLine(ctx context.Context, line *models.OrderLine) error
	GetByID(ctx context.Context, id int) (*models.Order, error)
	GetAll(ctx context.Context) ([]models.Order, error)
	GetLines(ctx context.Context, orderID int) ([]models.OrderLine, error)
}

// CachedOrderRepository adds cache-aside reads to an OrderStore. Orders are
// never updated once written, so only the list families are ever bumped.
type CachedOrderRepository struct {
	repo  OrderStore
	cache Cache
}

func NewCachedOrderRepository(repo OrderStore, cache Cache) *CachedOrderRepository {
	return &CachedOrderRepository{
		repo:  repo,
		cache: cache,
	}
}

func orderFamily(id int) string {
	return fmt.Sprintf("order:%d", id)
}

func orderLinesFamily(orderID int) string {
	return fmt.Sprintf("order_lines:%d", orderID)
}

const allOrdersFamily = "orders:all"

func (r *CachedOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.repo.Create(ctx, order); err != nil {
		return err
	}

	bumpGenerations(ctx, r.cache, allOrdersFamily)
	return nil
}

func (r *CachedOrderRepository) CreateLine(ctx context.Context, line *models.OrderLine) error {
	if err := r.repo.CreateLine(ctx, line); err != nil {
		return err
	}

	bumpGenerations(ctx, r.cache, orderLinesFamily(line.OrderID))
	return nil
}

func (r *CachedOrderRepository) GetByID(ctx context.Context, id int) (*models.Order, error) {
	return readThrough(ctx, r.cache, orderFamily(id), func(ctx context.Context) (*models.Order, error) {
		return r.repo.GetByID(ctx, id)
	}, notNil[models.Order])
}

func (r *CachedOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	return readThrough(ctx, r.cache, allOrdersFamily, r.repo.GetAll, always[[]models.Order])
}

func (r *CachedOrderRepository) GetLines(ctx context.Context, orderID int) ([]models.OrderLine, error) {
	return readThrough(ctx, r.cache, orderLinesFamily(orderID), func(ctx context.Context) ([]models.OrderLine, error) {
		return r.repo.GetLines(ctx, orderID)
	}, always[[]models.OrderLine])
}
