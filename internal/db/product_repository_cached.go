package db

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/models"
)

type ProductStore interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int) (*models.Product, error)
	Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error)
	Delete(ctx context.Context, id int) error
	Purchase(ctx context.Context, lines []models.PurchaseLine) ([]models.PurchaseResult, error)
}

// CachedProductRepository serves product reads from cache and bumps the
// affected families whenever stock or the catalogue changes.
type CachedProductRepository struct {
	repo  ProductStore
	cache Cache
}

func NewCachedProductRepository(repo ProductStore, cache Cache) *CachedProductRepository {
	return &CachedProductRepository{
		repo:  repo,
		cache: cache,
	}
}

func productFamily(id int) string {
	return fmt.Sprintf("product:%d", id)
}

const allProductsFamily = "products:all"

func (r *CachedProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	return readThrough(ctx, r.cache, allProductsFamily, r.repo.GetAll, always[[]models.Product])
}

func (r *CachedProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	return readThrough(ctx, r.cache, productFamily(id), func(ctx context.Context) (*models.Product, error) {
		return r.repo.GetByID(ctx, id)
	}, notNil[models.Product])
}

func (r *CachedProductRepository) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	product, err := r.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	bumpGenerations(ctx, r.cache, allProductsFamily)
	return product, nil
}

func (r *CachedProductRepository) Delete(ctx context.Context, id int) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	bumpGenerations(ctx, r.cache, productFamily(id), allProductsFamily)
	return nil
}

func (r *CachedProductRepository) Purchase(ctx context.Context, lines []models.PurchaseLine) ([]models.PurchaseResult, error) {
	results, err := r.repo.Purchase(ctx, lines)
	if err != nil {
		return nil, err
	}

	families := lo.Uniq(lo.Map(lines, func(l models.PurchaseLine, _ int) string { return productFamily(l.ProductID) }))
	bumpGenerations(ctx, r.cache, append(families, allProductsFamily)...)
	return results, nil
}
