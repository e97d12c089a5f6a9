package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID                int             `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	AvailableQuantity float64         `json:"available_quantity"`
	Price             decimal.Decimal `json:"price"`
	CreatedAt         time.Time       `json:"created_at"`
}

type CreateProductRequest struct {
	Name              string          `json:"name" binding:"required"`
	Description       string          `json:"description" binding:"required"`
	AvailableQuantity float64         `json:"available_quantity" binding:"gt=0"`
	Price             decimal.Decimal `json:"price"`
}

func (r CreateProductRequest) Validate() error {
	if !r.Price.IsPositive() {
		return errors.New("product price must be greater than 0")
	}
	return nil
}

// PurchaseLine is one requested (product, quantity) pair.
type PurchaseLine struct {
	ProductID int     `json:"product_id" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"gt=0"`
}

func (l PurchaseLine) Validate() error {
	if l.ProductID <= 0 {
		return errors.New("product is required")
	}
	if l.Quantity <= 0 {
		return errors.New("quantity must be greater than 0")
	}
	return nil
}

// PurchaseResult is a priced and reserved purchase line.
type PurchaseResult struct {
	ProductID   int             `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    float64         `json:"quantity"`
}
