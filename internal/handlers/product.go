package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/db"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/models"
)

// ProductService is implemented by db.CachedProductRepository.
type ProductService interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int) (*models.Product, error)
	Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error)
	Delete(ctx context.Context, id int) error
	Purchase(ctx context.Context, lines []models.PurchaseLine) ([]models.PurchaseResult, error)
}

type ProductHandler struct {
	products ProductService
}

func NewProductHandler(products ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.products.GetAll(c.Request.Context())
	if err != nil {
		writeProductError(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "invalid product ID")
	if !ok {
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		writeProductError(c, err)
		return
	}

	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		writeProductError(c, err)
		return
	}

	slog.InfoContext(c.Request.Context(), "✅ Product created", "product_id", product.ID)
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c, "invalid product ID")
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		writeProductError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// PurchaseProducts reserves every requested line or none of them.
func (h *ProductHandler) PurchaseProducts(c *gin.Context) {
	var lines []models.PurchaseLine
	if err := c.ShouldBindJSON(&lines); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(lines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "you should at least purchase one product"})
		return
	}
	for _, l := range lines {
		if err := l.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	results, err := h.products.Purchase(c.Request.Context(), lines)
	if err != nil {
		writeProductError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

func writeProductError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, db.ErrInsufficientStock):
		status = http.StatusBadRequest
	case errors.Is(err, db.ErrProductNotFound):
		status = http.StatusBadRequest
		if c.Request.Method == http.MethodDelete {
			status = http.StatusNotFound
		}
	default:
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
