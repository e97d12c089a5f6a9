package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/models"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/orders"
)

// OrderService is implemented by orders.Service.
type OrderService interface {
	CreateOrder(ctx context.Context, req models.OrderRequest) (int, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	FindByID(ctx context.Context, orderID int) (models.Order, error)
	FindLines(ctx context.Context, orderID int) ([]models.OrderLine, error)
}

type OrderHandler struct {
	service OrderService
}

func NewOrderHandler(service OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// CreateOrder places an order and answers 201 {"id": n}.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req models.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.service.CreateOrder(c.Request.Context(), req)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	all, err := h.service.FindAll(c.Request.Context())
	if err != nil {
		writeOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, all)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "invalid order ID")
	if !ok {
		return
	}

	order, err := h.service.FindByID(c.Request.Context(), id)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListOrderLines(c *gin.Context) {
	id, ok := pathID(c, "invalid order ID")
	if !ok {
		return
	}

	lines, err := h.service.FindLines(c.Request.Context(), id)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, lines)
}

func orderErrorStatus(err error) int {
	switch {
	case errors.Is(err, orders.ErrBusinessRule):
		return http.StatusBadRequest
	case errors.Is(err, orders.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, orders.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeOrderError(c *gin.Context, err error) {
	status := orderErrorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context, message string) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": message})
		return 0, false
	}
	return id, true
}
