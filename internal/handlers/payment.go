package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/models"
)

// PaymentService is implemented by db.PaymentRepository.
type PaymentService interface {
	Create(ctx context.Context, req models.PaymentRequest) (*models.Payment, error)
	GetByID(ctx context.Context, id int) (*models.Payment, error)
}

type PaymentHandler struct {
	payments PaymentService
}

func NewPaymentHandler(payments PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// CreatePayment records the payment of an order and answers 201 {"id": n}.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.payments.Create(c.Request.Context(), req)
	if err != nil {
		writeInternalError(c, err)
		return
	}

	slog.InfoContext(c.Request.Context(), "✅ Payment recorded",
		"payment_id", payment.ID, "order_id", payment.OrderID, "order_reference", payment.OrderReference)
	c.JSON(http.StatusCreated, gin.H{"id": payment.ID})
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := pathID(c, "invalid payment ID")
	if !ok {
		return
	}

	payment, err := h.payments.GetByID(c.Request.Context(), id)
	if err != nil {
		writeInternalError(c, err)
		return
	}
	if payment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}

	c.JSON(http.StatusOK, payment)
}

func writeInternalError(c *gin.Context, err error) {
	slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
