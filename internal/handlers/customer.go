package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/models"
)

// CustomerService is implemented by db.CustomerRepository.
type CustomerService interface {
	Create(ctx context.Context, req models.CustomerRequest) (*models.Customer, error)
	GetByID(ctx context.Context, id string) (*models.Customer, error)
}

type CustomerHandler struct {
	customers CustomerService
}

func NewCustomerHandler(customers CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req models.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.customers.Create(c.Request.Context(), req)
	if err != nil {
		writeInternalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customer, err := h.customers.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeInternalError(c, err)
		return
	}
	if customer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
		return
	}

	c.JSON(http.StatusOK, customer)
}
