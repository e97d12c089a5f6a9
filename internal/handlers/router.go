package handlers

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewEngine returns a gin engine with recovery, tracing, request ids and request logging.
func NewEngine(service string) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		otelgin.Middleware(service),
		RequestID(),
		Logger(),
	)
	return router
}

func RegisterOrderRoutes(router gin.IRouter, h *OrderHandler) {
	v1 := router.Group("/api/v1")
	v1.POST("/orders", h.CreateOrder)
	v1.GET("/orders", h.ListOrders)
	v1.GET("/orders/:id", h.GetOrder)
	v1.GET("/order-lines/order/:id", h.ListOrderLines)
}

func RegisterProductRoutes(router gin.IRouter, h *ProductHandler) {
	v1 := router.Group("/api/v1")
	v1.GET("/products", h.ListProducts)
	v1.POST("/products", h.CreateProduct)
	v1.POST("/products/purchase", h.PurchaseProducts)
	v1.GET("/products/:id", h.GetProduct)
	v1.DELETE("/products/:id", h.DeleteProduct)
}

func RegisterPaymentRoutes(router gin.IRouter, h *PaymentHandler) {
	v1 := router.Group("/api/v1")
	v1.POST("/payments", h.CreatePayment)
	v1.GET("/payments/:id", h.GetPayment)
}

func RegisterCustomerRoutes(router gin.IRouter, h *CustomerHandler) {
	v1 := router.Group("/api/v1")
	v1.POST("/customers", h.CreateCustomer)
	v1.GET("/customers/:id", h.GetCustomer)
}
