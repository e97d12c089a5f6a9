package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/cache"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/client"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/config"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/db"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/handlers"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/messaging"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/orders"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/publisher"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/server"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("❌ order-service stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("order-service", 8082)
	if err != nil {
		return err
	}
	telemetry.InitLogger(cfg.ServiceName, cfg.Telemetry.LogLevel)

	shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(flushCtx)
	}()

	database, err := db.NewPostgresDB(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := database.Migrate(ctx, db.OrderSchema); err != nil {
		return err
	}

	redisCache, err := cache.NewRedisCache(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisCache.Close()

	rabbitMQ, err := messaging.NewRabbitMQ(ctx, cfg.RabbitMQ)
	if err != nil {
		return err
	}
	defer rabbitMQ.Close()

	confirmations, err := publisher.NewConfirmationPublisher(ctx, rabbitMQ, cfg.Orders.ConfirmationQueue)
	if err != nil {
		return err
	}

	consul := server.ConnectConsul(ctx, cfg.Consul)
	httpClient := client.NewHTTPClient(cfg.Orders.StepTimeout)

	store := db.NewCachedOrderRepository(db.NewOrderRepository(database), redisCache)
	service := orders.NewService(
		store,
		client.NewCustomerClient(consul.Endpoint("customer-service", cfg.Services.CustomerURL), httpClient),
		client.NewProductClient(consul.Endpoint("product-service", cfg.Services.ProductURL), httpClient),
		client.NewPaymentClient(consul.Endpoint("payment-service", cfg.Services.PaymentURL), httpClient),
		confirmations,
		orders.WithStepTimeout(cfg.Orders.StepTimeout),
	)

	router := handlers.NewEngine(cfg.ServiceName)
	router.GET("/health", handlers.Health(cfg.ServiceName, map[string]handlers.HealthCheck{
		"postgres": database.Ping,
		"redis":    redisCache.Ping,
		"rabbitmq": rabbitMQ.Ping,
	}))
	handlers.RegisterOrderRoutes(router, handlers.NewOrderHandler(service))

	deregister := server.Announce(ctx, consul, cfg)
	defer deregister()

	return server.Run(ctx, cfg.HTTP.Addr(), router)
}

