package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/config"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/db"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/handlers"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/server"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("❌ customer-service stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("customer-service", 8090)
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
	if err := database.Migrate(ctx, db.CustomerSchema); err != nil {
		return err
	}

	router := handlers.NewEngine(cfg.ServiceName)
	router.GET("/health", handlers.Health(cfg.ServiceName, map[string]handlers.HealthCheck{
		"postgres": database.Ping,
	}))
	handlers.RegisterCustomerRoutes(router, handlers.NewCustomerHandler(db.NewCustomerRepository(database)))

	consul := server.ConnectConsul(ctx, cfg.Consul)
	deregister := server.Announce(ctx, consul, cfg)
	defer deregister()

	return server.Run(ctx, cfg.HTTP.Addr(), router)
}
