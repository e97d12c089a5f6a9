package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/config"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/gateway"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/handlers"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/server"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("❌ api-gateway stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("api-gateway", 8080)
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

	consul := server.ConnectConsul(ctx, cfg.Consul)
	gw := gateway.New(ctx,
		consul.Endpoint("order-service", cfg.Services.OrderURL),
		consul.Endpoint("product-service", cfg.Services.ProductURL),
	)

	router := handlers.NewEngine(cfg.ServiceName)
	gateway.RegisterRoutes(router, gw, "order-service", "product-service")

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return gw.Watch(ctx, gateway.DefaultRefreshInterval) })
	eg.Go(func() error { return server.Run(ctx, cfg.HTTP.Addr(), router) })
	return eg.Wait()
}
