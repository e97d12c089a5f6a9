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
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/consumer"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/db"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/handlers"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/messaging"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/server"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/telemetry"
)

const prefetch = 10

func main() {
	if err := run(); err != nil {
		slog.Error("❌ notification-service stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("notification-service", 8083)
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
	if err := database.Migrate(ctx, db.NotificationSchema); err != nil {
		return err
	}

	rabbitMQ, err := messaging.NewRabbitMQ(ctx, cfg.RabbitMQ)
	if err != nil {
		return err
	}
	defer rabbitMQ.Close()

	queue := cfg.Orders.ConfirmationQueue
	if err := rabbitMQ.DeclareQueue(ctx, queue); err != nil {
		return err
	}

	router := handlers.NewEngine(cfg.ServiceName)
	router.GET("/health", handlers.Health(cfg.ServiceName, map[string]handlers.HealthCheck{
		"postgres": database.Ping,
		"rabbitmq": rabbitMQ.Ping,
	}))

	consul := server.ConnectConsul(ctx, cfg.Consul)
	deregister := server.Announce(ctx, consul, cfg)
	defer deregister()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		messages, err := rabbitMQ.Consume(ctx, queue, prefetch)
		if err != nil {
			return err
		}
		notifier := consumer.NewStoreNotifier(db.NewNotificationRepository(database))
		return consumer.NewNotificationConsumer(notifier).Run(ctx, messages)
	})
	eg.Go(func() error { return server.Run(ctx, cfg.HTTP.Addr(), router) })
	return eg.Wait()
}
