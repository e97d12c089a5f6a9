// Package config loads service configuration from the environment, with an
// optional YAML/JSON file named by CONFIG_FILE. Environment variables win over
// the file and the file wins over defaults. Keys map to variables by
// upper-casing and replacing dots, so "postgres.host" is POSTGRES_HOST.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Host string
	Port int
	TTL  time.Duration
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type RabbitMQConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", c.User, c.Password, c.Host, c.Port)
}

type ConsulConfig struct {
	Enabled bool
	Host    string
	Port    int
}

// ServicesConfig holds the fallback base URLs used when Consul has no healthy instance.
type ServicesConfig struct {
	CustomerURL string
	ProductURL  string
	PaymentURL  string
	OrderURL    string
}

type OrdersConfig struct {
	StepTimeout       time.Duration
	ConfirmationQueue string
}

type TelemetryConfig struct {
	Enabled     bool
	Endpoint    string
	Environment string
	LogLevel    string
}

type Config struct {
	ServiceName string
	ServiceID   string

	HTTP      HTTPConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	Consul    ConsulConfig
	Services  ServicesConfig
	Orders    OrdersConfig
	Telemetry TelemetryConfig
}

// Load builds the configuration of serviceName, listening on port unless HTTP_PORT says otherwise.
func Load(serviceName string, port int) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, serviceName, port)

	if file := v.GetString("config.file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		ServiceName: serviceName,
		ServiceID:   v.GetString("service.id"),
		HTTP: HTTPConfig{
			Host: v.GetString("http.host"),
			Port: v.GetInt("http.port"),
		},
		Postgres: PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetInt("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			DBName:   v.GetString("postgres.db"),
			SSLMode:  v.GetString("postgres.sslmode"),
		},
		Redis: RedisConfig{
			Host: v.GetString("redis.host"),
			Port: v.GetInt("redis.port"),
			TTL:  v.GetDuration("redis.ttl"),
		},
		RabbitMQ: RabbitMQConfig{
			Host:     v.GetString("rabbitmq.host"),
			Port:     v.GetInt("rabbitmq.port"),
			User:     v.GetString("rabbitmq.user"),
			Password: v.GetString("rabbitmq.password"),
		},
		Consul: ConsulConfig{
			Enabled: v.GetBool("consul.enabled"),
			Host:    v.GetString("consul.host"),
			Port:    v.GetInt("consul.port"),
		},
		Services: ServicesConfig{
			CustomerURL: v.GetString("customer.service.url"),
			ProductURL:  v.GetString("product.service.url"),
			PaymentURL:  v.GetString("payment.service.url"),
			OrderURL:    v.GetString("order.service.url"),
		},
		Orders: OrdersConfig{
			StepTimeout:       v.GetDuration("orders.step.timeout"),
			ConfirmationQueue: v.GetString("orders.confirmation.queue"),
		},
		Telemetry: TelemetryConfig{
			Enabled:     v.GetBool("otel.enabled"),
			Endpoint:    v.GetString("otel.exporter.otlp.endpoint"),
			Environment: v.GetString("otel.environment"),
			LogLevel:    v.GetString("log.level"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", serviceName, err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, serviceName string, port int) {
	v.SetDefault("service.id", serviceName+"-1")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", port)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "ecommerce")
	v.SetDefault("postgres.password", "ecommerce123")
	v.SetDefault("postgres.db", "ecommerce")
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.ttl", 5*time.Minute)

	v.SetDefault("rabbitmq.host", "localhost")
	v.SetDefault("rabbitmq.port", 5672)
	v.SetDefault("rabbitmq.user", "guest")
	v.SetDefault("rabbitmq.password", "guest")

	v.SetDefault("consul.enabled", true)
	v.SetDefault("consul.host", "localhost")
	v.SetDefault("consul.port", 8500)

	v.SetDefault("customer.service.url", "http://localhost:8090")
	v.SetDefault("product.service.url", "http://localhost:8081")
	v.SetDefault("payment.service.url", "http://localhost:8060")
	v.SetDefault("order.service.url", "http://localhost:8082")

	v.SetDefault("orders.step.timeout", 10*time.Second)
	v.SetDefault("orders.confirmation.queue", "order.confirmation")

	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.exporter.otlp.endpoint", "localhost:4317")
	v.SetDefault("otel.environment", "local")
	v.SetDefault("log.level", "info")
}

func (c *Config) validate() error {
	var errs []error

	if c.HTTP.Port <= 0 {
		errs = append(errs, fmt.Errorf("http port must be positive, got %d", c.HTTP.Port))
	}
	if c.Orders.StepTimeout <= 0 {
		errs = append(errs, fmt.Errorf("orders step timeout must be positive, got %s", c.Orders.StepTimeout))
	}
	if c.Orders.ConfirmationQueue == "" {
		errs = append(errs, errors.New("orders confirmation queue is required"))
	}
	if c.Redis.TTL <= 0 {
		errs = append(errs, fmt.Errorf("redis ttl must be positive, got %s", c.Redis.TTL))
	}

	return errors.Join(errs...)
}
