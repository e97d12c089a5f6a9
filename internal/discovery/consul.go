package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/hashicorp/consul/api"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/client"
	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/config"
)

type ConsulClient struct {
	client *api.Client
}

type ServiceConfig struct {
	Name string
	ID   string
	// Address defaults to the preferred outbound IP of this machine.
	Address string
	Port    int
	Tags    []string
}

func NewConsulClient(ctx context.Context, cfg config.ConsulConfig) (*ConsulClient, error) {
	return NewConsulClientAt(ctx, fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
}

// NewConsulClientAt connects to the agent at address and checks it answers.
func NewConsulClientAt(ctx context.Context, address string) (*ConsulClient, error) {
	consulCfg := api.DefaultConfig()
	consulCfg.Address = address

	client, err := api.NewClient(consulCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}

	if _, err := client.Status().Leader(); err != nil {
		return nil, fmt.Errorf("failed to connect to Consul: %w", err)
	}

	slog.InfoContext(ctx, "✅ Connected to Consul", "address", address)

	return &ConsulClient{client: client}, nil
}

// getOutboundIP gets the preferred outbound IP of this machine
func getOutboundIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String()
}

// Register registers a service with an HTTP health check on /health.
func (c *ConsulClient) Register(ctx context.Context, cfg ServiceConfig) error {
	hostIP := cfg.Address
	if hostIP == "" {
		hostIP = getOutboundIP()
	}

	registration := &api.AgentServiceRegistration{
		ID:      cfg.ID,
		Name:    cfg.Name,
		Port:    cfg.Port,
		Address: hostIP,
		Tags:    cfg.Tags,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", hostIP, cfg.Port),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}

	if err := c.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	slog.InfoContext(ctx, "✅ Registered service", "name", cfg.Name, "id", cfg.ID, "address", hostIP, "port", cfg.Port)
	return nil
}

func (c *ConsulClient) Deregister(ctx context.Context, serviceID string) error {
	if err := c.client.Agent().ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}

	slog.InfoContext(ctx, "✅ Deregistered service", "id", serviceID)
	return nil
}

// GetService returns the first healthy instance of a service.
func (c *ConsulClient) GetService(ctx context.Context, serviceName string) (string, int, error) {
	opts := (&api.QueryOptions{}).WithContext(ctx)

	services, _, err := c.client.Health().Service(serviceName, "", true, opts)
	if err != nil {
		return "", 0, fmt.Errorf("failed to get service: %w", err)
	}

	if len(services) == 0 {
		return "", 0, fmt.Errorf("no healthy instances of %s found", serviceName)
	}

	service := services[0].Service
	address := service.Address
	if address == "" {
		address = services[0].Node.Address
	}
	if address == "" {
		address = "localhost"
	}

	return address, service.Port, nil
}

// GetServiceURL returns the base http URL of a healthy instance.
func (c *ConsulClient) GetServiceURL(ctx context.Context, serviceName string) (string, error) {
	address, port, err := c.GetService(ctx, serviceName)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("http://%s:%d", address, port), nil
}

// Endpoint resolves serviceName through this agent, falling back to fallback.
// A nil client yields an endpoint that always uses fallback.
func (c *ConsulClient) Endpoint(serviceName, fallback string) client.Endpoint {
	e := client.Endpoint{Service: serviceName, Fallback: fallback}
	if c != nil {
		e.Resolver = c
	}
	return e
}
