package discovery_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/discovery"
)

type fakeAgent struct {
	mu         sync.Mutex
	registered []api.AgentServiceRegistration
	healthy    map[string][]*api.ServiceEntry
}

func (a *fakeAgent) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case r.URL.Path == "/v1/status/leader":
		_ = json.NewEncoder(w).Encode("127.0.0.1:8300")
	case r.URL.Path == "/v1/agent/service/register":
		var reg api.AgentServiceRegistration
		if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a.registered = append(a.registered, reg)
	case strings.HasPrefix(r.URL.Path, "/v1/agent/service/deregister/"):
	case strings.HasPrefix(r.URL.Path, "/v1/health/service/"):
		name := strings.TrimPrefix(r.URL.Path, "/v1/health/service/")
		entries := a.healthy[name]
		if entries == nil {
			entries = []*api.ServiceEntry{}
		}
		_ = json.NewEncoder(w).Encode(entries)
	default:
		http.NotFound(w, r)
	}
}

func newClient(t *testing.T, agent *fakeAgent) *discovery.ConsulClient {
	t.Helper()

	srv := httptest.NewServer(agent)
	t.Cleanup(srv.Close)

	client, err := discovery.NewConsulClientAt(context.Background(), strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)
	return client
}

func TestRegister(t *testing.T) {
	agent := &fakeAgent{}
	client := newClient(t, agent)

	err := client.Register(context.Background(), discovery.ServiceConfig{
		Name:    "order-service",
		ID:      "order-service-1",
		Address: "10.0.0.5",
		Port:    8082,
		Tags:    []string{"api", "orders"},
	})
	require.NoError(t, err)

	require.Len(t, agent.registered, 1)
	reg := agent.registered[0]
	assert.Equal(t, "order-service", reg.Name)
	assert.Equal(t, "10.0.0.5", reg.Address)
	assert.Equal(t, "http://10.0.0.5:8082/health", reg.Check.HTTP)

	require.NoError(t, client.Deregister(context.Background(), "order-service-1"))
}

func TestGetServiceURL(t *testing.T) {
	agent := &fakeAgent{healthy: map[string][]*api.ServiceEntry{
		"product-service": {{
			Node:    &api.Node{Address: "10.0.0.9"},
			Service: &api.AgentService{Service: "product-service", Address: "10.0.0.7", Port: 8081},
		}},
		"customer-service": {{
			Node:    &api.Node{Address: "10.0.0.9"},
			Service: &api.AgentService{Service: "customer-service", Port: 8090},
		}},
	}}
	client := newClient(t, agent)

	url, err := client.GetServiceURL(context.Background(), "product-service")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.7:8081", url)

	url, err = client.GetServiceURL(context.Background(), "customer-service")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.9:8090", url)

	_, err = client.GetServiceURL(context.Background(), "payment-service")
	require.EqualError(t, err, "no healthy instances of payment-service found")
}

func TestNewConsulClientUnreachable(t *testing.T) {
	_, err := discovery.NewConsulClientAt(context.Background(), "127.0.0.1:1")
	require.ErrorContains(t, err, "failed to connect to Consul")
}

func TestEndpoint(t *testing.T) {
	agent := &fakeAgent{healthy: map[string][]*api.ServiceEntry{
		"order-service": {{
			Node:    &api.Node{Address: "10.0.0.9"},
			Service: &api.AgentService{Service: "order-service", Address: "10.0.0.8", Port: 8082},
		}},
	}}
	consul := newClient(t, agent)
	ctx := context.Background()

	assert.Equal(t, "http://10.0.0.8:8082", consul.Endpoint("order-service", "http://order-service:8082").URL(ctx))
	assert.Equal(t, "http://payment-service:8060", consul.Endpoint("payment-service", "http://payment-service:8060").URL(ctx))

	var absent *discovery.ConsulClient
	e := absent.Endpoint("order-service", "http://order-service:8082")
	assert.Nil(t, e.Resolver)
	assert.Equal(t, "http://order-service:8082", e.URL(ctx))
}
