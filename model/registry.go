package model

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sygra-go/sygra/types"
)

// Registry holds one Client per configured model name, resolved once at
// startup from the model config map (spec §6 "Model config").
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

// NewRegistry builds a Registry from a set of model configs, constructing
// one Adapter and Client per entry. The seedBase value is mixed with an
// index so each model's load balancer gets an independent deterministic
// RNG stream.
//
// Every client defaults to tripping the process via os.Exit when its
// server-down breaker fires (spec §4.2 "last-resort safety trip"; ported
// from custom_models.py's unconditional sys.exit()). Callers needing a
// different trip action (tests, embedding callers) pass their own
// WithProcessExiter in opts, which is applied after the default and wins.
func NewRegistry(configs map[string]*Config, logger *zap.Logger, seedBase int64, opts ...ClientOption) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{clients: make(map[string]*Client, len(configs)), logger: logger}

	i := int64(0)
	for name, cfg := range configs {
		cfg.Name = name
		adapter, err := NewAdapter(cfg)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", name, err)
		}
		transport := NewHTTPTransport(cfg.RequestTimeout)
		clientOpts := append([]ClientOption{WithLogger(logger), WithProcessExiter(os.Exit)}, opts...)
		client, err := NewClient(cfg, adapter, transport, seedBase+i, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", name, err)
		}
		r.clients[name] = client
		i++
	}
	return r, nil
}

// Get returns the Client for a model name, or a configuration error if the
// name is unresolved (spec §4.4 graph validation: "every LLM node's
// declared model exists").
func (r *Registry) Get(name string) (*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[name]
	if !ok {
		return nil, types.NewError(types.ErrConfigInvalid, "unknown model: "+name)
	}
	return client, nil
}

// Has reports whether a model name is registered, without erroring.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[name]
	return ok
}

// PingAll pings every registered model's every URL and returns an error
// naming the first model whose ping was not 200 and its status (the
// failing URL is logged by Client.Ping), aborting batch startup (spec
// §4.5 "Startup").
func (r *Registry) PingAll(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, client := range r.clients {
		status := client.Ping(ctx)
		if status != 200 {
			return types.NewError(types.ErrConfigInvalid,
				fmt.Sprintf("model %q failed startup ping with status %d", name, status))
		}
	}
	return nil
}

// httpTransport is the default Transport, backed by net/http.
type httpTransport struct {
	client *http.Client
}

// NewHTTPTransport builds a Transport with the given per-request timeout
// (spec §5 "Timeouts").
func NewHTTPTransport(timeout time.Duration) Transport {
	return &httpTransport{client: &http.Client{Timeout: timeout}}
}
