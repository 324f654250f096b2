package model

import (
	"context"

	"github.com/sygra-go/sygra/types"
)

// GenerationParams carries per-call generation settings resolved from a
// model's configured parameters plus any node-level overrides.
type GenerationParams struct {
	Extra map[string]any
}

// Adapter speaks one vendor's wire protocol (spec §4.1). Adapters are
// stateless: one instance per (vendor, model) pair, safe for concurrent use
// by every in-flight call against that model.
type Adapter interface {
	// BuildRequest transforms canonical messages into the vendor's wire
	// payload. If schema is non-nil, the adapter encodes it per vendor
	// convention when NativeStructuredOutputSupported is true; callers
	// must not pass schema to adapters that don't support it natively.
	BuildRequest(messages []types.Message, params GenerationParams, schema []byte) (WireRequest, error)

	// ParseResponse extracts a normalized ModelResponse from the vendor's
	// raw response body and observed status code.
	ParseResponse(raw []byte, status int) (*types.ModelResponse, error)

	// NativeStructuredOutputSupported reports whether BuildRequest honors
	// a schema natively, or the Model Client must use the fallback path.
	NativeStructuredOutputSupported() bool

	// Name identifies the adapter kind (e.g. "openaicompat",
	// "vendor_envelope").
	Name() string
}

// WireRequest is the vendor-shaped payload an Adapter produces, plus the
// transport details the Model Client needs to dispatch it.
type WireRequest struct {
	Method string
	Path   string
	Body   []byte
	Header map[string]string
}

// Transport performs the actual network call. Production code uses an
// *http.Client-backed implementation; tests substitute a fake.
type Transport interface {
	Do(ctx context.Context, params types.ModelParams, req WireRequest) (status int, body []byte, err error)
}

// AdapterFactory constructs an Adapter for a model_type string.
type AdapterFactory func(cfg *Config) (Adapter, error)

var adapterFactories = map[string]AdapterFactory{}

// RegisterAdapter installs a constructor for a model_type name. Called from
// each providers subpackage's init, mirroring the teacher's factory
// registration pattern but without a giant switch statement, so adding a
// vendor never touches this file.
func RegisterAdapter(modelType string, factory AdapterFactory) {
	adapterFactories[modelType] = factory
}

// NewAdapter resolves cfg.ModelType to a registered Adapter constructor.
// Unknown types are a configuration error (spec §7), fatal at startup.
func NewAdapter(cfg *Config) (Adapter, error) {
	factory, ok := adapterFactories[cfg.ModelType]
	if !ok {
		return nil, types.NewError(types.ErrConfigInvalid, "unknown model_type: "+cfg.ModelType)
	}
	return factory(cfg)
}
