// Package mocks provides builder-style fakes for the model package's
// Adapter and Transport interfaces, and a stub Sink for the batch
// package, so callers can construct realistic but controllable
// double-ended test doubles without a real vendor endpoint.
package mocks

import (
	"sync"

	"github.com/sygra-go/sygra/model"
	"github.com/sygra-go/sygra/types"
)

// Adapter is a configurable model.Adapter double: BuildRequest always
// succeeds, ParseResponse returns a fixed or func-computed response.
type Adapter struct {
	mu sync.Mutex

	name           string
	nativeSchema   bool
	parseFunc      func(raw []byte, status int) (*types.ModelResponse, error)
	buildErr       error
	calls          []AdapterCall
}

// AdapterCall records one BuildRequest invocation.
type AdapterCall struct {
	Messages []types.Message
	Params   model.GenerationParams
	Schema   []byte
}

// NewAdapter returns an Adapter named name. By default BuildRequest sends
// the last message's text as the request body, and ParseResponse returns
// the raw response body as Text with the observed status.
func NewAdapter(name string) *Adapter {
	return &Adapter{name: name}
}

// WithNativeStructuredOutput marks the adapter as natively supporting
// schema-constrained generation.
func (a *Adapter) WithNativeStructuredOutput(supported bool) *Adapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nativeSchema = supported
	return a
}

// WithParseFunc overrides ParseResponse's behavior entirely.
func (a *Adapter) WithParseFunc(fn func(raw []byte, status int) (*types.ModelResponse, error)) *Adapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.parseFunc = fn
	return a
}

// WithBuildError makes BuildRequest fail with err.
func (a *Adapter) WithBuildError(err error) *Adapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.buildErr = err
	return a
}

func (a *Adapter) BuildRequest(messages []types.Message, params model.GenerationParams, schema []byte) (model.WireRequest, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, AdapterCall{Messages: messages, Params: params, Schema: schema})
	if a.buildErr != nil {
		return model.WireRequest{}, a.buildErr
	}
	var body []byte
	if len(messages) > 0 {
		body = []byte(messages[len(messages)-1].Text())
	}
	return model.WireRequest{Method: "POST", Path: "/v1/chat/completions", Body: body}, nil
}

func (a *Adapter) ParseResponse(raw []byte, status int) (*types.ModelResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.parseFunc != nil {
		return a.parseFunc(raw, status)
	}
	return &types.ModelResponse{Text: string(raw), StatusCode: status}, nil
}

func (a *Adapter) NativeStructuredOutputSupported() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nativeSchema
}

func (a *Adapter) Name() string { return a.name }

// Calls returns a copy of every recorded BuildRequest call.
func (a *Adapter) Calls() []AdapterCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]AdapterCall{}, a.calls...)
}

var _ model.Adapter = (*Adapter)(nil)
