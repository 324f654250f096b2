package mocks

import (
	"context"
	"sync"

	"github.com/sygra-go/sygra/model"
	"github.com/sygra-go/sygra/types"
)

// Transport is a configurable model.Transport double. By default it
// returns a 200 with an empty body; WithStatus/WithBody/WithFunc/
// WithFailAfter shape its behavior per test.
type Transport struct {
	mu sync.Mutex

	status    int
	body      []byte
	err       error
	doFunc    func(ctx context.Context, params types.ModelParams, req model.WireRequest) (int, []byte, error)
	failAfter int
	callCount int
	calls     []TransportCall
}

// TransportCall records one Do invocation.
type TransportCall struct {
	Params types.ModelParams
	Req    model.WireRequest
}

// NewTransport returns a Transport that always answers 200 with an empty
// body.
func NewTransport() *Transport {
	return &Transport{status: 200}
}

// WithStatus fixes the status code every call returns.
func (tr *Transport) WithStatus(status int) *Transport {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.status = status
	return tr
}

// WithBody fixes the response body every call returns.
func (tr *Transport) WithBody(body []byte) *Transport {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.body = body
	return tr
}

// WithError makes every call fail with err instead of returning a status.
func (tr *Transport) WithError(err error) *Transport {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.err = err
	return tr
}

// WithFunc overrides Do entirely.
func (tr *Transport) WithFunc(fn func(ctx context.Context, params types.ModelParams, req model.WireRequest) (int, []byte, error)) *Transport {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.doFunc = fn
	return tr
}

// WithFailAfter makes the transport return a 503 starting on the n-th
// call, simulating a model going down mid-batch (for circuit-breaker and
// retry-loop tests).
func (tr *Transport) WithFailAfter(n int) *Transport {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.failAfter = n
	return tr
}

func (tr *Transport) Do(ctx context.Context, params types.ModelParams, req model.WireRequest) (int, []byte, error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	tr.callCount++
	tr.calls = append(tr.calls, TransportCall{Params: params, Req: req})

	if tr.doFunc != nil {
		return tr.doFunc(ctx, params, req)
	}
	if tr.err != nil {
		return 0, nil, tr.err
	}
	if tr.failAfter > 0 && tr.callCount >= tr.failAfter {
		return 503, []byte(`{"error":"service unavailable"}`), nil
	}
	return tr.status, tr.body, nil
}

// CallCount returns the number of Do invocations so far.
func (tr *Transport) CallCount() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.callCount
}

// Calls returns a copy of every recorded Do call.
func (tr *Transport) Calls() []TransportCall {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]TransportCall{}, tr.calls...)
}

var _ model.Transport = (*Transport)(nil)
