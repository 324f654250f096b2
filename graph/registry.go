package graph

import (
	"context"

	"github.com/sygra-go/sygra/types"
)

// LambdaFunc is a registered function a Lambda node invokes. It receives
// the node's frozen config and the current state, and returns a patch of
// keys to merge into the record (spec §4.3 "merges the returned dict into
// state"). ctx carries cancellation for functions that perform I/O; a
// purely synchronous function simply ignores it, which is Go's natural
// replacement for the source's asyncio.iscoroutinefunction dispatch (spec
// §9 Design Notes).
type LambdaFunc func(ctx context.Context, cfg NodeConfig, state *types.State) (types.Record, error)

// PredicateFunc is a registered edge predicate: a pure function of state
// returning the next node's name (spec §3 "Edge").
type PredicateFunc func(state *types.State) string

// ProcessHook is a registered pre/post-process hook for an LLM node.
type ProcessHook func(state *types.State) error

// Registry is the compile-time string-to-function table replacing the
// source's dynamic "module.Class.apply" function references (spec §9
// Design Notes "Dynamic function registry"). Every node config that names
// a function is validated against this registry at graph-construction
// time; unknown names are configuration errors.
type Registry struct {
	lambdas    map[string]LambdaFunc
	predicates map[string]PredicateFunc
	hooks      map[string]ProcessHook
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		lambdas:    make(map[string]LambdaFunc),
		predicates: make(map[string]PredicateFunc),
		hooks:      make(map[string]ProcessHook),
	}
}

// RegisterLambda installs a named Lambda function.
func (r *Registry) RegisterLambda(name string, fn LambdaFunc) { r.lambdas[name] = fn }

// RegisterPredicate installs a named edge predicate.
func (r *Registry) RegisterPredicate(name string, fn PredicateFunc) { r.predicates[name] = fn }

// RegisterHook installs a named pre/post-process hook.
func (r *Registry) RegisterHook(name string, fn ProcessHook) { r.hooks[name] = fn }

func (r *Registry) lambda(name string) (LambdaFunc, bool) {
	fn, ok := r.lambdas[name]
	return fn, ok
}

func (r *Registry) predicate(name string) (PredicateFunc, bool) {
	fn, ok := r.predicates[name]
	return fn, ok
}

func (r *Registry) hook(name string) (ProcessHook, bool) {
	fn, ok := r.hooks[name]
	return fn, ok
}
