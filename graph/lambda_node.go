package graph

import (
	"context"
	"time"

	"github.com/sygra-go/sygra/types"
)

// LambdaNode resolves a named function and calls it with (config, state),
// merging the returned record patch into state. Execution time and success
// are recorded as node metadata (spec §4.3 "Lambda node"; ported from
// lambda_node.py's _sync_exec_wrapper/_async_exec_wrapper — Go has no
// separate async function type, so both wrappers collapse into one that
// always passes ctx through; a function wanting asynchronous behavior
// simply launches its own goroutines internally, per spec §9 Design Notes).
type LambdaNode struct {
	baseNode
	fn     LambdaFunc
	config NodeConfig
}

// NewLambdaNode resolves cfg.Lambda against registry. An unresolved name is
// a configuration error (spec §7), caught at graph-construction time.
func NewLambdaNode(name string, cfg NodeConfig, registry *Registry) (*LambdaNode, error) {
	fn, ok := registry.lambda(cfg.Lambda)
	if !ok {
		return nil, types.NewError(types.ErrConfigInvalid, "unknown lambda function: "+cfg.Lambda)
	}
	return &LambdaNode{
		baseNode: baseNode{name: name, nodeType: NodeLambda, outputKeys: cfg.OutputKeys},
		fn:       fn,
		config:   cfg,
	}, nil
}

func (n *LambdaNode) Execute(ctx context.Context, state *types.State) error {
	start := time.Now()
	patch, err := n.runWithConfig(ctx, state)
	success := err == nil

	state.RecordNodeMetadata(types.NodeMetadata{
		NodeName:   n.name,
		Success:    success,
		DurationMS: time.Since(start).Milliseconds(),
		Timestamp:  start,
	})

	if err != nil {
		return types.NewError(types.ErrLambdaFailed, "lambda node "+n.name+" failed").WithCause(err)
	}

	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	if err := n.checkOutputKeys(keys...); err != nil {
		return err
	}
	for k, v := range patch {
		state.Set(k, v)
	}
	return nil
}

func (n *LambdaNode) runWithConfig(ctx context.Context, state *types.State) (types.Record, error) {
	return n.fn(ctx, n.config, state)
}
