package graph

import (
	"context"
	"reflect"

	"github.com/sygra-go/sygra/types"
)

// SubgraphNode runs a nested Graph as a single node, treated as an opaque
// Lambda-equivalent (spec §4.3 "Agent/Subgraph nodes: Treated as opaque
// Lambda-equivalents here").
type SubgraphNode struct {
	baseNode
	inner *Graph
}

// NewSubgraphNode wraps inner as a node named name.
func NewSubgraphNode(name string, cfg NodeConfig, inner *Graph) *SubgraphNode {
	return &SubgraphNode{
		baseNode: baseNode{name: name, nodeType: NodeSubgraph, outputKeys: cfg.OutputKeys},
		inner:    inner,
	}
}

func (n *SubgraphNode) Execute(ctx context.Context, state *types.State) error {
	result, err := Run(ctx, n.inner, state.Record)
	if err != nil {
		return types.NewError(types.ErrRecordFatal, "subgraph node "+n.name+" failed").WithCause(err)
	}

	// Only keys the inner run added or changed count as written; keys it
	// passed through unchanged (such as "id") are not output keys.
	patch := make(types.Record, len(result))
	for k, v := range result {
		if old, ok := state.Record[k]; ok && reflect.DeepEqual(old, v) {
			continue
		}
		patch[k] = v
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
