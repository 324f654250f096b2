// Package graph implements the Graph Runtime and Node Executors (spec
// §4.3, §4.4): a static graph of nodes wired from config, executed
// single-threaded per record.
package graph

import (
	"context"

	"github.com/sygra-go/sygra/types"
)

// NodeType names a node's execution behavior (spec §3 "Node").
type NodeType string

const (
	NodeLLM             NodeType = "llm"
	NodeLambda          NodeType = "lambda"
	NodeWeightedSampler NodeType = "weighted_sampler"
	NodeMultiLLM        NodeType = "multi_llm"
	NodeSubgraph        NodeType = "subgraph"
	NodeStart           NodeType = "START"
	NodeEnd             NodeType = "END"
)

// Node is one step of the graph: consume state, produce a state delta
// (spec §4.3). Implementations mutate the passed State directly rather
// than returning a delta value, since State is owned by a single worker
// for the duration of one record's execution (spec §5).
type Node interface {
	Name() string
	Type() NodeType
	DeclaredOutputKeys() []string
	Execute(ctx context.Context, state *types.State) error
}

// baseNode carries the fields common to every node implementation.
type baseNode struct {
	name       string
	nodeType   NodeType
	outputKeys []string
}

func (b *baseNode) Name() string                { return b.name }
func (b *baseNode) Type() NodeType               { return b.nodeType }
func (b *baseNode) DeclaredOutputKeys() []string { return b.outputKeys }

// checkOutputKeys verifies that the keys a node is about to write are all
// within its declared output keys (spec §3 invariant: "Any key written by a
// node must be in that node's declared output keys").
func (b *baseNode) checkOutputKeys(keys ...string) error {
	declared := make(map[string]bool, len(b.outputKeys))
	for _, k := range b.outputKeys {
		declared[k] = true
	}
	for _, k := range keys {
		if !declared[k] {
			return types.NewError(types.ErrConfigInvalid,
				"node "+b.name+" wrote undeclared output key "+k)
		}
	}
	return nil
}
