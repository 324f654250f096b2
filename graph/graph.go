package graph

import (
	"fmt"

	"github.com/sygra-go/sygra/model"
	"github.com/sygra-go/sygra/types"
)

// Graph is the compiled, validated graph of Nodes plus the START/END
// sentinels (spec §4.4 "Graph construction").
type Graph struct {
	Nodes           map[string]Node
	Edges           map[string][]Edge
	StepLimit       int
	GraphProperties map[string]any
}

// nodeMaxTurnsKey is the reserved GraphProperties entry holding each node's
// configured max_conversation_turns cutoff, keyed by node name, so a
// user-authored edge predicate can read it via state.MaxConversationTurns
// and compare it against its own cycle counter (spec §4.4
// "max_conversation_turns cutoff").
const nodeMaxTurnsKey = "__node_max_conversation_turns"

// ModelResolver resolves a model name to a ModelCaller, satisfied by
// *model.Registry in production and by a fake in tests.
type ModelResolver interface {
	Get(name string) (*model.Client, error)
}

// Build constructs and validates a Graph from config against the given
// function registry and model resolver (spec §4.4 "Graph construction").
// Validation failures are configuration errors (spec §7), fatal at batch
// startup.
func Build(cfg Config, fnRegistry *Registry, models ModelResolver) (*Graph, error) {
	cfg.ApplyDefaults()

	g := &Graph{Nodes: make(map[string]Node, len(cfg.Nodes)), Edges: make(map[string][]Edge), StepLimit: cfg.StepLimit}

	nodeMaxTurns := make(map[string]int)
	for name, nodeCfg := range cfg.Nodes {
		nodeCfg.Name = name
		node, err := buildNode(name, nodeCfg, fnRegistry, models)
		if err != nil {
			return nil, err
		}
		g.Nodes[name] = node
		if nodeCfg.MaxConversationTurns > 0 {
			nodeMaxTurns[name] = nodeCfg.MaxConversationTurns
		}
	}

	g.GraphProperties = make(map[string]any, len(cfg.GraphProperties)+1)
	for k, v := range cfg.GraphProperties {
		g.GraphProperties[k] = v
	}
	g.GraphProperties[nodeMaxTurnsKey] = nodeMaxTurns

	for _, e := range cfg.Edges {
		if e.From != "START" {
			if _, ok := g.Nodes[e.From]; !ok {
				return nil, types.NewError(types.ErrConfigInvalid, "edge references unknown from-node: "+e.From)
			}
		}
		if e.To != "END" {
			if _, ok := g.Nodes[e.To]; !ok {
				return nil, types.NewError(types.ErrConfigInvalid, "edge references unknown to-node: "+e.To)
			}
		}

		edge := Edge{From: e.From, To: e.To}
		if e.Condition != "" {
			pred, ok := fnRegistry.predicate(e.Condition)
			if !ok {
				return nil, types.NewError(types.ErrConfigInvalid, "unknown edge condition: "+e.Condition)
			}
			edge.Predicate = pred
		}
		g.Edges[e.From] = append(g.Edges[e.From], edge)
	}

	if err := detectUnconditionalCycle(g); err != nil {
		return nil, err
	}

	return g, nil
}

func buildNode(name string, cfg NodeConfig, fnRegistry *Registry, models ModelResolver) (Node, error) {
	switch cfg.NodeType {
	case NodeLLM:
		client, err := models.Get(cfg.Model)
		if err != nil {
			return nil, err
		}
		return NewLLMNode(name, cfg, client, fnRegistry)
	case NodeMultiLLM:
		clients := make([]ModelCaller, len(cfg.Models))
		for i, m := range cfg.Models {
			client, err := models.Get(m)
			if err != nil {
				return nil, err
			}
			clients[i] = client
		}
		return NewMultiLLMNode(name, cfg, clients)
	case NodeLambda:
		return NewLambdaNode(name, cfg, fnRegistry)
	case NodeSubgraph:
		if cfg.Subgraph == nil {
			return nil, types.NewError(types.ErrConfigInvalid, "subgraph node "+name+" declares no nested subgraph config")
		}
		inner, err := Build(*cfg.Subgraph, fnRegistry, models)
		if err != nil {
			return nil, err
		}
		return NewSubgraphNode(name, cfg, inner), nil
	case NodeWeightedSampler:
		return NewWeightedSamplerNode(name, cfg)
	default:
		return nil, types.NewError(types.ErrConfigInvalid, fmt.Sprintf("unknown node type %q for node %q", cfg.NodeType, name))
	}
}

// detectUnconditionalCycle walks the subgraph of unconditional edges only;
// conditional back-edges are permitted (self-critique/looping patterns) and
// are bounded instead by the runtime's step limit (spec §4.4 "no cycles
// unless explicitly marked", "cycles permitted only via conditional-edge
// back-references").
func detectUnconditionalCycle(g *Graph) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.Nodes))

	var visit func(name string) error
	visit = func(name string) error {
		color[name] = gray
		for _, e := range g.Edges[name] {
			if e.Conditional() {
				continue
			}
			switch color[e.To] {
			case gray:
				return types.NewError(types.ErrConfigInvalid, "unconditional cycle detected through node: "+e.To)
			case white:
				if err := visit(e.To); err != nil {
					return err
				}
			}
		}
		color[name] = black
		return nil
	}

	for name := range g.Nodes {
		if color[name] == white {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}
