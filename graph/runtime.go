package graph

import (
	"context"

	"github.com/sygra-go/sygra/types"
)

const (
	start = "START"
	end   = "END"
)

// Run executes one record through g from START to END, returning the
// resulting record or a fatal error (spec §4.4 "Execution loop").
//
// Each step executes the current node, then resolves the next node from the
// node's outgoing edges: conditional edges are evaluated in declaration
// order and the first one whose predicate returns a non-empty node name
// wins, falling back to the single unconditional edge when none match.
// Reaching END, or a node with no outgoing edges, ends the run.
func Run(ctx context.Context, g *Graph, record types.Record) (types.Record, error) {
	state := types.NewState(record, g.GraphProperties)

	current := start
	for {
		next, terminal, err := step(ctx, g, state, current)
		if err != nil {
			return nil, err
		}
		if terminal {
			return state.Record, nil
		}
		current = next
	}
}

// step executes the node named current (a no-op at START) and returns the
// next node name, or terminal=true if the run has reached END.
func step(ctx context.Context, g *Graph, state *types.State, current string) (next string, terminal bool, err error) {
	if current != start {
		node, ok := g.Nodes[current]
		if !ok {
			return "", false, types.NewError(types.ErrUnresolvedRouting, "graph routed to unknown node: "+current)
		}

		state.StepsTaken++
		if state.StepsTaken > g.StepLimit {
			return "", false, types.NewError(types.ErrStepLimitExceeded, "graph exceeded step limit").WithRetryable(false)
		}

		if err := node.Execute(ctx, state); err != nil {
			return "", false, err
		}
	}

	edges := g.Edges[current]
	if len(edges) == 0 {
		if current == start {
			return "", false, types.NewError(types.ErrConfigInvalid, "graph has no edges out of START")
		}
		return "", true, nil
	}

	target := resolveNext(edges, state)
	if target == "" {
		return "", false, types.NewError(types.ErrUnresolvedRouting, "no edge out of node "+current+" resolved to a target")
	}
	if target == end {
		return "", true, nil
	}
	return target, false, nil
}

// resolveNext picks the first matching edge: conditional edges are tried in
// declaration order via their predicate, the remaining unconditional edge
// (at most one is expected per source node) is the fallback.
func resolveNext(edges []Edge, state *types.State) string {
	var fallback string
	for _, e := range edges {
		if !e.Conditional() {
			fallback = e.To
			continue
		}
		if target := e.Predicate(state); target != "" {
			return target
		}
	}
	return fallback
}
