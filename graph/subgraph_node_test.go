package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sygra-go/sygra/types"
)

func TestSubgraphNodeRunsInnerGraphAndMergesResult(t *testing.T) {
	inner := &Graph{
		Nodes: map[string]Node{},
		Edges: map[string][]Edge{
			"START": {{From: "START", To: "leaf"}},
			"leaf":  {{From: "leaf", To: "END"}},
		},
		StepLimit: DefaultStepLimit,
	}
	leaf, err := NewWeightedSamplerNode("leaf", NodeConfig{
		Attributes: map[string]WeightedAttribute{"label": {Values: map[string]float64{"x": 1}}},
		OutputKeys: []string{"label"},
	})
	require.NoError(t, err)
	inner.Nodes["leaf"] = leaf

	outer := NewSubgraphNode("wrapper", NodeConfig{OutputKeys: []string{"label"}}, inner)

	state := types.NewState(types.Record{"id": "1"}, nil)
	require.NoError(t, outer.Execute(context.Background(), state))
	assert.Equal(t, "x", state.Record["label"])
}

func TestBuildWiresNestedSubgraphConfig(t *testing.T) {
	cfg := Config{
		Nodes: map[string]NodeConfig{
			"wrapper": {
				NodeType:   NodeSubgraph,
				OutputKeys: []string{"label"},
				Subgraph: &Config{
					Nodes: map[string]NodeConfig{
						"leaf": {
							NodeType:   NodeWeightedSampler,
							Attributes: map[string]WeightedAttribute{"label": {Values: map[string]float64{"x": 1}}},
							OutputKeys: []string{"label"},
						},
					},
					Edges: []EdgeConfig{
						{From: "START", To: "leaf"},
						{From: "leaf", To: "END"},
					},
				},
			},
		},
		Edges: []EdgeConfig{
			{From: "START", To: "wrapper"},
			{From: "wrapper", To: "END"},
		},
	}

	g, err := Build(cfg, NewRegistry(), &fakeModelResolver{})
	require.NoError(t, err)

	out, err := Run(context.Background(), g, types.Record{"id": "1"})
	require.NoError(t, err)
	assert.Equal(t, "x", out["label"])
}
