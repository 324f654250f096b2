package graph

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/sygra-go/sygra/types"
)

// TestProperty_ConditionalCycleTerminatesExactlyAtTurnLimit generalizes the
// step-limit/conditional-cycle boundary scenario (spec §8 boundary scenario
// 6): a self-loop that stops after N turns completes successfully whenever
// N is within the graph's step limit, and fails with StepLimitExceeded
// whenever it isn't.
func TestProperty_ConditionalCycleTerminatesExactlyAtTurnLimit(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 60
	properties := gopter.NewProperties(parameters)

	properties.Property("self-loop completes iff turn count fits the step limit", prop.ForAll(
		func(turns, stepLimit int) bool {
			registry := NewRegistry()
			registry.RegisterPredicate("stop_after_n", func(state *types.State) string {
				if state.IncrCycleCounter("turn") < turns {
					return "a"
				}
				return "END"
			})

			cfg := Config{
				StepLimit: stepLimit,
				Nodes: map[string]NodeConfig{
					"a": {NodeType: NodeWeightedSampler, Attributes: map[string]WeightedAttribute{
						"x": {Values: map[string]float64{"v": 1}},
					}, OutputKeys: []string{"x"}},
				},
				Edges: []EdgeConfig{
					{From: "START", To: "a"},
					{From: "a", To: "a", Condition: "stop_after_n"},
				},
			}
			g, err := Build(cfg, registry, &fakeModelResolver{})
			if err != nil {
				t.Logf("Build failed: %v", err)
				return false
			}

			_, runErr := Run(context.Background(), g, types.Record{"id": "rec-1"})

			if turns <= stepLimit {
				return runErr == nil
			}
			return runErr != nil && types.GetErrorCode(runErr) == types.ErrStepLimitExceeded
		},
		gen.IntRange(1, 40),
		gen.IntRange(1, 40),
	))

	properties.TestingRun(t)
}
