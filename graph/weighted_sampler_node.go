package graph

import (
	"context"
	"hash/fnv"
	"math/rand"
	"sort"

	"github.com/sygra-go/sygra/types"
)

// WeightedSamplerNode samples a value per declared attribute from a
// weighted discrete distribution, deterministic given the record's id as
// seed material (spec §4.3 "WeightedSampler node"; spec §8 invariant 7).
type WeightedSamplerNode struct {
	baseNode
	attributes map[string]WeightedAttribute
}

// NewWeightedSamplerNode builds a WeightedSamplerNode over cfg.Attributes.
func NewWeightedSamplerNode(name string, cfg NodeConfig) (*WeightedSamplerNode, error) {
	if len(cfg.Attributes) == 0 {
		return nil, types.NewError(types.ErrConfigInvalid, "weighted_sampler node "+name+" declares no attributes")
	}
	return &WeightedSamplerNode{
		baseNode:   baseNode{name: name, nodeType: NodeWeightedSampler, outputKeys: cfg.OutputKeys},
		attributes: cfg.Attributes,
	}, nil
}

func (n *WeightedSamplerNode) Execute(ctx context.Context, state *types.State) error {
	rng := rand.New(rand.NewSource(seedFor(state.Record.ID())))

	// Sort attribute names for a stable draw order, so the same id always
	// consumes the RNG stream in the same sequence regardless of Go map
	// iteration order.
	names := make([]string, 0, len(n.attributes))
	for name := range n.attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	if err := n.checkOutputKeys(names...); err != nil {
		return err
	}

	for _, name := range names {
		value := sampleWeighted(rng, n.attributes[name])
		state.Set(name, value)
	}
	return nil
}

// seedFor derives a deterministic RNG seed from a record id so re-running
// the same record produces the same samples, while distinct records in the
// same batch get independent streams.
func seedFor(id string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return int64(h.Sum64())
}

// sampleWeighted draws one key from attr's weighted distribution, sorting
// candidate keys for a stable cumulative order.
func sampleWeighted(rng *rand.Rand, attr WeightedAttribute) string {
	keys := make([]string, 0, len(attr.Values))
	var total float64
	for k, w := range attr.Values {
		keys = append(keys, k)
		total += w
	}
	sort.Strings(keys)

	if total <= 0 {
		return keys[0]
	}
	r := rng.Float64() * total
	var cumulative float64
	for _, k := range keys {
		cumulative += attr.Values[k]
		if r < cumulative {
			return k
		}
	}
	return keys[len(keys)-1]
}
