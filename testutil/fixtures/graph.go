package fixtures

import "github.com/sygra-go/sygra/graph"

// LinearLLMGraph returns a one-node START->generate->END graph config
// calling modelName, writing its response into "output".
func LinearLLMGraph(modelName string) graph.Config {
	cfg := graph.Config{
		Nodes: map[string]graph.NodeConfig{
			"generate": {
				Name:       "generate",
				NodeType:   graph.NodeLLM,
				Model:      modelName,
				OutputKeys: []string{"output"},
				Prompt: []graph.PromptTemplate{
					{Role: "user", Template: "{{input}}"},
				},
			},
		},
		Edges: []graph.EdgeConfig{
			{From: "START", To: "generate"},
			{From: "generate", To: "END"},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// WeightedSamplerGraph returns a one-node graph sampling "category" from
// the given discrete distribution.
func WeightedSamplerGraph(values map[string]float64) graph.Config {
	cfg := graph.Config{
		Nodes: map[string]graph.NodeConfig{
			"sample": {
				Name:       "sample",
				NodeType:   graph.NodeWeightedSampler,
				OutputKeys: []string{"category"},
				Attributes: map[string]graph.WeightedAttribute{
					"category": {Values: values},
				},
			},
		},
		Edges: []graph.EdgeConfig{
			{From: "START", To: "sample"},
			{From: "sample", To: "END"},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}
