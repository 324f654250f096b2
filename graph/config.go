package graph

// PromptTemplate is one role-tagged message template in an LLM node's
// prompt list (spec §6 "prompt (list of role-tagged templates with
// placeholders resolved against State)").
type PromptTemplate struct {
	Role     string `yaml:"role"`
	Template string `yaml:"template"`
}

// WeightedAttribute declares one attribute a WeightedSampler node samples:
// a discrete distribution of value -> weight.
type WeightedAttribute struct {
	Values map[string]float64 `yaml:"values"`
}

// NodeConfig is the resolved, per-node-type union of configuration fields a
// graph config's "nodes" map entry may carry (spec §6).
type NodeConfig struct {
	Name     string
	NodeType NodeType `yaml:"node_type"`

	// LLM / MultiLLM
	Model            string            `yaml:"model"`
	Models           []string          `yaml:"models"`
	Prompt           []PromptTemplate  `yaml:"prompt"`
	OutputKeys       []string          `yaml:"output_keys"`
	PreProcess       string            `yaml:"pre_process"`
	PostProcess      string            `yaml:"post_process"`
	StructuredOutput any               `yaml:"structured_output"`

	// Lambda
	Lambda string `yaml:"lambda"`

	// Subgraph: a fully nested graph config, run as one opaque node.
	Subgraph *Config `yaml:"subgraph"`

	// WeightedSampler
	Attributes map[string]WeightedAttribute `yaml:"attributes"`

	// Cycle safety (spec §4.4 "max_conversation_turns cutoff")
	MaxConversationTurns int `yaml:"max_conversation_turns"`

	Raw map[string]any `yaml:"-"`
}

// EdgeConfig is one edge declaration: either an unconditional (from, to)
// pair or a conditional edge naming a predicate function (spec §6).
type EdgeConfig struct {
	From      string `yaml:"from"`
	To        string `yaml:"to"`
	Condition string `yaml:"condition"`
}

// Config is a resolved graph configuration: nodes, edges, and read-only
// graph properties seeded into every record (spec §6 "Graph config").
type Config struct {
	Nodes           map[string]NodeConfig `yaml:"nodes"`
	Edges           []EdgeConfig          `yaml:"edges"`
	GraphProperties map[string]any        `yaml:"graph_properties"`

	// StepLimit aborts a record with a fatal error after this many node
	// executions (spec §4.4 "a coarse step limit (configurable, default
	// 200)"). Zero means "unset"; ApplyDefaults fills DefaultStepLimit.
	StepLimit int `yaml:"step_limit"`
}

// DefaultStepLimit is the runtime's cycle-safety net.
const DefaultStepLimit = 200

// ApplyDefaults fills unset fields with spec defaults.
func (c *Config) ApplyDefaults() {
	if c.StepLimit == 0 {
		c.StepLimit = DefaultStepLimit
	}
}
