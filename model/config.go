// Package model implements the Model Client layer: retries, load balancing
// across URLs, structured-output coercion, stats, and the server-down
// circuit breaker (spec §4.2), wrapping one or more vendor Adapters (§4.1).
package model

import "time"

// LoadBalancing names the URL-selection strategy for a multi-URL model.
type LoadBalancing string

const (
	// LeastRequests picks the URL with the fewest in-flight requests,
	// breaking ties uniformly at random. Default.
	LeastRequests LoadBalancing = "least_requests"
	// RoundRobin picks url[call_count % len(url)].
	RoundRobin LoadBalancing = "round_robin"
)

// StructuredOutputConfig configures schema-constrained generation for a
// model (spec §4.2 "Structured output").
type StructuredOutputConfig struct {
	Enabled bool `yaml:"enabled"`
	// Schema is the raw decoded YAML value for the JSON Schema; resolved to
	// a *structured.JSONSchema by structured.FromConfigValue in NewClient.
	Schema any `yaml:"schema"`
}

// Config is one model's resolved configuration (spec §6 "Model config").
type Config struct {
	Name      string   `yaml:"name"`
	ModelType string   `yaml:"model_type"`
	URL       []string `yaml:"-"`
	AuthToken []string `yaml:"-"`

	Parameters map[string]any `yaml:"parameters"`

	RetryAttempts int           `yaml:"retry_attempts"`
	Delay         time.Duration `yaml:"-"` // DelayMS converted
	DelayMS       int           `yaml:"delay"`

	LoadBalancing LoadBalancing `yaml:"load_balancing"`

	StatsInterval int `yaml:"stats_interval"`

	SpecialTokens []string `yaml:"special_tokens"`
	PostProcess   string   `yaml:"post_process"`

	StructuredOutput StructuredOutputConfig `yaml:"structured_output"`

	// CompletionsAPI is carried from config; NewAdapter selects the adapter
	// by ModelType only and no adapter reads this field.
	CompletionsAPI bool `yaml:"completions_api"`

	// HFChatTemplateModelID names a HuggingFace tokenizer/model id. It is
	// carried from config but no adapter reads it; prompts are not rendered
	// with a chat template.
	HFChatTemplateModelID string `yaml:"hf_chat_template_model_id"`

	// RequestTimeout bounds one HTTP call; default 60s (spec §5 "Timeouts").
	RequestTimeout time.Duration `yaml:"-"`

	// HandleServerDown opts the model out of the sliding-window circuit
	// breaker when explicitly set to false (spec §4.2 "opt-out via a
	// process-wide flag" — modeled here per-model). Left unset (nil), the
	// breaker stays enabled; there is no process-wide default.
	HandleServerDown *bool `yaml:"handle_server_down"`
}

// Default field values (spec §4.2, §5).
const (
	DefaultRetryAttempts = 8
	DefaultDelayMS       = 100
	DefaultStatsInterval = 10000
	DefaultRequestTimeout = 60 * time.Second
)

// ApplyDefaults fills unset fields with the spec's defaults.
func (c *Config) ApplyDefaults() {
	if c.RetryAttempts == 0 {
		c.RetryAttempts = DefaultRetryAttempts
	}
	if c.DelayMS == 0 {
		c.DelayMS = DefaultDelayMS
	}
	c.Delay = time.Duration(c.DelayMS) * time.Millisecond
	if c.LoadBalancing == "" {
		c.LoadBalancing = LeastRequests
	}
	if c.StatsInterval == 0 {
		c.StatsInterval = DefaultStatsInterval
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
}

// ServerDownEnabled reports whether the sliding-window circuit breaker is
// active for this model.
func (c *Config) ServerDownEnabled() bool {
	return c.HandleServerDown == nil || *c.HandleServerDown
}
