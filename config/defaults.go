// Package config loads the graph and model configuration that feeds the
// Graph Runtime and Model Client, following the teacher's Loader
// builder pattern: defaults, then YAML file, then environment overrides.
package config

// Batch orchestrator defaults (spec §4.5).
const (
	DefaultBatchSize          = 25
	DefaultCheckpointInterval = 100
)

// DefaultBatchConfig returns the batch orchestrator's default run
// configuration.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		BatchSize:          DefaultBatchSize,
		CheckpointInterval: DefaultCheckpointInterval,
		StartIndex:         0,
		OutputDir:          "output",
		RunName:            "run",
	}
}

// DefaultConfig returns a Config with every section at its documented
// default; callers overlay a YAML file and environment variables on top.
func DefaultConfig() *Config {
	return &Config{
		Models: make(map[string]*ModelConfigSection),
		Batch:  DefaultBatchConfig(),
	}
}
