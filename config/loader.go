package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sygra-go/sygra/graph"
	"github.com/sygra-go/sygra/model"
)

// Config is the fully resolved configuration driving one batch run: every
// referenced model, the graph topology, and the orchestrator's run
// parameters (spec §6 "Model config", "Graph config").
type Config struct {
	Models map[string]*ModelConfigSection `yaml:"models"`
	Graph  graph.Config                   `yaml:"graph"`
	Batch  BatchConfig                    `yaml:"batch" env:"BATCH"`
}

// BatchConfig mirrors the CLI surface's batch-level flags (spec §4.5,
// §6 "External Interfaces: CLI").
type BatchConfig struct {
	BatchSize          int    `yaml:"batch_size" env:"BATCH_SIZE"`
	CheckpointInterval int    `yaml:"checkpoint_interval" env:"CHECKPOINT_INTERVAL"`
	StartIndex         int    `yaml:"start_index" env:"START_INDEX"`
	NumRecords         int    `yaml:"num_records" env:"NUM_RECORDS"`
	OutputDir          string `yaml:"output_dir" env:"OUTPUT_DIR"`
	RunName            string `yaml:"run_name" env:"RUN_NAME"`
	Resume             bool   `yaml:"resume" env:"RESUME"`
	Debug              bool   `yaml:"debug" env:"DEBUG"`
}

// stringList unmarshals a YAML scalar or sequence as []string, since a
// model's "url"/"auth_token" fields may be one value or a load-balanced
// list (spec §4.2 "load balancing across URLs").
type stringList []string

func (s *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var one string
		if err := value.Decode(&one); err != nil {
			return err
		}
		*s = stringList{one}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := value.Decode(&many); err != nil {
			return err
		}
		*s = stringList(many)
		return nil
	default:
		return fmt.Errorf("expected scalar or sequence for url/auth_token, got %v", value.Kind)
	}
}

// ModelConfigSection is the YAML-facing shape of one model config entry.
// Its URL/AuthToken fields carry unresolved `env:VARNAME` literals until
// Resolve substitutes them, mirroring the teacher's split between a
// file-decoded struct and its runtime-resolved counterpart.
type ModelConfigSection struct {
	Name                  string                       `yaml:"name"`
	ModelType             string                       `yaml:"model_type"`
	URL                   stringList                   `yaml:"url"`
	AuthToken             stringList                   `yaml:"auth_token"`
	Parameters            map[string]any                `yaml:"parameters"`
	RetryAttempts         int                          `yaml:"retry_attempts"`
	DelayMS               int                          `yaml:"delay"`
	LoadBalancing         model.LoadBalancing          `yaml:"load_balancing"`
	StatsInterval         int                          `yaml:"stats_interval"`
	SpecialTokens         []string                     `yaml:"special_tokens"`
	PostProcess           string                       `yaml:"post_process"`
	StructuredOutput      model.StructuredOutputConfig `yaml:"structured_output"`
	CompletionsAPI        bool                         `yaml:"completions_api"`
	HFChatTemplateModelID string                       `yaml:"hf_chat_template_model_id"`
	RequestTimeoutSeconds int                          `yaml:"request_timeout_seconds"`
	HandleServerDown      *bool                        `yaml:"handle_server_down"`
}

// Resolve substitutes `env:VARNAME` literals in URL/AuthToken and produces
// the runtime model.Config.
func (s *ModelConfigSection) Resolve(name string) (*model.Config, error) {
	urls := make([]string, len(s.URL))
	for i, u := range s.URL {
		urls[i] = resolveEnvLiteral(u)
	}
	tokens := make([]string, len(s.AuthToken))
	for i, t := range s.AuthToken {
		tokens[i] = resolveEnvLiteral(t)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("model %q declares no url", name)
	}

	cfg := &model.Config{
		Name:                  name,
		ModelType:             s.ModelType,
		URL:                   urls,
		AuthToken:             tokens,
		Parameters:            s.Parameters,
		RetryAttempts:         s.RetryAttempts,
		DelayMS:               s.DelayMS,
		LoadBalancing:         s.LoadBalancing,
		StatsInterval:         s.StatsInterval,
		SpecialTokens:         s.SpecialTokens,
		PostProcess:           s.PostProcess,
		StructuredOutput:      s.StructuredOutput,
		CompletionsAPI:        s.CompletionsAPI,
		HFChatTemplateModelID: s.HFChatTemplateModelID,
		HandleServerDown:      s.HandleServerDown,
	}
	if s.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(s.RequestTimeoutSeconds) * time.Second
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// resolveEnvLiteral substitutes a leading "env:VARNAME" marker with the
// named environment variable's value, passing any other string through
// unchanged (spec §6 "env:VARNAME literal references ... resolved at load
// time").
func resolveEnvLiteral(v string) string {
	const prefix = "env:"
	if strings.HasPrefix(v, prefix) {
		return os.Getenv(strings.TrimPrefix(v, prefix))
	}
	return v
}

// Loader loads Config via the teacher's builder pattern: defaults, then a
// YAML file, then environment variable overrides.
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a Loader defaulting to the SYGRA env prefix.
func NewLoader() *Loader {
	return &Loader{envPrefix: "SYGRA"}
}

// WithConfigPath sets the combined models+graph+batch YAML file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix overrides the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator adds a post-load validation hook.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load resolves Config: defaults -> YAML file -> environment overrides.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (l *Loader) loadFromEnv(cfg *Config) error {
	if err := setFieldsFromEnv(reflect.ValueOf(&cfg.Batch).Elem(), l.envPrefix+"_BATCH"); err != nil {
		return err
	}
	setModelFieldsFromEnv(cfg.Models, l.envPrefix)
	return nil
}

// setModelFieldsFromEnv overlays per-model connection settings from
// SYGRA_<MODELNAME>_URL / _TOKEN / _CHAT_TEMPLATE, keyed by the model's
// uppercased config name (spec §6 "Environment variables"). Unlike the
// batch overlay's generic reflect-tag walk, these three fields need
// custom handling: URL/AuthToken are stringList-typed (a single env value
// becomes a single-element list) and the model key comes from the config
// map, not a struct tag.
func setModelFieldsFromEnv(models map[string]*ModelConfigSection, envPrefix string) {
	for name, section := range models {
		prefix := envPrefix + "_" + modelEnvKey(name)
		if v := os.Getenv(prefix + "_URL"); v != "" {
			section.URL = stringList{v}
		}
		if v := os.Getenv(prefix + "_TOKEN"); v != "" {
			section.AuthToken = stringList{v}
		}
		if v := os.Getenv(prefix + "_CHAT_TEMPLATE"); v != "" {
			section.HFChatTemplateModelID = v
		}
	}
}

// modelEnvKey uppercases a model name and replaces characters that can't
// appear in an environment variable name with underscores.
func modelEnvKey(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// setFieldsFromEnv recursively overlays struct fields with their matching
// "env" tagged environment variables.
func setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		envTag := t.Field(i).Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}
		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}
		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}
	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(i)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	}
	return nil
}

// ResolvedModels resolves every configured model section into a
// model.Config map, keyed by model name, suitable for model.NewRegistry.
func (c *Config) ResolvedModels() (map[string]*model.Config, error) {
	out := make(map[string]*model.Config, len(c.Models))
	for name, section := range c.Models {
		resolved, err := section.Resolve(name)
		if err != nil {
			return nil, err
		}
		out[name] = resolved
	}
	return out, nil
}
