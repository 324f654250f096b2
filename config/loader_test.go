package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
models:
  gpt:
    model_type: openaicompat
    url: http://localhost:8000
    auth_token: env:GPT_TOKEN
    retry_attempts: 4
  pool:
    model_type: openaicompat
    url:
      - http://a.local
      - http://b.local
    load_balancing: round_robin
batch:
  batch_size: 10
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoaderResolvesEnvLiteralInAuthToken(t *testing.T) {
	t.Setenv("GPT_TOKEN", "secret-value")
	path := writeTempConfig(t, sampleConfig)

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	models, err := cfg.ResolvedModels()
	require.NoError(t, err)
	require.Contains(t, models, "gpt")
	assert.Equal(t, []string{"secret-value"}, models["gpt"].AuthToken)
	assert.Equal(t, 4, models["gpt"].RetryAttempts)
}

func TestLoaderAcceptsScalarOrListURL(t *testing.T) {
	path := writeTempConfig(t, sampleConfig)
	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	models, err := cfg.ResolvedModels()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:8000"}, models["gpt"].URL)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, models["pool"].URL)
}

func TestLoaderEnvOverridesBatchSize(t *testing.T) {
	path := writeTempConfig(t, sampleConfig)
	t.Setenv("SYGRA_BATCH_BATCH_SIZE", "99")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.Batch.BatchSize)
}

func TestLoaderMissingFileIsError(t *testing.T) {
	_, err := NewLoader().WithConfigPath("/nonexistent/path.yaml").Load()
	require.Error(t, err)
}

func TestLoaderEnvOverridesPerModelURLAndToken(t *testing.T) {
	path := writeTempConfig(t, sampleConfig)
	t.Setenv("SYGRA_GPT_URL", "http://overridden.local")
	t.Setenv("SYGRA_GPT_TOKEN", "overridden-token")
	t.Setenv("SYGRA_GPT_CHAT_TEMPLATE", "org/model-id")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	models, err := cfg.ResolvedModels()
	require.NoError(t, err)
	require.Contains(t, models, "gpt")
	assert.Equal(t, []string{"http://overridden.local"}, models["gpt"].URL)
	assert.Equal(t, []string{"overridden-token"}, models["gpt"].AuthToken)
	assert.Equal(t, "org/model-id", models["gpt"].HFChatTemplateModelID)

	// An unrelated model is left untouched.
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, models["pool"].URL)
}
