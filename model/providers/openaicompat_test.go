package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sygra-go/sygra/model"
	"github.com/sygra-go/sygra/types"
)

func TestOpenAICompatBuildAndParse(t *testing.T) {
	cfg := &model.Config{ModelType: "gpt-test"}
	adapter, err := newOpenAICompatAdapter(cfg)
	require.NoError(t, err)

	req, err := adapter.BuildRequest([]types.Message{types.NewUserMessage("hi")}, model.GenerationParams{}, nil)
	require.NoError(t, err)
	assert.Contains(t, string(req.Body), `"role":"user"`)

	resp, err := adapter.ParseResponse([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}]}`), 200)
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text)
	assert.Equal(t, "stop", resp.FinishReason)
}

func TestOpenAICompatErrorEnvelope(t *testing.T) {
	cfg := &model.Config{}
	adapter, _ := newOpenAICompatAdapter(cfg)
	resp, err := adapter.ParseResponse([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`), 401)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "bad key", resp.ErrorText)
}

func TestOpenAICompatPromotesContentFilterToStatus444(t *testing.T) {
	cfg := &model.Config{}
	adapter, _ := newOpenAICompatAdapter(cfg)
	resp, err := adapter.ParseResponse([]byte(`{"choices":[{"message":{"role":"assistant","content":""},"finish_reason":"content_filter"}]}`), 200)
	require.NoError(t, err)
	assert.Equal(t, types.ContentFilteredStatus, resp.StatusCode)
	assert.Equal(t, "content_filter", resp.FinishReason)
	assert.NotEmpty(t, resp.ErrorText)
}

func TestOpenAICompatSchemaWiring(t *testing.T) {
	cfg := &model.Config{}
	adapter, _ := newOpenAICompatAdapter(cfg)
	req, err := adapter.BuildRequest([]types.Message{types.NewUserMessage("hi")}, model.GenerationParams{}, []byte(`{"type":"object"}`))
	require.NoError(t, err)
	assert.Contains(t, string(req.Body), "json_schema")
}
