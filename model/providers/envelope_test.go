package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sygra-go/sygra/model"
	"github.com/sygra-go/sygra/types"
)

func TestVendorEnvelopeBuildRequest(t *testing.T) {
	cfg := &model.Config{}
	adapter, err := newVendorEnvelopeAdapter(cfg)
	require.NoError(t, err)

	req, err := adapter.BuildRequest([]types.Message{types.NewUserMessage("hi")}, model.GenerationParams{}, nil)
	require.NoError(t, err)
	assert.Contains(t, string(req.Body), "USER: hi")
}

func TestVendorEnvelopeGrammarWiring(t *testing.T) {
	cfg := &model.Config{}
	adapter, _ := newVendorEnvelopeAdapter(cfg)
	req, err := adapter.BuildRequest([]types.Message{types.NewUserMessage("hi")}, model.GenerationParams{}, []byte(`{"type":"object"}`))
	require.NoError(t, err)
	assert.Contains(t, string(req.Body), "grammar")
}

func TestVendorEnvelopeServerDownMarker(t *testing.T) {
	cfg := &model.Config{}
	adapter, _ := newVendorEnvelopeAdapter(cfg)
	resp, err := adapter.ParseResponse([]byte("ELEMAI_JOB_DOWN: backend unavailable"), 200)
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)
}

func TestVendorEnvelopeParsesGeneratedText(t *testing.T) {
	cfg := &model.Config{}
	adapter, _ := newVendorEnvelopeAdapter(cfg)
	resp, err := adapter.ParseResponse([]byte(`{"generated_text":"answer"}`), 200)
	require.NoError(t, err)
	assert.Equal(t, "answer", resp.Text)
}
