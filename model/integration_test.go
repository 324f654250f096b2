package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sygra-go/sygra/model"
	"github.com/sygra-go/sygra/testutil"
	"github.com/sygra-go/sygra/testutil/fixtures"
	"github.com/sygra-go/sygra/testutil/mocks"
	"github.com/sygra-go/sygra/types"
)

func TestClientCallsThroughMockAdapterAndTransport(t *testing.T) {
	cfg := fixtures.SingleURLModel("echo", "http://echo.invalid")
	cfg.RetryAttempts = 2
	cfg.DelayMS = 1

	adapter := mocks.NewAdapter("echo")
	transport := mocks.NewTransport().WithBody([]byte("pong"))

	client, err := model.NewClient(cfg, adapter, transport, 1)
	require.NoError(t, err)

	resp, err := client.Call(testutil.Context(t), []types.Message{types.NewUserMessage("ping")}, model.GenerationParams{})
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, "pong", resp.Text)
	assert.Equal(t, 1, transport.CallCount())
	assert.Len(t, adapter.Calls(), 1)
}

func TestClientRetriesExhaustedReturnsLastFailureStatus(t *testing.T) {
	cfg := fixtures.SingleURLModel("down", "http://down.invalid")
	cfg.RetryAttempts = 3
	cfg.DelayMS = 1

	adapter := mocks.NewAdapter("down")
	transport := mocks.NewTransport().WithFailAfter(1)

	client, err := model.NewClient(cfg, adapter, transport, 1)
	require.NoError(t, err)

	resp, err := client.Call(testutil.Context(t), []types.Message{types.NewUserMessage("ping")}, model.GenerationParams{})
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)
	assert.Equal(t, cfg.RetryAttempts, transport.CallCount())
}
