package model

import (
	"context"
	"encoding/json"

	"github.com/sygra-go/sygra/types"
)

// fakeAdapter is a minimal Adapter for tests: it echoes the last message's
// text as the response, or returns whatever scripted response the fake
// transport decides via status code passed through ParseResponse.
type fakeAdapter struct {
	native bool
}

func (a *fakeAdapter) BuildRequest(messages []types.Message, params GenerationParams, schema []byte) (WireRequest, error) {
	body, _ := json.Marshal(map[string]any{"messages": messages, "schema": string(schema)})
	return WireRequest{Method: "POST", Path: "/v1/generate", Body: body}, nil
}

func (a *fakeAdapter) ParseResponse(raw []byte, status int) (*types.ModelResponse, error) {
	if status != 200 {
		return &types.ModelResponse{StatusCode: status, ErrorText: string(raw)}, nil
	}
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return &types.ModelResponse{StatusCode: 200, Text: payload.Text}, nil
}

func (a *fakeAdapter) NativeStructuredOutputSupported() bool { return a.native }
func (a *fakeAdapter) Name() string                          { return "fake" }

// scriptedTransport returns a queued sequence of (status, body) pairs per
// call, looping the last entry once exhausted.
type scriptedTransport struct {
	responses []scriptedResponse
	calls     int
}

type scriptedResponse struct {
	status int
	body   string
}

func (t *scriptedTransport) Do(ctx context.Context, params types.ModelParams, req WireRequest) (int, []byte, error) {
	idx := t.calls
	if idx >= len(t.responses) {
		idx = len(t.responses) - 1
	}
	t.calls++
	r := t.responses[idx]
	return r.status, []byte(r.body), nil
}
