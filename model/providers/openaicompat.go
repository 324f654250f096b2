// Package providers implements concrete Model Adapters (spec §4.1): one
// vendor's wire protocol each. Adapters are registered by model_type name
// via model.RegisterAdapter so the Model Client factory never needs a
// per-vendor switch statement (teacher: llm/factory/factory.go's
// NewProviderFromConfig mapped names to constructors directly; here the
// registration is inverted to each provider file's own init, matching the
// plugin-style registries used elsewhere in the package).
package providers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sygra-go/sygra/model"
	"github.com/sygra-go/sygra/types"
)

func init() {
	model.RegisterAdapter("openai", newOpenAICompatAdapter)
	model.RegisterAdapter("openaicompat", newOpenAICompatAdapter)
	model.RegisterAdapter("vllm", newOpenAICompatAdapter)
}

// openAICompatAdapter speaks the OpenAI chat-completions wire protocol,
// which vLLM, most self-hosted gateways, and OpenAI itself implement
// (teacher: llm/providers/common.go's OpenAICompat* wire types and
// MapHTTPError).
type openAICompatAdapter struct {
	cfg *model.Config
}

func newOpenAICompatAdapter(cfg *model.Config) (model.Adapter, error) {
	return &openAICompatAdapter{cfg: cfg}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
	Extra          map[string]any `json:"-"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type apiErrorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (a *openAICompatAdapter) BuildRequest(messages []types.Message, params model.GenerationParams, schema []byte) (model.WireRequest, error) {
	req := chatRequest{Model: a.cfg.ModelType, Messages: toOpenAIMessages(messages)}
	if len(schema) > 0 {
		var schemaValue any
		if err := json.Unmarshal(schema, &schemaValue); err != nil {
			return model.WireRequest{}, fmt.Errorf("decode schema for response_format: %w", err)
		}
		req.ResponseFormat = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "response",
				"schema": schemaValue,
				"strict": true,
			},
		}
	}

	body := map[string]any{
		"model":    req.Model,
		"messages": req.Messages,
	}
	if req.ResponseFormat != nil {
		body["response_format"] = req.ResponseFormat
	}
	for k, v := range a.cfg.Parameters {
		body[k] = v
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return model.WireRequest{}, err
	}
	return model.WireRequest{Method: "POST", Path: "/v1/chat/completions", Body: payload}, nil
}

func (a *openAICompatAdapter) ParseResponse(raw []byte, status int) (*types.ModelResponse, error) {
	if status != 200 {
		return &types.ModelResponse{StatusCode: status, ErrorText: readErrorMessage(raw)}, nil
	}
	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode chat completion response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion response has no choices")
	}
	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return &types.ModelResponse{
			StatusCode:   types.ContentFilteredStatus,
			Text:         choice.Message.Content,
			FinishReason: choice.FinishReason,
			ErrorText:    "vendor blocked response on content-filter grounds",
		}, nil
	}
	return &types.ModelResponse{
		StatusCode:   200,
		Text:         choice.Message.Content,
		FinishReason: choice.FinishReason,
	}, nil
}

func (a *openAICompatAdapter) NativeStructuredOutputSupported() bool { return true }

func (a *openAICompatAdapter) Name() string { return "openaicompat" }

func toOpenAIMessages(messages []types.Message) []chatMessage {
	out := make([]chatMessage, len(messages))
	for i, m := range messages {
		out[i] = chatMessage{Role: string(m.Role), Content: m.Text()}
	}
	return out
}

// readErrorMessage extracts a human-readable error from a JSON {error:
// {message,type,code}} envelope, falling back to the raw body (teacher:
// llm/providers/common.go's ReadErrorMessage).
func readErrorMessage(body []byte) string {
	var env apiErrorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return strings.TrimSpace(string(body))
}
