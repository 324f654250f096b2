package providers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sygra-go/sygra/model"
	"github.com/sygra-go/sygra/types"
)

func init() {
	model.RegisterAdapter("tgi", newVendorEnvelopeAdapter)
	model.RegisterAdapter("triton", newVendorEnvelopeAdapter)
}

// vendorEnvelopeAdapter speaks the completions-with-prompt-template style
// used by TGI/Triton-class servers: a flattened prompt string under
// "inputs", with a "grammar" parameter for native structured output
// (teacher-adjacent: ported from custom_models.py's CustomTGI, the
// concrete vendor adapter the source uses as its generate/grammar
// example). Prompt flattening here is a simple role-tagged join;
// cfg.HFChatTemplateModelID is not consulted.
type vendorEnvelopeAdapter struct {
	cfg *model.Config
}

func newVendorEnvelopeAdapter(cfg *model.Config) (model.Adapter, error) {
	return &vendorEnvelopeAdapter{cfg: cfg}, nil
}

type tgiRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type tgiResponse struct {
	GeneratedText string `json:"generated_text"`
}

func (a *vendorEnvelopeAdapter) BuildRequest(messages []types.Message, params model.GenerationParams, schema []byte) (model.WireRequest, error) {
	prompt := renderPromptTemplate(messages)

	parameters := map[string]any{}
	for k, v := range a.cfg.Parameters {
		parameters[k] = v
	}
	if len(schema) > 0 {
		var schemaValue any
		if err := json.Unmarshal(schema, &schemaValue); err != nil {
			return model.WireRequest{}, fmt.Errorf("decode schema for grammar: %w", err)
		}
		parameters["grammar"] = map[string]any{"type": "json", "value": schemaValue}
	}

	payload, err := json.Marshal(tgiRequest{Inputs: prompt, Parameters: parameters})
	if err != nil {
		return model.WireRequest{}, err
	}
	return model.WireRequest{Method: "POST", Path: "/generate", Body: payload}, nil
}

func (a *vendorEnvelopeAdapter) ParseResponse(raw []byte, status int) (*types.ModelResponse, error) {
	text := string(raw)
	lower := strings.ToLower(text)
	// TGI/elemAI-class servers sometimes signal backend outages via a text
	// marker rather than a transport-level error; force a server-down
	// status so the circuit breaker and retry loop see it correctly
	// (ported from custom_models.py's _generate_response marker checks).
	if strings.Contains(lower, "elemai_job_down") || strings.Contains(lower, "connection_error") {
		return &types.ModelResponse{StatusCode: 503, ErrorText: text}, nil
	}
	if status != 200 {
		return &types.ModelResponse{StatusCode: status, ErrorText: text}, nil
	}

	var resp tgiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode tgi response: %w", err)
	}
	return &types.ModelResponse{StatusCode: 200, Text: resp.GeneratedText}, nil
}

func (a *vendorEnvelopeAdapter) NativeStructuredOutputSupported() bool { return true }

func (a *vendorEnvelopeAdapter) Name() string { return "vendor_envelope" }

// renderPromptTemplate flattens role-tagged messages into a single prompt
// string ("ROLE: text" lines followed by "ASSISTANT: "). No model chat
// template is applied, so the adapter needs no tokenizer dependency.
func renderPromptTemplate(messages []types.Message) string {
	var sb strings.Builder
	for _, m := range messages {
		sb.WriteString(strings.ToUpper(string(m.Role)))
		sb.WriteString(": ")
		sb.WriteString(m.Text())
		sb.WriteString("\n")
	}
	sb.WriteString("ASSISTANT: ")
	return sb.String()
}
