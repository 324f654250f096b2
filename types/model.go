package types

// ModelParams is the resolved (URL, auth) pair a single logical call travels
// with, after the Model Client's load balancer has picked a URL (spec
// §4.2).
type ModelParams struct {
	URL       string
	AuthToken string
}

// ModelResponse is the normalized result of one model call, independent of
// vendor wire format.
type ModelResponse struct {
	Text         string     `json:"text"`
	StatusCode   int        `json:"status_code"`
	Reasoning    string     `json:"reasoning,omitempty"`
	FinishReason string     `json:"finish_reason,omitempty"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`

	// ErrorText is the raw error body/message when StatusCode != 200; used
	// for stats categorization (timeout/tokens_exceeded/connection_error)
	// and logging. Never part of the "success shape".
	ErrorText string `json:"error_text,omitempty"`

	// Attempts is the number of attempts the retry loop made to produce
	// this response (spec §8 boundary scenario 2).
	Attempts int `json:"attempts,omitempty"`
}

// OK reports whether the response represents a successful (HTTP 200) call.
func (r *ModelResponse) OK() bool {
	return r != nil && r.StatusCode == 200
}
