package types

import "time"

// Role identifies the speaker of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// SegmentKind discriminates the payload carried by a Segment.
type SegmentKind string

const (
	SegmentText          SegmentKind = "text"
	SegmentImageDataURL   SegmentKind = "image_data_url"
	SegmentAudioDataURL   SegmentKind = "audio_data_url"
	SegmentToolCall       SegmentKind = "tool_call"
	SegmentToolResult     SegmentKind = "tool_result"
)

// ToolCall represents a tool invocation requested by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolResult represents the outcome of a previously requested tool call.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error,omitempty"`
}

// Segment is one piece of a multi-part Message body (spec §3: "content:
// string|segments[]"). Exactly one of the payload fields is populated,
// selected by Kind.
type Segment struct {
	Kind SegmentKind `json:"kind"`

	Text     string      `json:"text,omitempty"`
	DataURL  string      `json:"data_url,omitempty"`
	ToolCall *ToolCall   `json:"tool_call,omitempty"`
	Result   *ToolResult `json:"tool_result,omitempty"`
}

// Message is one turn in a conversation. Content is either a plain string
// (the common case) or a sequence of Segments for multimodal/tool turns;
// at most one form is populated.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content,omitempty"`
	Segments  []Segment `json:"segments,omitempty"`
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// NewMessage creates a plain-text message with the given role.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content, Timestamp: time.Now()}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message { return NewMessage(RoleSystem, content) }

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message { return NewMessage(RoleUser, content) }

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message { return NewMessage(RoleAssistant, content) }

// NewToolMessage creates a tool-result message referencing the originating
// tool call.
func NewToolMessage(toolCallID, name, content string) Message {
	return Message{
		Role:    RoleTool,
		Name:    name,
		Content: content,
		Segments: []Segment{{
			Kind:   SegmentToolResult,
			Result: &ToolResult{ToolCallID: toolCallID, Content: content},
		}},
		Timestamp: time.Now(),
	}
}

// WithSegments replaces the message's segmented content.
func (m Message) WithSegments(segments []Segment) Message {
	m.Segments = segments
	return m
}

// Text returns the message's flattened textual content: Content if set,
// else the concatenation of any text segments.
func (m Message) Text() string {
	if m.Content != "" {
		return m.Content
	}
	var out string
	for _, s := range m.Segments {
		if s.Kind == SegmentText {
			out += s.Text
		}
	}
	return out
}
