package types

import "time"

// ChatEntry is one entry in a State's append-only chat history: the
// messages sent to a node's model call, the response received, and when.
type ChatEntry struct {
	NodeName        string         `json:"node_name"`
	RequestMessages []Message      `json:"request_messages"`
	Response        *ModelResponse `json:"response"`
	Timestamp       time.Time      `json:"timestamp"`

	// PromptTokens is an approximate BPE token count for RequestMessages,
	// estimated before dispatch so a node's context usage is visible
	// without waiting for the vendor to reject an oversized prompt.
	PromptTokens int `json:"prompt_tokens,omitempty"`
}

// NodeMetadata records per-node execution bookkeeping (used by Lambda and
// other non-LLM nodes to note timing/success without a chat entry).
type NodeMetadata struct {
	NodeName   string        `json:"node_name"`
	Success    bool          `json:"success"`
	DurationMS int64         `json:"duration_ms"`
	Timestamp  time.Time     `json:"timestamp"`
}

// State is the per-record working value threaded through the graph: the
// record itself, plus framework-reserved fields. State is owned by exactly
// one worker at a time and is never shared between records, so it needs no
// internal synchronization (spec §5).
type State struct {
	Record Record

	// ChatHistory is append-only within a run.
	ChatHistory []ChatEntry

	// GraphProperties is read-only config seeded into every record at
	// graph entry.
	GraphProperties map[string]any

	// NodeMetadata accumulates per-node execution metadata (Lambda nodes
	// and others that aren't chat turns).
	NodeMetadata []NodeMetadata

	// CycleCounters tracks per-cycle-variable counts used by edge
	// predicates to bound conditional loops (e.g. "turn_count").
	CycleCounters map[string]int

	// StepsTaken counts node executions so the runtime can enforce its
	// configurable step limit independent of predicate-authored counters.
	StepsTaken int
}

// NewState builds the initial State for a record: a shallow clone of the
// record plus the graph's read-only properties.
func NewState(record Record, graphProperties map[string]any) *State {
	return &State{
		Record:          record.Clone(),
		GraphProperties: graphProperties,
		CycleCounters:   make(map[string]int),
	}
}

// AppendChatHistory appends one chat turn. ChatHistory is append-only;
// callers must never mutate prior entries.
func (s *State) AppendChatHistory(entry ChatEntry) {
	s.ChatHistory = append(s.ChatHistory, entry)
}

// RecordNodeMetadata appends execution metadata for a non-chat node.
func (s *State) RecordNodeMetadata(meta NodeMetadata) {
	s.NodeMetadata = append(s.NodeMetadata, meta)
}

// Get reads a key from the underlying record.
func (s *State) Get(key string) (any, bool) {
	v, ok := s.Record[key]
	return v, ok
}

// Set writes a key into the underlying record. Node executors are expected
// to only write keys within their declared output keys; that constraint is
// enforced by the node wrapper, not by State itself.
func (s *State) Set(key string, value any) {
	s.Record[key] = value
}

// IncrCycleCounter increments and returns a named cycle counter, used by
// edge predicates implementing bounded conditional loops.
func (s *State) IncrCycleCounter(name string) int {
	s.CycleCounters[name]++
	return s.CycleCounters[name]
}

// MaxConversationTurns returns the configured max_conversation_turns
// cutoff for the named node, if one was declared, so an edge predicate can
// compare it against its own cycle counter and break out of a conditional
// loop (spec §4.4 "max_conversation_turns cutoff"). The value is seeded by
// graph.Build under a reserved GraphProperties key.
func (s *State) MaxConversationTurns(nodeName string) (int, bool) {
	raw, ok := s.GraphProperties["__node_max_conversation_turns"]
	if !ok {
		return 0, false
	}
	limits, ok := raw.(map[string]int)
	if !ok {
		return 0, false
	}
	limit, ok := limits[nodeName]
	return limit, ok
}
