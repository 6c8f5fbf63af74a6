package sidekick

import "github.com/google/uuid"

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Message represents a single turn in a conversation transcript.
//
// Exactly one logical system message is active per conversation; the loop
// keeps the instruction text outside the transcript and serializes it as a
// leading system message at the reasoning-call boundary, so transcripts built
// by the loop never carry more than one system turn.
type Message struct {
	// ID is an optional unique identifier for the message.
	ID      string `json:"id,omitempty"`
	Role    Role   `json:"role"`
	Content string `json:"content,omitempty"`
	// ToolCalls contains capability invocation requests from an assistant
	// turn, in the order the model emitted them.
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
	// ToolResults contains capability execution results.
	// Only populated when Role is RoleTool; ordered to match the
	// originating ToolCalls.
	ToolResults []ToolResult `json:"toolResults,omitempty"`
}

// GenerateMessageID creates a unique message identifier.
func GenerateMessageID() string {
	return "msg-" + uuid.New().String()
}

// HasToolCalls returns true if the message requests any capability calls.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// Response represents a complete response from a chat provider.
type Response struct {
	Content      string `json:"content,omitempty"`
	FinishReason string `json:"finishReason,omitempty"`
	Usage        Usage  `json:"usage"`
	// ToolCalls contains any capability invocation requests from the model.
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
}

// Usage contains token usage information for a request.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// Add accumulates usage from another request.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}
