package sidekick

import "encoding/json"

// Tool defines a capability that can be called by the model.
type Tool struct {
	// Name is the unique identifier for the capability.
	Name string
	// Description explains what the capability does (helps the model decide
	// when to use it).
	Description string
	// Parameters is a JSON Schema object defining the argument shape.
	Parameters json.RawMessage
}

// ToolCall represents a request from the model to invoke a capability.
type ToolCall struct {
	// ID is a unique identifier for this call (used to match results).
	ID string `json:"id"`
	// Name is the name of the capability to invoke.
	Name string `json:"name"`
	// Arguments is a JSON string containing the arguments to pass.
	Arguments string `json:"arguments"`
}

// ToolResult represents the result of executing a capability call.
type ToolResult struct {
	// ToolCallID matches the ID from the corresponding ToolCall.
	ToolCallID string `json:"toolCallId"`
	// Name is the name of the capability that was invoked.
	Name string `json:"name"`
	// Content is the structured result content returned to the model.
	Content string `json:"content"`
	// IsError indicates the result is a descriptive failure payload rather
	// than a successful lookup. The model sees it as data and may recover.
	IsError bool `json:"isError,omitempty"`
}

// ToolChoice controls how the model uses capabilities.
type ToolChoice string

const (
	// ToolChoiceAuto lets the model decide when to use tools (default).
	ToolChoiceAuto ToolChoice = "auto"
	// ToolChoiceNone disables tool use for the request.
	ToolChoiceNone ToolChoice = "none"
	// ToolChoiceRequired forces the model to use a tool.
	ToolChoiceRequired ToolChoice = "required"
)

// NewToolResultMessage creates a tool-role message carrying results in the
// order they are passed, which callers must keep aligned with the request
// order of the originating assistant turn.
func NewToolResultMessage(results ...ToolResult) Message {
	return Message{
		Role:        RoleTool,
		ToolResults: results,
	}
}
