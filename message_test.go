package sidekick

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateMessageID(t *testing.T) {
	id1 := GenerateMessageID()
	id2 := GenerateMessageID()

	assert.Contains(t, id1, "msg-")
	assert.NotEqual(t, id1, id2)
}

func TestMessage_HasToolCalls(t *testing.T) {
	msg := Message{Role: RoleAssistant, Content: "Question: what is the patient's weight?"}
	assert.False(t, msg.HasToolCalls())

	msg.ToolCalls = []ToolCall{{ID: "call-1", Name: "check_drug_allergy"}}
	assert.True(t, msg.HasToolCalls())
}

func TestNewToolResultMessage(t *testing.T) {
	msg := NewToolResultMessage(
		ToolResult{ToolCallID: "call-1", Name: "check_drug_allergy", Content: `{"has_allergy":false}`},
		ToolResult{ToolCallID: "call-2", Name: "check_drug_recall", Content: `{"has_recall":false}`},
	)

	assert.Equal(t, RoleTool, msg.Role)
	assert.Len(t, msg.ToolResults, 2)
	assert.Equal(t, "call-1", msg.ToolResults[0].ToolCallID)
	assert.Equal(t, "call-2", msg.ToolResults[1].ToolCallID)
}

func TestUsage_Add(t *testing.T) {
	total := Usage{InputTokens: 10, OutputTokens: 5}
	total.Add(Usage{InputTokens: 7, OutputTokens: 3})

	assert.Equal(t, 17, total.InputTokens)
	assert.Equal(t, 8, total.OutputTokens)
}
