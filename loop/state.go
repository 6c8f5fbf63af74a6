package loop

import (
	"strings"

	ai "github.com/codypharm/pharma-sidekick"
)

// Entry is one caller-visible transcript line.
type Entry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// State is the single mutable record threaded through one run.
// The active system instruction lives in its own field rather than in
// the transcript; it is serialized as a leading system message only at
// the reasoning-call boundary, so the transcript can never accumulate
// duplicate instruction turns.
type State struct {
	Transcript         []ai.Message
	Instruction        string
	SuccessCriteria    string
	Feedback           string
	SuccessCriteriaMet bool
	UserInputNeeded    bool
	Iterations         int

	// LastToolBatch holds the tool results produced by the most
	// recent dispatcher step, in request order.
	LastToolBatch []ai.ToolResult
}

// NewState builds a fresh State from the caller's displayed history
// and the new user message. Only user and assistant entries carry
// over; anything else in the displayed history is dropped.
func NewState(message, successCriteria string, history []Entry) *State {
	var transcript []ai.Message
	for _, entry := range history {
		switch entry.Role {
		case string(ai.RoleUser):
			transcript = append(transcript, ai.Message{Role: ai.RoleUser, Content: entry.Content})
		case string(ai.RoleAssistant):
			transcript = append(transcript, ai.Message{Role: ai.RoleAssistant, Content: entry.Content})
		}
	}
	if message != "" {
		transcript = append(transcript, ai.Message{Role: ai.RoleUser, Content: message})
	}

	return &State{
		Transcript:      transcript,
		SuccessCriteria: successCriteria,
	}
}

// Append adds turns to the transcript.
func (s *State) Append(msgs ...ai.Message) {
	s.Transcript = append(s.Transcript, msgs...)
}

// LastTurn returns the most recent transcript turn, or nil when the
// transcript is empty.
func (s *State) LastTurn() *ai.Message {
	if len(s.Transcript) == 0 {
		return nil
	}
	return &s.Transcript[len(s.Transcript)-1]
}

// ReasoningMessages returns the transcript with the active instruction
// prepended as a system message. This is the only place the
// instruction enters the turn sequence.
func (s *State) ReasoningMessages() []ai.Message {
	msgs := make([]ai.Message, 0, len(s.Transcript)+1)
	if s.Instruction != "" {
		msgs = append(msgs, ai.Message{Role: ai.RoleSystem, Content: s.Instruction})
	}
	return append(msgs, s.Transcript...)
}

// turnText extracts the human-readable content of a turn. Tool-result
// turns yield their result payloads joined together.
func turnText(msg ai.Message) string {
	if msg.Content != "" {
		return msg.Content
	}
	if len(msg.ToolResults) > 0 {
		parts := make([]string, 0, len(msg.ToolResults))
		for _, tr := range msg.ToolResults {
			parts = append(parts, tr.Content)
		}
		return strings.Join(parts, "\n")
	}
	return ""
}
