package loop

import (
	"context"
	"fmt"
	"strings"

	ai "github.com/codypharm/pharma-sidekick"
	"github.com/codypharm/pharma-sidekick/store"
	"github.com/codypharm/pharma-sidekick/tool"
)

// DefaultTerminalTool is the capability whose invocation signals the
// worker considers the validation complete.
const DefaultTerminalTool = "final_clinical_assessment"

// SidekickOption configures a Sidekick.
type SidekickOption func(*Sidekick)

// WithSessionStore enables per-session transcript checkpointing.
func WithSessionStore(sessions *store.SessionStore) SidekickOption {
	return func(s *Sidekick) { s.sessions = sessions }
}

// WithSessionID fixes the session key. Without it a fresh key is
// generated when the Sidekick is created.
func WithSessionID(id string) SidekickOption {
	return func(s *Sidekick) { s.sessionID = id }
}

// WithTerminalTool overrides the capability name that ends a
// validation pass.
func WithTerminalTool(name string) SidekickOption {
	return func(s *Sidekick) { s.terminalTool = name }
}

// WithEvaluatorProvider uses a separate provider for evaluation calls.
func WithEvaluatorProvider(provider ai.ChatProvider, opts ...ai.Option) SidekickOption {
	return func(s *Sidekick) { s.evaluator = NewEvaluator(provider, opts...) }
}

// Sidekick is the externally callable entry point: it drives one
// supervision loop per Run call and keeps a session checkpoint for
// follow-up calls. Callers must not issue concurrent Run calls for the
// same session.
type Sidekick struct {
	worker       *Worker
	dispatcher   *Dispatcher
	evaluator    *Evaluator
	sessions     *store.SessionStore
	sessionID    string
	terminalTool string

	// Termination records why the most recent run stopped.
	Termination TerminationReason
}

// NewSidekick wires the loop components around a provider and a
// capability registry. The same provider serves reasoning and
// evaluation unless WithEvaluatorProvider overrides it.
func NewSidekick(provider ai.ChatProvider, registry *tool.Registry, opts ...SidekickOption) *Sidekick {
	s := &Sidekick{
		worker:       NewWorker(provider, registry),
		dispatcher:   NewDispatcher(registry),
		evaluator:    NewEvaluator(provider),
		terminalTool: DefaultTerminalTool,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sessionID == "" {
		s.sessionID = store.GenerateSessionID()
	}
	return s
}

// SessionID returns the session handle for this conversation.
func (s *Sidekick) SessionID() string {
	return s.sessionID
}

// Run executes one superstep: it appends the new message to the
// conversation, drives the loop to a terminal state, and returns the
// displayed history extended by the user entry, the assistant's last
// substantive answer, and the evaluator's feedback.
//
// A blank message returns the history unchanged. Empty success
// criteria fall back to DefaultSuccessCriteria. A reasoning or
// evaluation failure returns the history unchanged alongside the
// error; iteration exhaustion is a normal termination.
func (s *Sidekick) Run(ctx context.Context, message, successCriteria string, history []Entry) ([]Entry, error) {
	if strings.TrimSpace(message) == "" {
		return history, nil
	}

	criteria := successCriteria
	if strings.TrimSpace(criteria) == "" {
		criteria = DefaultSuccessCriteria
	}

	state := NewState(message, criteria, history)
	state.Instruction = BuildInstruction(criteria, s.terminalTool)

	if err := s.drive(ctx, state); err != nil {
		return history, err
	}

	reply, feedback := extractOutcome(state.Transcript)
	updated := append(history,
		Entry{Role: string(ai.RoleUser), Content: message},
		Entry{Role: string(ai.RoleAssistant), Content: reply},
		Entry{Role: string(ai.RoleAssistant), Content: feedback},
	)

	if s.sessions != nil {
		if err := s.sessions.Save(ctx, s.sessionID, state.Transcript); err != nil {
			return updated, fmt.Errorf("checkpoint session: %w", err)
		}
	}
	return updated, nil
}

// drive runs the controller loop to the end state.
func (s *Sidekick) drive(ctx context.Context, state *State) error {
	node := NodeWorker
	for node != NodeEnd {
		switch node {
		case NodeWorker:
			if err := s.worker.Run(ctx, state); err != nil {
				return err
			}
			node = afterWorker(state)

		case NodeTools:
			s.dispatcher.Run(ctx, state)
			node = afterTools(state, s.terminalTool)

		case NodeEvaluator:
			if err := s.evaluator.Run(ctx, state); err != nil {
				return err
			}
			node = afterEvaluator(state)
		}
	}

	s.Termination = terminationOf(state)
	return nil
}

func terminationOf(state *State) TerminationReason {
	switch {
	case state.SuccessCriteriaMet:
		return TerminationCriteriaMet
	case state.UserInputNeeded:
		return TerminationUserInput
	default:
		return TerminationIterationCap
	}
}

// extractOutcome pulls the two caller-visible turns from the final
// transcript: the last substantive answer and the evaluator feedback
// that follows it. With fewer than two turns the feedback is empty
// rather than an error.
func extractOutcome(transcript []ai.Message) (reply, feedback string) {
	switch {
	case len(transcript) >= 2:
		return turnText(transcript[len(transcript)-2]), turnText(transcript[len(transcript)-1])
	case len(transcript) == 1:
		return turnText(transcript[0]), ""
	default:
		return "", ""
	}
}

// Resume loads the checkpointed transcript for a session and returns
// it as displayed entries, so a caller can rebuild its view and
// continue the conversation with Run. Loop progress never carries
// over: each Run starts with a zero iteration count.
func (s *Sidekick) Resume(ctx context.Context, sessionID string) ([]Entry, error) {
	if s.sessions == nil {
		return nil, fmt.Errorf("no session store configured")
	}

	cp, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.sessionID = sessionID

	var history []Entry
	for _, msg := range cp.Messages {
		switch msg.Role {
		case ai.RoleUser:
			history = append(history, Entry{Role: string(ai.RoleUser), Content: msg.Content})
		case ai.RoleAssistant:
			if text := turnText(msg); text != "" {
				history = append(history, Entry{Role: string(ai.RoleAssistant), Content: text})
			}
		}
	}
	return history, nil
}
