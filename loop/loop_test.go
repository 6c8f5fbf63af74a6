package loop

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/codypharm/pharma-sidekick"
	"github.com/codypharm/pharma-sidekick/store"
	"github.com/codypharm/pharma-sidekick/tool"
)

// mockProvider returns scripted responses in call order. When the
// script runs out, the last response repeats.
type mockProvider struct {
	mu        sync.Mutex
	responses []*ai.Response
	err       error
	calls     [][]ai.Message
}

func (m *mockProvider) Chat(_ context.Context, messages []ai.Message, _ ...ai.Option) (*ai.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, append([]ai.Message(nil), messages...))
	if m.err != nil {
		return nil, m.err
	}

	idx := len(m.calls) - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], nil
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockProvider) call(i int) []ai.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[i]
}

func textResponse(content string) *ai.Response {
	return &ai.Response{Content: content, FinishReason: "stop"}
}

func toolCallResponse(calls ...ai.ToolCall) *ai.Response {
	return &ai.Response{ToolCalls: calls, FinishReason: "tool_calls"}
}

func verdictResponse(t *testing.T, feedback string, met, needsInput bool) *ai.Response {
	t.Helper()
	raw, err := json.Marshal(Verdict{
		Feedback:           feedback,
		SuccessCriteriaMet: met,
		UserInputNeeded:    needsInput,
	})
	require.NoError(t, err)
	return textResponse(string(raw))
}

type demoArgs struct {
	Drug string `json:"drug"`
}

func newTestRegistry() *tool.Registry {
	return tool.NewRegistry().Add(
		tool.Func("check_demo", "demo clinical check",
			func(_ context.Context, _ demoArgs) (string, error) {
				return `{"recommendation":"Safe to proceed."}`, nil
			}),
		tool.Func("check_slow", "demo check with latency",
			func(_ context.Context, _ demoArgs) (string, error) {
				time.Sleep(10 * time.Millisecond)
				return `{"recommendation":"slow result"}`, nil
			}),
		tool.Func("check_failing", "demo check that always fails",
			func(_ context.Context, _ demoArgs) (string, error) {
				return "", errors.New("lookup unavailable")
			}),
		tool.Func(DefaultTerminalTool, "record the final assessment",
			func(_ context.Context, _ demoArgs) (string, error) {
				return `{"recorded":true}`, nil
			}),
	)
}

func newTestSidekick(worker, evaluator *mockProvider, opts ...SidekickOption) *Sidekick {
	opts = append([]SidekickOption{WithEvaluatorProvider(evaluator)}, opts...)
	return NewSidekick(worker, newTestRegistry(), opts...)
}

func TestControllerTransitions(t *testing.T) {
	t.Run("worker with tool calls routes to tools", func(t *testing.T) {
		s := &State{Transcript: []ai.Message{{
			Role:      ai.RoleAssistant,
			ToolCalls: []ai.ToolCall{{Name: "check_demo"}},
		}}}
		assert.Equal(t, NodeTools, afterWorker(s))
	})

	t.Run("worker without tool calls routes to evaluator", func(t *testing.T) {
		s := &State{Transcript: []ai.Message{{
			Role:    ai.RoleAssistant,
			Content: "Question: missing weight",
		}}}
		assert.Equal(t, NodeEvaluator, afterWorker(s))
	})

	t.Run("terminal tool anywhere in batch routes to evaluator", func(t *testing.T) {
		s := &State{LastToolBatch: []ai.ToolResult{
			{Name: "check_demo"},
			{Name: DefaultTerminalTool, IsError: true},
			{Name: "check_slow"},
		}}
		assert.Equal(t, NodeEvaluator, afterTools(s, DefaultTerminalTool))
	})

	t.Run("batch without terminal tool routes to worker", func(t *testing.T) {
		s := &State{LastToolBatch: []ai.ToolResult{{Name: "check_demo"}}}
		assert.Equal(t, NodeWorker, afterTools(s, DefaultTerminalTool))
	})

	t.Run("iteration cap ends run regardless of flags", func(t *testing.T) {
		s := &State{Iterations: MaxIterations}
		assert.Equal(t, NodeEnd, afterEvaluator(s))
	})

	t.Run("either flag ends run", func(t *testing.T) {
		assert.Equal(t, NodeEnd, afterEvaluator(&State{Iterations: 1, SuccessCriteriaMet: true}))
		assert.Equal(t, NodeEnd, afterEvaluator(&State{Iterations: 1, UserInputNeeded: true}))
	})

	t.Run("no flags and below cap continues to worker", func(t *testing.T) {
		assert.Equal(t, NodeWorker, afterEvaluator(&State{Iterations: 1}))
	})
}

func TestRunBlankMessage(t *testing.T) {
	worker := &mockProvider{}
	evaluator := &mockProvider{}
	sk := newTestSidekick(worker, evaluator)

	history := []Entry{{Role: "user", Content: "earlier"}}

	updated, err := sk.Run(context.Background(), "   ", "", history)
	require.NoError(t, err)
	assert.Equal(t, history, updated)
	assert.Zero(t, worker.callCount())
	assert.Zero(t, evaluator.callCount())
}

func TestDefaultSuccessCriteria(t *testing.T) {
	worker := &mockProvider{responses: []*ai.Response{textResponse("All checks done.")}}
	evaluator := &mockProvider{responses: []*ai.Response{verdictResponse(t, "good", true, false)}}
	sk := newTestSidekick(worker, evaluator)

	_, err := sk.Run(context.Background(), "Validate amoxicillin 500mg", "", nil)
	require.NoError(t, err)

	require.Equal(t, 1, worker.callCount())
	msgs := worker.call(0)
	require.NotEmpty(t, msgs)
	assert.Equal(t, ai.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, DefaultSuccessCriteria)
}

func TestClarifyingQuestionEndsAfterOneEvaluation(t *testing.T) {
	worker := &mockProvider{responses: []*ai.Response{
		textResponse("Question: missing weight"),
	}}
	evaluator := &mockProvider{responses: []*ai.Response{
		verdictResponse(t, "Legitimate question, weight is required.", false, true),
	}}
	sk := newTestSidekick(worker, evaluator)

	history := []Entry{{Role: "user", Content: "earlier message"}}
	updated, err := sk.Run(context.Background(), "Validate amoxicillin for a 6 year old", "", history)
	require.NoError(t, err)

	assert.Equal(t, 1, evaluator.callCount())
	assert.Equal(t, TerminationUserInput, sk.Termination)

	require.Len(t, updated, 4)
	assert.Equal(t, "Question: missing weight", updated[2].Content)
	assert.Equal(t, "Evaluator Feedback on this answer: Legitimate question, weight is required.", updated[3].Content)
}

func TestIterationCapTerminatesRun(t *testing.T) {
	worker := &mockProvider{responses: []*ai.Response{textResponse("another attempt")}}
	evaluator := &mockProvider{responses: []*ai.Response{
		verdictResponse(t, "still incomplete", false, false),
	}}
	sk := newTestSidekick(worker, evaluator)

	updated, err := sk.Run(context.Background(), "Validate lisinopril 10mg", "", nil)
	require.NoError(t, err)

	assert.Equal(t, 5, evaluator.callCount())
	assert.Equal(t, 5, worker.callCount())
	assert.Equal(t, TerminationIterationCap, sk.Termination)
	assert.Len(t, updated, 3)
}

func TestTerminalToolInBatchRoutesToEvaluator(t *testing.T) {
	worker := &mockProvider{responses: []*ai.Response{
		toolCallResponse(
			ai.ToolCall{ID: "c1", Name: "check_demo", Arguments: `{"drug":"amoxicillin"}`},
			ai.ToolCall{ID: "c2", Name: DefaultTerminalTool, Arguments: `{"drug":"amoxicillin"}`},
		),
	}}
	evaluator := &mockProvider{responses: []*ai.Response{
		verdictResponse(t, "complete", true, false),
	}}

	sessions := store.NewSessionStore(store.NewMemoryAdapter())
	sk := newTestSidekick(worker, evaluator, WithSessionStore(sessions))

	_, err := sk.Run(context.Background(), "Validate amoxicillin", "", nil)
	require.NoError(t, err)

	// The terminal call forced evaluation; the worker never ran again.
	assert.Equal(t, 1, worker.callCount())
	assert.Equal(t, 1, evaluator.callCount())
	assert.Equal(t, TerminationCriteriaMet, sk.Termination)

	cp, err := sessions.Load(context.Background(), sk.SessionID())
	require.NoError(t, err)

	// user, assistant tool calls, tool results, evaluator feedback
	require.Len(t, cp.Messages, 4)
	toolTurn := cp.Messages[2]
	assert.Equal(t, ai.RoleTool, toolTurn.Role)
	require.Len(t, toolTurn.ToolResults, 2)
	assert.Equal(t, "check_demo", toolTurn.ToolResults[0].Name)
	assert.Equal(t, DefaultTerminalTool, toolTurn.ToolResults[1].Name)
}

func TestToolBatchPreservesRequestOrder(t *testing.T) {
	registry := newTestRegistry()
	d := NewDispatcher(registry)

	s := &State{Transcript: []ai.Message{{
		Role: ai.RoleAssistant,
		ToolCalls: []ai.ToolCall{
			{ID: "c1", Name: "check_slow", Arguments: `{}`},
			{ID: "c2", Name: "check_demo", Arguments: `{}`},
			{ID: "c3", Name: "check_slow", Arguments: `{}`},
		},
	}}}

	d.Run(context.Background(), s)

	require.Len(t, s.LastToolBatch, 3)
	assert.Equal(t, "c1", s.LastToolBatch[0].ToolCallID)
	assert.Equal(t, "c2", s.LastToolBatch[1].ToolCallID)
	assert.Equal(t, "c3", s.LastToolBatch[2].ToolCallID)

	last := s.LastTurn()
	require.NotNil(t, last)
	assert.Equal(t, ai.RoleTool, last.Role)
	require.Len(t, last.ToolResults, 3)
}

func TestCapabilityFailureContinuesLoop(t *testing.T) {
	worker := &mockProvider{responses: []*ai.Response{
		toolCallResponse(ai.ToolCall{ID: "c1", Name: "check_failing", Arguments: `{}`}),
		textResponse("The lookup failed; recommending manual verification."),
	}}
	evaluator := &mockProvider{responses: []*ai.Response{
		verdictResponse(t, "reasonable fallback", true, false),
	}}

	sessions := store.NewSessionStore(store.NewMemoryAdapter())
	sk := newTestSidekick(worker, evaluator, WithSessionStore(sessions))

	_, err := sk.Run(context.Background(), "Validate warfarin", "", nil)
	require.NoError(t, err)

	// The failed capability routed back to the worker, not to a crash.
	assert.Equal(t, 2, worker.callCount())

	cp, err := sessions.Load(context.Background(), sk.SessionID())
	require.NoError(t, err)
	toolTurn := cp.Messages[2]
	require.Len(t, toolTurn.ToolResults, 1)
	assert.True(t, toolTurn.ToolResults[0].IsError)
	assert.Contains(t, toolTurn.ToolResults[0].Content, "lookup unavailable")
}

func TestUnknownCapabilityBecomesErrorResult(t *testing.T) {
	d := NewDispatcher(newTestRegistry())

	s := &State{Transcript: []ai.Message{{
		Role:      ai.RoleAssistant,
		ToolCalls: []ai.ToolCall{{ID: "c1", Name: "check_nonexistent", Arguments: `{}`}},
	}}}

	d.Run(context.Background(), s)

	require.Len(t, s.LastToolBatch, 1)
	assert.True(t, s.LastToolBatch[0].IsError)
	assert.Equal(t, "check_nonexistent", s.LastToolBatch[0].Name)
}

func TestInstructionUpsert(t *testing.T) {
	worker := &mockProvider{responses: []*ai.Response{
		toolCallResponse(ai.ToolCall{ID: "c1", Name: "check_demo", Arguments: `{}`}),
		textResponse("verified"),
	}}
	evaluator := &mockProvider{responses: []*ai.Response{
		verdictResponse(t, "ok", true, false),
	}}
	sk := newTestSidekick(worker, evaluator)

	_, err := sk.Run(context.Background(), "Validate amoxicillin", "criteria text", nil)
	require.NoError(t, err)

	require.Equal(t, 2, worker.callCount())
	for i := 0; i < 2; i++ {
		msgs := worker.call(i)
		systemCount := 0
		for _, m := range msgs {
			if m.Role == ai.RoleSystem {
				systemCount++
			}
		}
		assert.Equal(t, 1, systemCount, "worker call %d", i)
		assert.Equal(t, ai.RoleSystem, msgs[0].Role)
		assert.Contains(t, msgs[0].Content, "criteria text")
	}
}

func TestWorkerFailureIsFatal(t *testing.T) {
	worker := &mockProvider{err: errors.New("connection refused")}
	evaluator := &mockProvider{}
	sk := newTestSidekick(worker, evaluator)

	history := []Entry{{Role: "user", Content: "earlier"}}
	updated, err := sk.Run(context.Background(), "Validate amoxicillin", "", history)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWorkerInvocation)
	assert.Equal(t, history, updated)
	assert.Zero(t, evaluator.callCount())
}

func TestEvaluatorFailureIsFatal(t *testing.T) {
	t.Run("provider error", func(t *testing.T) {
		worker := &mockProvider{responses: []*ai.Response{textResponse("done")}}
		evaluator := &mockProvider{err: errors.New("connection refused")}
		sk := newTestSidekick(worker, evaluator)

		_, err := sk.Run(context.Background(), "Validate amoxicillin", "", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEvaluatorInvocation)
	})

	t.Run("malformed verdict", func(t *testing.T) {
		worker := &mockProvider{responses: []*ai.Response{textResponse("done")}}
		evaluator := &mockProvider{responses: []*ai.Response{textResponse("not a verdict")}}
		sk := newTestSidekick(worker, evaluator)

		_, err := sk.Run(context.Background(), "Validate amoxicillin", "", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEvaluatorInvocation)
	})
}

func TestPriorFeedbackCarriedToNextEvaluation(t *testing.T) {
	worker := &mockProvider{responses: []*ai.Response{textResponse("attempt")}}
	evaluator := &mockProvider{responses: []*ai.Response{
		verdictResponse(t, "Missing allergy check.", false, false),
		verdictResponse(t, "Still missing allergy check.", false, true),
	}}
	sk := newTestSidekick(worker, evaluator)

	_, err := sk.Run(context.Background(), "Validate amoxicillin", "", nil)
	require.NoError(t, err)

	require.Equal(t, 2, evaluator.callCount())

	first := evaluator.call(0)
	assert.NotContains(t, first[1].Content, "prior attempt")

	second := evaluator.call(1)
	assert.Contains(t, second[1].Content, "Missing allergy check.")
	assert.Contains(t, second[1].Content, "prior attempt")
}

func TestDecodeVerdict(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		v, err := decodeVerdict(`{"feedback":"ok","success_criteria_met":true,"user_input_needed":false}`)
		require.NoError(t, err)
		assert.True(t, v.SuccessCriteriaMet)
		assert.Equal(t, "ok", v.Feedback)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := decodeVerdict(`{"feedback":"ok","success_criteria_met":true,"user_input_needed":false,"extra":1}`)
		assert.Error(t, err)
	})

	t.Run("trailing content", func(t *testing.T) {
		_, err := decodeVerdict(`{"feedback":"ok","success_criteria_met":true,"user_input_needed":false}{}`)
		assert.Error(t, err)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := decodeVerdict(`the work looks fine`)
		assert.Error(t, err)
	})
}

func TestFormatConversation(t *testing.T) {
	transcript := []ai.Message{
		{Role: ai.RoleUser, Content: "Validate amoxicillin"},
		{Role: ai.RoleAssistant, ToolCalls: []ai.ToolCall{
			{Name: "check_drug_allergy"}, {Name: "check_drug_recall"},
		}},
		{Role: ai.RoleTool, ToolResults: []ai.ToolResult{{Content: `{"ok":true}`}}},
		{Role: ai.RoleAssistant, Content: "No issues found."},
	}

	got := formatConversation(transcript)
	assert.Contains(t, got, "Pharmacist: Validate amoxicillin")
	assert.Contains(t, got, "Assistant: [Used tools: check_drug_allergy, check_drug_recall]")
	assert.Contains(t, got, "Assistant: No issues found.")
	assert.NotContains(t, got, `{"ok":true}`)
}

func TestExtractOutcome(t *testing.T) {
	t.Run("two or more turns", func(t *testing.T) {
		reply, feedback := extractOutcome([]ai.Message{
			{Role: ai.RoleUser, Content: "q"},
			{Role: ai.RoleAssistant, Content: "answer"},
			{Role: ai.RoleAssistant, Content: "feedback"},
		})
		assert.Equal(t, "answer", reply)
		assert.Equal(t, "feedback", feedback)
	})

	t.Run("single turn returns empty feedback", func(t *testing.T) {
		reply, feedback := extractOutcome([]ai.Message{{Role: ai.RoleAssistant, Content: "only"}})
		assert.Equal(t, "only", reply)
		assert.Empty(t, feedback)
	})

	t.Run("empty transcript", func(t *testing.T) {
		reply, feedback := extractOutcome(nil)
		assert.Empty(t, reply)
		assert.Empty(t, feedback)
	})
}

func TestResume(t *testing.T) {
	worker := &mockProvider{responses: []*ai.Response{textResponse("Dispense. All checks clear.")}}
	evaluator := &mockProvider{responses: []*ai.Response{verdictResponse(t, "complete", true, false)}}

	sessions := store.NewSessionStore(store.NewMemoryAdapter())
	sk := newTestSidekick(worker, evaluator, WithSessionStore(sessions))

	_, err := sk.Run(context.Background(), "Validate amoxicillin", "", nil)
	require.NoError(t, err)

	fresh := newTestSidekick(&mockProvider{}, &mockProvider{}, WithSessionStore(sessions))
	history, err := fresh.Resume(context.Background(), sk.SessionID())
	require.NoError(t, err)

	assert.Equal(t, sk.SessionID(), fresh.SessionID())
	require.Len(t, history, 3)
	assert.Equal(t, "Validate amoxicillin", history[0].Content)
	assert.Equal(t, "Dispense. All checks clear.", history[1].Content)
	assert.Contains(t, history[2].Content, "Evaluator Feedback")
}

func TestResumeUnknownSession(t *testing.T) {
	sessions := store.NewSessionStore(store.NewMemoryAdapter())
	sk := newTestSidekick(&mockProvider{}, &mockProvider{}, WithSessionStore(sessions))

	_, err := sk.Resume(context.Background(), "sess-missing")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}
