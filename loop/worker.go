package loop

import (
	"context"
	"fmt"

	ai "github.com/codypharm/pharma-sidekick"
	"github.com/codypharm/pharma-sidekick/tool"
)

// DefaultSuccessCriteria is the acceptance bar used when the caller
// does not supply one.
const DefaultSuccessCriteria = `1. All relevant clinical checks completed (allergies, interactions, dosing)
2. Clear decision provided: "Dispense" or "Do Not Dispense"
3. Clinical reasoning documented
4. Specific recommendations given to pharmacist`

const workerInstructionFormat = `You are an expert Pharmacy Sidekick assistant. Your role is to validate prescriptions and ensure patient safety by rigorously checking for allergies, interactions, and dosing errors.

You have access to specialized pharmacy verification tools. You MUST use these tools to investigate the case before forming a conclusion.
If you notice absence of needed information, ask a clarifying question.
For example, if you need the patient's weight in kg for pediatric dosing, ask a question like: "Question: The patient's weight in kg is missing but required for pediatric dosing. Please provide the weight."

Success Criteria:
%s

WORKFLOW:
1. Use available tools to gather all necessary clinical information
2. If you need information from the pharmacist, ask a clear question starting with 'Question:'
3. When you have all information and have completed verification, you MUST call the %s tool with your decision

Response Guidelines:
- For clarification questions: Start with 'Question:' followed by what you need
- For final assessment: You MUST use the %s tool (not plain text) with:
  * decision: "Dispense" or "Do Not Dispense"
  * reasoning: Complete clinical reasoning
  * recommendations: Specific recommendations for the pharmacist
  * user_input_needed: Set to false when complete`

// BuildInstruction assembles the worker's system instruction from the
// fixed role description, the run's success criteria, and the workflow
// protocol.
func BuildInstruction(successCriteria, terminalTool string) string {
	return fmt.Sprintf(workerInstructionFormat, successCriteria, terminalTool, terminalTool)
}

// Worker prepares the instruction context and invokes the reasoning
// engine with the full capability registry bound.
type Worker struct {
	provider ai.ChatProvider
	registry *tool.Registry
	opts     []ai.Option
}

// NewWorker creates a worker over the given provider and registry.
// Extra options (model, temperature) are passed through on each call.
func NewWorker(provider ai.ChatProvider, registry *tool.Registry, opts ...ai.Option) *Worker {
	return &Worker{
		provider: provider,
		registry: registry,
		opts:     opts,
	}
}

// Run invokes the reasoning engine over the transcript and appends the
// resulting assistant turn. A provider failure is fatal to the run.
func (w *Worker) Run(ctx context.Context, s *State) error {
	opts := append([]ai.Option{ai.WithTools(w.registry.Tools())}, w.opts...)

	resp, err := w.provider.Chat(ctx, s.ReasoningMessages(), opts...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWorkerInvocation, err)
	}

	s.Append(ai.Message{
		ID:        ai.GenerateMessageID(),
		Role:      ai.RoleAssistant,
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
	})
	return nil
}
