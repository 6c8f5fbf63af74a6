package loop

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	ai "github.com/codypharm/pharma-sidekick"
)

// Verdict is the structured record the evaluation engine must return.
// Anything structurally invalid is fatal to the run; flags are never
// defaulted.
type Verdict struct {
	Feedback           string `json:"feedback" desc:"Specific, actionable feedback on the assistant's response" required:"true"`
	SuccessCriteriaMet bool   `json:"success_criteria_met" desc:"True only if the work is truly complete and safe" required:"true"`
	UserInputNeeded    bool   `json:"user_input_needed" desc:"True if pharmacist input is needed, or the assistant is stuck" required:"true"`
}

// feedbackPrefix marks evaluator turns in the transcript.
const feedbackPrefix = "Evaluator Feedback on this answer: "

const evaluatorRubric = `You are a Clinical Supervisor evaluating a Pharmacy Assistant agent's prescription validation work.

Your role: Determine if the task has been completed thoroughly, safely, and with proper clinical reasoning.

EVALUATION CRITERIA:

1. Completeness of Investigation
- Did the assistant use appropriate tools for the patient's profile?
- For pediatric patients: check_pediatric_dosing
- For geriatric patients (65+): check_geriatric_considerations
- For patients with renal issues: check_renal_dosing
- For pregnant patients: check_pregnancy_safety
- Always check: allergies, interactions, duplicate therapy, recalls (when applicable)

2. Clinical Safety
- Were all critical checks performed based on patient demographics?
- Don't penalize for NOT using tools that aren't relevant (e.g., geriatric checks for a 30-year-old)
- DO penalize for missing relevant checks (e.g., not checking allergies at all)

3. Clear Outcome
- Did the assistant provide a definitive recommendation using the final assessment tool?
- OR did they ask a legitimate clarifying question?

4. User Input Assessment
- Set user_input_needed=true if the assistant asked a valid Question: that requires pharmacist input, is stuck or repeating mistakes, or recognized that critical information is missing
- Set user_input_needed=false if the assistant provided a final assessment, or the question is not actually necessary

Provide constructive feedback that helps the assistant improve without being overly harsh.`

// Evaluator grades the worker's latest output against the success
// criteria through a structured evaluation call.
type Evaluator struct {
	provider ai.ChatProvider
	opts     []ai.Option
}

// NewEvaluator creates an evaluator over the given provider.
func NewEvaluator(provider ai.ChatProvider, opts ...ai.Option) *Evaluator {
	return &Evaluator{
		provider: provider,
		opts:     opts,
	}
}

// Run invokes the evaluation engine, stores the verdict flags, appends
// the feedback as an assistant-attributed turn, and increments the
// iteration counter by exactly one. Any invocation or decode failure
// is fatal to the run.
func (e *Evaluator) Run(ctx context.Context, s *State) error {
	opts := append([]ai.Option{
		ai.WithResponseSchema(ai.ResponseSchema{
			Name:        "evaluation",
			Description: "Verdict on the assistant's prescription validation work",
			Schema:      ai.MustSchemaFor[Verdict](),
		}),
	}, e.opts...)

	messages := []ai.Message{
		{Role: ai.RoleSystem, Content: evaluatorRubric},
		{Role: ai.RoleUser, Content: e.buildPrompt(s)},
	}

	resp, err := e.provider.Chat(ctx, messages, opts...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEvaluatorInvocation, err)
	}

	verdict, err := decodeVerdict(resp.Content)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEvaluatorInvocation, err)
	}

	s.Feedback = verdict.Feedback
	s.SuccessCriteriaMet = verdict.SuccessCriteriaMet
	s.UserInputNeeded = verdict.UserInputNeeded
	s.Iterations++

	s.Append(ai.Message{
		ID:      ai.GenerateMessageID(),
		Role:    ai.RoleAssistant,
		Content: feedbackPrefix + verdict.Feedback,
	})
	return nil
}

func (e *Evaluator) buildPrompt(s *State) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Evaluate this conversation between Pharmacist and Assistant:\n\n%s\n\n",
		formatConversation(s.Transcript))
	fmt.Fprintf(&b, "Success Criteria:\n%s\n\n", s.SuccessCriteria)

	lastResponse := ""
	if last := s.LastTurn(); last != nil {
		lastResponse = turnText(*last)
	}
	fmt.Fprintf(&b, "Assistant's Latest Response:\n%s\n\n", lastResponse)

	b.WriteString("Provide:\n")
	b.WriteString("1. feedback: Specific, actionable feedback\n")
	b.WriteString("2. success_criteria_met: true only if truly complete and safe\n")
	b.WriteString("3. user_input_needed: true if legitimate question or stuck\n")

	if s.Feedback != "" {
		fmt.Fprintf(&b, "\nIn a prior attempt, you provided this feedback: %s\n", s.Feedback)
		b.WriteString("If the Assistant is repeating the same mistakes, consider responding that user input is required.\n")
	}

	return b.String()
}

// formatConversation renders the transcript for the evaluator.
// Tool-result turns are omitted; tool usage shows on the assistant
// turn that requested it.
func formatConversation(transcript []ai.Message) string {
	var lines []string
	for _, msg := range transcript {
		switch msg.Role {
		case ai.RoleUser:
			lines = append(lines, "Pharmacist: "+msg.Content)
		case ai.RoleAssistant:
			if msg.HasToolCalls() {
				names := make([]string, len(msg.ToolCalls))
				for i, tc := range msg.ToolCalls {
					names[i] = tc.Name
				}
				lines = append(lines, "Assistant: [Used tools: "+strings.Join(names, ", ")+"]")
			}
			if msg.Content != "" {
				lines = append(lines, "Assistant: "+msg.Content)
			}
		}
	}
	return strings.Join(lines, "\n\n")
}

// decodeVerdict parses the evaluator's structured output strictly:
// unknown fields or trailing content fail the decode.
func decodeVerdict(content string) (*Verdict, error) {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.DisallowUnknownFields()

	var v Verdict
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode verdict: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode verdict: trailing content after record")
	}
	return &v, nil
}
