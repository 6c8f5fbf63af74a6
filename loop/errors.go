package loop

import "errors"

// ErrWorkerInvocation wraps a reasoning call failure. Fatal to the
// current run; never retried or defaulted.
var ErrWorkerInvocation = errors.New("loop: reasoning invocation failed")

// ErrEvaluatorInvocation wraps an evaluation call failure, including
// structurally invalid evaluator output. Fatal to the current run.
var ErrEvaluatorInvocation = errors.New("loop: evaluation invocation failed")

// TerminationReason records why a run reached the end state.
type TerminationReason string

const (
	// TerminationCriteriaMet means the evaluator accepted the work.
	TerminationCriteriaMet TerminationReason = "success_criteria_met"
	// TerminationUserInput means the evaluator decided pharmacist
	// input is required before continuing.
	TerminationUserInput TerminationReason = "user_input_needed"
	// TerminationIterationCap means the evaluator ran MaxIterations
	// times without accepting. A controlled stop, not an error.
	TerminationIterationCap TerminationReason = "iteration_cap"
)
