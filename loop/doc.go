// Package loop implements the prescription validation supervision
// loop: a worker that reasons over the case and requests clinical
// checks, a dispatcher that executes them, and an evaluator that
// grades the worker's output against success criteria.
//
// The loop is an explicit finite-state machine driven by pure
// transition functions over a single State record:
//
//	worker -> tools     when the last assistant turn requests tool calls
//	worker -> evaluator otherwise
//	tools  -> evaluator when the batch included the final assessment
//	tools  -> worker    otherwise
//	evaluator -> end    when iterations reach the cap or a flag is set
//	evaluator -> worker otherwise
//
// The evaluator runs at most MaxIterations times per Sidekick.Run
// call; that bound holds regardless of what the evaluator returns.
package loop
