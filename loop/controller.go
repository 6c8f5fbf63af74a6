package loop

// Node identifies a state in the supervision loop.
type Node string

const (
	NodeWorker    Node = "worker"
	NodeTools     Node = "tools"
	NodeEvaluator Node = "evaluator"
	NodeEnd       Node = "end"
)

// MaxIterations is the hard cap on evaluator executions per run. It is
// the sole guarantee against infinite looping and applies regardless
// of the flags the evaluator returns.
const MaxIterations = 5

// afterWorker routes to the dispatcher when the worker requested tool
// calls, otherwise straight to evaluation. A bare clarifying question
// with no tool calls is evaluated, not executed.
func afterWorker(s *State) Node {
	if last := s.LastTurn(); last != nil && last.HasToolCalls() {
		return NodeTools
	}
	return NodeEvaluator
}

// afterTools routes to the evaluator when the batch contained the
// terminal assessment capability, otherwise back to the worker. The
// terminal capability forces evaluation regardless of its position in
// the batch or whether other calls in the batch failed.
func afterTools(s *State, terminalTool string) Node {
	for _, result := range s.LastToolBatch {
		if result.Name == terminalTool {
			return NodeEvaluator
		}
	}
	return NodeWorker
}

// afterEvaluator ends the run once the iteration cap is reached or the
// evaluator set either termination flag.
func afterEvaluator(s *State) Node {
	if s.Iterations >= MaxIterations {
		return NodeEnd
	}
	if s.SuccessCriteriaMet || s.UserInputNeeded {
		return NodeEnd
	}
	return NodeWorker
}
