package loop

import (
	"context"
	"sync"

	ai "github.com/codypharm/pharma-sidekick"
	"github.com/codypharm/pharma-sidekick/tool"
)

// Dispatcher executes the tool calls requested by the most recent
// assistant turn against the capability registry.
type Dispatcher struct {
	registry *tool.Registry
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry *tool.Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Run executes the last assistant turn's tool calls. Calls in a batch
// run concurrently, but results are appended in request order so the
// next reasoning step sees a deterministic sequence. A failing
// capability never aborts the batch: its error becomes the result
// content with the error flag set, visible to the model as data.
func (d *Dispatcher) Run(ctx context.Context, s *State) {
	last := s.LastTurn()
	if last == nil || !last.HasToolCalls() {
		s.LastToolBatch = nil
		return
	}

	results := make([]ai.ToolResult, len(last.ToolCalls))
	var wg sync.WaitGroup

	for i, call := range last.ToolCalls {
		wg.Add(1)
		go func(idx int, tc ai.ToolCall) {
			defer wg.Done()
			results[idx] = d.execute(ctx, tc)
		}(i, call)
	}
	wg.Wait()

	s.LastToolBatch = results
	s.Append(ai.NewToolResultMessage(results...))
}

func (d *Dispatcher) execute(ctx context.Context, tc ai.ToolCall) ai.ToolResult {
	result, err := d.registry.Execute(ctx, tc)
	if err != nil {
		// Unknown capability; surface to the model rather than crash.
		return ai.ToolResult{
			ToolCallID: tc.ID,
			Name:       tc.Name,
			Content:    err.Error(),
			IsError:    true,
		}
	}
	return result
}
