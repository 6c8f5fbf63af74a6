package tool

import (
	"context"

	ai "github.com/codypharm/pharma-sidekick"
)

// Handler is a function that executes a capability call and returns a result.
// The context supports cancellation and timeout.
// The call contains the capability name, ID, and arguments as a JSON string.
// Returns the result content string, or an error if execution failed.
type Handler func(ctx context.Context, call ai.ToolCall) (string, error)

// TypedHandler is a function that executes a capability call with typed
// arguments. The args parameter is automatically unmarshaled from the call's
// JSON arguments.
type TypedHandler[T any] func(ctx context.Context, args T) (string, error)
