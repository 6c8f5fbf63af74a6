// Package sidekick provides the shared types for the pharma-sidekick
// prescription-validation agent.
//
// The repository implements an evaluator-gated agent loop: a Worker reasons
// over a conversation and requests clinical capability calls, a Dispatcher
// executes them, and an independent Evaluator grades the result against
// caller-supplied success criteria before the loop is allowed to finish.
//
// This root package holds the wire types every subpackage speaks:
//
//   - [Message], [Role], [Response], [Usage]: conversation turns and
//     provider responses
//   - [Tool], [ToolCall], [ToolResult]: capability definitions and
//     invocation records
//   - [Options] and the With* functional options: per-request provider
//     configuration, including tool binding and structured output
//   - [Error]: categorized errors (transient, permanent, user input)
//   - [ChatProvider]: the opaque reasoning/evaluation capability
//
// # Higher-Level Packages
//
//   - [github.com/codypharm/pharma-sidekick/loop]: the supervision loop
//     (Worker, Dispatcher, Evaluator, Controller, orchestrator)
//   - [github.com/codypharm/pharma-sidekick/checks]: the clinical capability
//     catalogue (allergy, interaction, dosing, recall lookups)
//   - [github.com/codypharm/pharma-sidekick/tool]: the capability registry
//   - [github.com/codypharm/pharma-sidekick/store]: keyed session checkpoints
//   - [github.com/codypharm/pharma-sidekick/provider]: ChatProvider
//     implementations for Anthropic, OpenAI and Google
//
// # Basic Usage
//
//	p := openai.New(os.Getenv("OPENAI_API_KEY"))
//	registry := checks.NewRegistry(fda.NewClient())
//	sk := loop.New(p, registry, store.NewSessionStore(nil))
//
//	history, err := sk.Run(ctx, prescription, "", nil)
package sidekick
