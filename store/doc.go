// Package store provides keyed, resumable conversation state for the
// sidekick loop.
//
// The package offers three types:
//
//   - [Adapter]: the persistence contract, with a default in-memory
//     implementation in [MemoryAdapter]
//   - [MessageStore]: an append-only conversation transcript
//   - [SessionStore]: one checkpoint record per session key, holding the full
//     internal transcript of the most recent orchestrator run
//
// Each logical conversation is isolated by its session key; the loop is the
// single writer per session. Custom backends implement Adapter:
//
//	type RedisAdapter struct { ... }
//
//	func (r *RedisAdapter) Get(ctx context.Context, key string) (json.RawMessage, bool, error) { ... }
//	func (r *RedisAdapter) Set(ctx context.Context, key string, value json.RawMessage) error { ... }
//	// ... remaining methods
//
//	sessions := store.NewSessionStore(&RedisAdapter{})
package store
