package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	ai "github.com/codypharm/pharma-sidekick"
)

// Checkpoint is a durable snapshot of a validation session. It captures
// the full internal transcript so a later run can continue the same
// conversation. Loop progress counters are not persisted; each run
// starts fresh.
type Checkpoint struct {
	SessionID string       `json:"session_id"`
	Messages  []ai.Message `json:"messages"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// GenerateSessionID creates a unique session identifier.
func GenerateSessionID() string {
	return "sess-" + uuid.New().String()
}

// SessionStore persists session checkpoints through an Adapter.
type SessionStore struct {
	adapter Adapter
	prefix  string
}

// NewSessionStore creates a SessionStore backed by the given adapter.
func NewSessionStore(adapter Adapter) *SessionStore {
	return &SessionStore{
		adapter: adapter,
		prefix:  "session:",
	}
}

func (s *SessionStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// Save writes a checkpoint for the session, replacing any prior one.
func (s *SessionStore) Save(ctx context.Context, sessionID string, messages []ai.Message) error {
	cp := Checkpoint{
		SessionID: sessionID,
		Messages:  messages,
		UpdatedAt: time.Now().UTC(),
	}

	raw, err := json.Marshal(cp)
	if err != nil {
		return &SerializationError{Key: s.key(sessionID), Err: err}
	}

	if err := s.adapter.Set(ctx, s.key(sessionID), raw); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// Load retrieves the checkpoint for a session. Returns
// ErrSessionNotFound if no checkpoint exists.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*Checkpoint, error) {
	raw, ok, err := s.adapter.Get(ctx, s.key(sessionID))
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if !ok {
		return nil, ErrSessionNotFound
	}

	var cp Checkpoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		return nil, &SerializationError{Key: s.key(sessionID), Err: err}
	}
	return &cp, nil
}

// Delete removes a session checkpoint. Deleting a missing session is
// not an error.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.adapter.Delete(ctx, s.key(sessionID))
}

// Has reports whether a checkpoint exists for the session.
func (s *SessionStore) Has(ctx context.Context, sessionID string) (bool, error) {
	return s.adapter.Has(ctx, s.key(sessionID))
}
