package store

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound indicates no checkpoint exists for the session key.
var ErrSessionNotFound = errors.New("store: session not found")

// SerializationError wraps JSON marshaling/unmarshaling errors with context.
type SerializationError struct {
	Key string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("store: serialization error for key %q: %v", e.Key, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
