package tool

import "fmt"

// ErrToolNotFound is returned when a call references an unregistered capability.
type ErrToolNotFound struct {
	Name string
}

// Error returns a formatted error message including the capability name.
func (e *ErrToolNotFound) Error() string {
	return fmt.Sprintf("tool: not found: %s", e.Name)
}

// ErrToolAlreadyRegistered is returned when registering a capability with a
// duplicate name.
type ErrToolAlreadyRegistered struct {
	Name string
}

// Error returns a formatted error message including the duplicate name.
func (e *ErrToolAlreadyRegistered) Error() string {
	return fmt.Sprintf("tool: already registered: %s", e.Name)
}
