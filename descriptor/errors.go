package descriptor

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error patterns.
// These allow both errors.Is() checks and errors.As() for detailed information.
var (
	// ErrInvalidDescriptor is returned when a descriptor violates a structural invariant.
	ErrInvalidDescriptor = errors.New("invalid descriptor")

	// ErrUnknownCapability is returned when a capability carries an unsupported type tag.
	ErrUnknownCapability = errors.New("unknown capability type")
)

// InvariantError describes a single invariant violation, located by a
// dotted path such as "actions[increment].inputs[amount]".
type InvariantError struct {
	Path   string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, descriptor.ErrInvalidDescriptor)
func (e *InvariantError) Is(target error) bool {
	return target == ErrInvalidDescriptor
}
