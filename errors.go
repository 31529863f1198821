package demoactions

import (
	"errors"
	"fmt"

	"github.com/reglet-dev/reglet-demo-actions/actions"
)

// Sentinel errors for the boundary operations.
var (
	// ErrDecodeParams is returned when a POST parameter document is not valid JSON.
	ErrDecodeParams = actions.ErrDecodeParams

	// ErrEncode is returned when a result document cannot be serialized.
	ErrEncode = errors.New("failed to serialize result")
)

// DecodeError wraps a parameter decoding failure with the operation and
// action it occurred in.
type DecodeError struct {
	Err       error
	Operation string
	Action    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Action, e.Err)
}

// Unwrap exposes the underlying decode failure.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, demoactions.ErrDecodeParams)
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecodeParams
}
