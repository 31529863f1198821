package host

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error patterns.
// These allow both errors.Is() checks and errors.As() for detailed information.
var (
	// ErrIntegrityCheckFailed is returned when digest verification fails.
	ErrIntegrityCheckFailed = errors.New("integrity check failed")

	// ErrPluginFailure is returned when an export reports a fatal error document.
	ErrPluginFailure = errors.New("plugin call failed")

	// ErrExportMissing is returned when the module lacks a required export.
	ErrExportMissing = errors.New("export not found")

	// ErrClosed is returned by calls on a closed PluginInstance.
	ErrClosed = errors.New("plugin instance closed")
)

// IntegrityError indicates digest mismatch.
// Provides detailed information about expected vs actual digest.
type IntegrityError struct {
	Expected Digest
	Actual   Digest
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf(
		"integrity check failed: expected %s, got %s",
		e.Expected.String(),
		e.Actual.String(),
	)
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, host.ErrIntegrityCheckFailed)
func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrityCheckFailed
}

// CallError wraps a failure of one export call.
type CallError struct {
	Err    error
	Export string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Export, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}
