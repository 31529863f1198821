package actions

import "fmt"

// ActionResult is the document returned by POST. It is produced fresh for
// every invocation.
type ActionResult struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Succeed builds a successful result.
func Succeed(data map[string]any, message string) ActionResult {
	return ActionResult{Success: true, Data: data, Message: message}
}

// Fail builds a failed result carrying a human-readable error.
func Fail(format string, args ...any) ActionResult {
	return ActionResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// UnknownAction is the result for a name outside the dispatch set.
func UnknownAction(name string) ActionResult {
	return Fail("Unknown action: %s", name)
}

// MissingParameter is the result for an absent or mistyped required parameter.
func MissingParameter(name string) ActionResult {
	return Fail("Missing required parameter: %s", name)
}
