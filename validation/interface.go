package validation

import "github.com/reglet-dev/reglet-demo-actions/descriptor"

// ValidationResult collects the outcome of a validation pass.
type ValidationResult struct {
	Errors []string
	Valid  bool
}

// ManifestValidator validates module descriptor capabilities against a schema.
type ManifestValidator interface {
	// Validate checks that the descriptor capabilities match the registered schemas.
	Validate(module *descriptor.ModuleDescriptor) (*ValidationResult, error)
}

// ParamsValidator validates a parameter document against an action's declared inputs.
type ParamsValidator interface {
	// ValidateParams checks params against the schema derived from action's inputs.
	ValidateParams(action descriptor.ActionDescriptor, params map[string]any) (*ValidationResult, error)
}
