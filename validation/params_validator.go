package validation

import (
	"github.com/reglet-dev/reglet-demo-actions/descriptor"
	"github.com/reglet-dev/reglet-demo-actions/registry"
)

// ParamValidator validates parameter documents against the schema derived
// from an action's declared inputs, including numeric ranges.
type ParamValidator struct {
	cache *schemaCache
}

var _ ParamsValidator = (*ParamValidator)(nil)

// NewParamValidator creates a validator with an empty schema cache.
func NewParamValidator() *ParamValidator {
	return &ParamValidator{cache: newSchemaCache()}
}

// ValidateParams checks params against the action's input schema.
func (v *ParamValidator) ValidateParams(action descriptor.ActionDescriptor, params map[string]any) (*ValidationResult, error) {
	s, err := v.cache.get(registry.ActionSchemaID(action.Name), func() ([]byte, error) {
		return registry.ActionSchema(action)
	})
	if err != nil {
		return nil, err
	}

	if params == nil {
		params = map[string]any{}
	}
	msgs, err := check(s, params, "params")
	if err != nil {
		return nil, err
	}
	return &ValidationResult{Valid: len(msgs) == 0, Errors: msgs}, nil
}
