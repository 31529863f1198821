package validation

import (
	"encoding/json"
	"fmt"

	"github.com/reglet-dev/reglet-demo-actions/descriptor"
	"github.com/reglet-dev/reglet-demo-actions/registry"
)

// CapabilityValidator checks every capability a descriptor declares, at
// module and action level, against the registry schema for its kind.
type CapabilityValidator struct {
	registry registry.CapabilityRegistry
	cache    *schemaCache
}

var _ ManifestValidator = (*CapabilityValidator)(nil)

// NewCapabilityValidator creates a validator backed by the given registry.
func NewCapabilityValidator(reg registry.CapabilityRegistry) *CapabilityValidator {
	return &CapabilityValidator{registry: reg, cache: newSchemaCache()}
}

// Validate checks the descriptor's capabilities.
func (v *CapabilityValidator) Validate(module *descriptor.ModuleDescriptor) (*ValidationResult, error) {
	result := &ValidationResult{Valid: true}
	if module == nil {
		return result, nil
	}

	for i, c := range module.Capabilities {
		if err := v.validateOne(fmt.Sprintf("capabilities[%d]", i), c, result); err != nil {
			return nil, err
		}
	}
	for _, a := range module.Actions {
		for i, c := range a.RequiredCapabilities {
			path := fmt.Sprintf("actions[%s].required_capabilities[%d]", a.Name, i)
			if err := v.validateOne(path, c, result); err != nil {
				return nil, err
			}
		}
	}

	result.Valid = len(result.Errors) == 0
	return result, nil
}

func (v *CapabilityValidator) validateOne(path string, c descriptor.Capability, result *ValidationResult) error {
	kind := string(c.Kind)
	schema, ok := v.registry.GetSchema(kind)
	if !ok {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: no schema registered for capability kind %q", path, kind))
		return nil
	}

	value := c.Value()
	if value == nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: capability %q has no value", path, kind))
		return nil
	}

	// Round-trip through JSON so the validator sees plain document types.
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: marshal capability: %w", path, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%s: unmarshal capability: %w", path, err)
	}

	s, err := v.cache.get("https://reglet.dev/schemas/capabilities/"+kind+".json", func() ([]byte, error) {
		return []byte(schema), nil
	})
	if err != nil {
		return err
	}

	msgs, err := check(s, doc, path)
	if err != nil {
		return err
	}
	result.Errors = append(result.Errors, msgs...)
	return nil
}
