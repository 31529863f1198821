package registry

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/invopop/jsonschema"
	"github.com/reglet-dev/reglet-demo-actions/descriptor"
)

// ActionSchemaID returns the identifier under which an action's parameter
// schema is published.
func ActionSchemaID(action string) string {
	return fmt.Sprintf("https://reglet.dev/schemas/demo-actions/%s.params.json", action)
}

// ActionSchema derives the JSON Schema (draft 2020-12) of an action's
// parameter document from its declared inputs. Undeclared properties are
// allowed; hosts routinely pass their whole block state.
func ActionSchema(action descriptor.ActionDescriptor) ([]byte, error) {
	s := &jsonschema.Schema{
		Version:    jsonschema.Version,
		ID:         jsonschema.ID(ActionSchemaID(action.Name)),
		Title:      action.Name,
		Type:       "object",
		Properties: jsonschema.NewProperties(),
	}
	if action.Description != "" {
		s.Description = action.Description
	}

	for _, in := range action.Inputs {
		prop, err := paramSchema(in)
		if err != nil {
			return nil, fmt.Errorf("action %s: %w", action.Name, err)
		}
		s.Properties.Set(in.Name, prop)
		if in.Required {
			s.Required = append(s.Required, in.Name)
		}
	}

	return json.MarshalIndent(s, "", "  ")
}

func paramSchema(p descriptor.ParameterDescriptor) (*jsonschema.Schema, error) {
	prop := &jsonschema.Schema{Description: p.Description}
	switch p.Type {
	case descriptor.ParamNumber:
		prop.Type = "number"
		if p.Validation != nil {
			if p.Validation.Min != nil {
				prop.Minimum = formatNumber(*p.Validation.Min)
			}
			if p.Validation.Max != nil {
				prop.Maximum = formatNumber(*p.Validation.Max)
			}
		}
	case descriptor.ParamBoolean:
		prop.Type = "boolean"
	default:
		return nil, fmt.Errorf("parameter %s: unsupported type %q", p.Name, p.Type)
	}
	return prop, nil
}

func formatNumber(f float64) json.Number {
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64))
}
