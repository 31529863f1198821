package actions

import (
	"encoding/json"
	"fmt"

	"github.com/reglet-dev/reglet-demo-actions/descriptor"
)

// FormDescriptor tells a host how to render input for an action. For an
// unknown action only Error is set.
type FormDescriptor struct {
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	Label       string      `json:"label,omitempty"`
	Parameters  []FormField `json:"parameters"`
	Error       string      `json:"error,omitempty"`
}

// FormField is one input control.
type FormField struct {
	Type     descriptor.ParamType `json:"type"`
	Name     string               `json:"name"`
	Label    string               `json:"label"`
	Required bool                 `json:"required"`
	Default  any                  `json:"default,omitempty"`
	Min      *float64             `json:"min,omitempty"`
	Max      *float64             `json:"max,omitempty"`
}

// MarshalJSON writes an error-only document for unknown actions and always
// emits the parameter list, empty or not, otherwise.
func (f FormDescriptor) MarshalJSON() ([]byte, error) {
	if f.Error != "" {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{f.Error})
	}
	type plain FormDescriptor
	if f.Parameters == nil {
		f.Parameters = []FormField{}
	}
	return json.Marshal(plain(f))
}

// formSpec is the static presentation half of a form; field types and
// bounds come from the action descriptor.
type formSpec struct {
	title       string
	description string
	label       string
	fields      []fieldSpec
}

type fieldSpec struct {
	name  string
	label string
	def   any
}

func buildForm(def formSpec, action descriptor.ActionDescriptor) (FormDescriptor, error) {
	form := FormDescriptor{
		Title:       def.title,
		Description: def.description,
		Label:       def.label,
		Parameters:  make([]FormField, 0, len(def.fields)),
	}
	for _, fs := range def.fields {
		in, ok := action.Input(fs.name)
		if !ok {
			return FormDescriptor{}, fmt.Errorf("form field %q is not an input of %s", fs.name, action.Name)
		}
		field := FormField{
			Type:     in.Type,
			Name:     in.Name,
			Label:    fs.label,
			Required: in.Required,
			Default:  fs.def,
		}
		if in.Validation != nil {
			field.Min = in.Validation.Min
			field.Max = in.Validation.Max
		}
		form.Parameters = append(form.Parameters, field)
	}
	return form, nil
}

// FormFor returns the form for the named action, or an error-only document
// when the action is unknown.
func FormFor(name string) FormDescriptor {
	e, ok := lookup(name)
	if !ok {
		return FormDescriptor{Error: fmt.Sprintf("Unknown action: %s", name)}
	}
	return e.form.clone()
}

func (f FormDescriptor) clone() FormDescriptor {
	out := f
	out.Parameters = make([]FormField, len(f.Parameters))
	for i, p := range f.Parameters {
		if p.Min != nil {
			v := *p.Min
			p.Min = &v
		}
		if p.Max != nil {
			v := *p.Max
			p.Max = &v
		}
		out.Parameters[i] = p
	}
	return out
}
