// Package descriptor contains the static metadata model a plugin module
// publishes to its host: the module itself, its actions, their parameters
// and the capabilities the host must grant before invoking them.
package descriptor

// ParamType is the declared type tag of a parameter.
type ParamType string

const (
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
)

// Valid reports whether t is one of the supported type tags.
func (t ParamType) Valid() bool {
	return t == ParamNumber || t == ParamBoolean
}

// ModuleDescriptor is the document returned by a module's INFO export.
// It is built once and never mutated afterwards.
type ModuleDescriptor struct {
	Name             string             `json:"name" yaml:"name"`
	Version          string             `json:"version" yaml:"version"`
	HashlinksVersion string             `json:"hashlinks_version" yaml:"hashlinks_version"`
	Creator          string             `json:"creator" yaml:"creator"`
	Purpose          string             `json:"purpose" yaml:"purpose"`
	Actions          []ActionDescriptor `json:"actions" yaml:"actions"`
	Capabilities     []Capability       `json:"capabilities" yaml:"capabilities"`
	Plugins          []PluginReference  `json:"plugins" yaml:"plugins"`
}

// ActionDescriptor declares one named action. The name is its identity
// within a module.
type ActionDescriptor struct {
	Name                 string                `json:"name" yaml:"name"`
	Description          string                `json:"description" yaml:"description"`
	Inputs               []ParameterDescriptor `json:"inputs" yaml:"inputs"`
	Outputs              []ParameterDescriptor `json:"outputs" yaml:"outputs"`
	RequiredCapabilities []Capability          `json:"required_capabilities" yaml:"required_capabilities"`
}

// ParameterDescriptor declares a single input or output of an action.
type ParameterDescriptor struct {
	Name        string          `json:"name" yaml:"name"`
	Type        ParamType       `json:"param_type" yaml:"param_type"`
	Description string          `json:"description" yaml:"description"`
	Required    bool            `json:"required" yaml:"required"`
	Validation  *ValidationRule `json:"validation" yaml:"validation"`
}

// ValidationRule bounds a numeric parameter. Either end may be open.
type ValidationRule struct {
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Range is shorthand for a closed [lo, hi] rule.
func Range(lo, hi float64) *ValidationRule {
	return &ValidationRule{Min: &lo, Max: &hi}
}

// PluginReference names another plugin this module depends on.
type PluginReference struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version" yaml:"version"`
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// Action looks up an action by name.
func (m *ModuleDescriptor) Action(name string) (ActionDescriptor, bool) {
	for _, a := range m.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return ActionDescriptor{}, false
}

// ActionNames returns the declared action names in declaration order.
func (m *ModuleDescriptor) ActionNames() []string {
	names := make([]string, 0, len(m.Actions))
	for _, a := range m.Actions {
		names = append(names, a.Name)
	}
	return names
}

// Input looks up an input parameter by name.
func (a ActionDescriptor) Input(name string) (ParameterDescriptor, bool) {
	for _, p := range a.Inputs {
		if p.Name == name {
			return p, true
		}
	}
	return ParameterDescriptor{}, false
}

// Clone returns a deep copy of the descriptor.
func (m *ModuleDescriptor) Clone() *ModuleDescriptor {
	out := *m
	out.Actions = make([]ActionDescriptor, len(m.Actions))
	for i, a := range m.Actions {
		out.Actions[i] = a.clone()
	}
	out.Capabilities = cloneCapabilities(m.Capabilities)
	out.Plugins = append([]PluginReference{}, m.Plugins...)
	return &out
}

func (a ActionDescriptor) clone() ActionDescriptor {
	a.Inputs = cloneParams(a.Inputs)
	a.Outputs = cloneParams(a.Outputs)
	a.RequiredCapabilities = cloneCapabilities(a.RequiredCapabilities)
	return a
}

func cloneParams(in []ParameterDescriptor) []ParameterDescriptor {
	out := make([]ParameterDescriptor, len(in))
	for i, p := range in {
		if p.Validation != nil {
			p.Validation = p.Validation.clone()
		}
		out[i] = p
	}
	return out
}

func (r *ValidationRule) clone() *ValidationRule {
	out := &ValidationRule{}
	if r.Min != nil {
		v := *r.Min
		out.Min = &v
	}
	if r.Max != nil {
		v := *r.Max
		out.Max = &v
	}
	return out
}

func cloneCapabilities(in []Capability) []Capability {
	out := make([]Capability, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
