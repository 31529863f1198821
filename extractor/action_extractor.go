package extractor

import (
	"fmt"

	"github.com/reglet-dev/reglet-demo-actions/capability"
	"github.com/reglet-dev/reglet-demo-actions/descriptor"
)

// ActionExtractor reports the grants needed to invoke one action of a module:
// the module-level capabilities plus the action's own.
type ActionExtractor struct {
	module descriptor.ModuleDescriptor
}

// NewActionExtractor creates an ActionExtractor over a copy of m.
func NewActionExtractor(m *descriptor.ModuleDescriptor) *ActionExtractor {
	return &ActionExtractor{module: *m.Clone()}
}

// Extract returns the required GrantSet for action.
func (e *ActionExtractor) Extract(action string) (*capability.GrantSet, error) {
	a, ok := e.module.Action(action)
	if !ok {
		return nil, fmt.Errorf("unknown action %q", action)
	}
	caps := append(append([]descriptor.Capability{}, e.module.Capabilities...), a.RequiredCapabilities...)
	return capability.FromCapabilities(caps), nil
}
