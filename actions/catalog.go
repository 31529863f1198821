// Package actions implements the demo counter module: its descriptor, the
// action handlers and the input forms, all derived from one catalog so the
// three views of the dispatch set cannot drift apart.
package actions

import (
	"fmt"

	"github.com/reglet-dev/reglet-demo-actions/descriptor"
)

// Action names.
const (
	ActionIncrement     = "increment"
	ActionDecrement     = "decrement"
	ActionReset         = "reset"
	ActionToggleCounter = "toggleCounter"
	ActionToggleStats   = "toggleStats"
)

// Module metadata.
const (
	ModuleName       = "Demo Actions Module"
	ModuleVersion    = "1.0.0"
	HashlinksVersion = "0.1.0"
	ModuleCreator    = "HashGraph Online"
	ModulePurpose    = "Demo actions for counter and container blocks"
)

// Handler computes one action from its validated parameters.
type Handler func(p Params) ActionResult

type entry struct {
	desc    descriptor.ActionDescriptor
	handler Handler
	form    FormDescriptor
}

type catalogEntry struct {
	desc    descriptor.ActionDescriptor
	handler Handler
	form    formSpec
}

var (
	entries []entry
	byName  map[string]int
	module  *descriptor.ModuleDescriptor
)

func init() {
	if err := buildCatalog(definitions()); err != nil {
		panic(fmt.Sprintf("actions: invalid catalog: %v", err))
	}
}

func buildCatalog(defs []catalogEntry) error {
	built := make([]entry, 0, len(defs))
	index := make(map[string]int, len(defs))
	m := &descriptor.ModuleDescriptor{
		Name:             ModuleName,
		Version:          ModuleVersion,
		HashlinksVersion: HashlinksVersion,
		Creator:          ModuleCreator,
		Purpose:          ModulePurpose,
		Capabilities: []descriptor.Capability{
			descriptor.Network([]string{"mainnet", "testnet"}, []string{"query"}),
		},
		Plugins: []descriptor.PluginReference{},
	}

	for _, d := range defs {
		form, err := buildForm(d.form, d.desc)
		if err != nil {
			return err
		}
		index[d.desc.Name] = len(built)
		built = append(built, entry{desc: d.desc, handler: d.handler, form: form})
		m.Actions = append(m.Actions, d.desc)
	}

	if err := m.Validate(); err != nil {
		return err
	}

	entries, byName, module = built, index, m
	return nil
}

func lookup(name string) (entry, bool) {
	i, ok := byName[name]
	if !ok {
		return entry{}, false
	}
	return entries[i], true
}

// Descriptor returns the module descriptor. Every call returns an
// independent copy of the same constant document.
func Descriptor() *descriptor.ModuleDescriptor {
	return module.Clone()
}

// Names returns the dispatchable action names in declaration order.
func Names() []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.desc.Name
	}
	return names
}

func counterInputs(verb string) []descriptor.ParameterDescriptor {
	return []descriptor.ParameterDescriptor{
		{
			Name:        "amount",
			Type:        descriptor.ParamNumber,
			Description: fmt.Sprintf("Amount to %s by", verb),
			Validation:  descriptor.Range(1, 100),
		},
		{
			Name:        "count",
			Type:        descriptor.ParamNumber,
			Description: "Current counter value",
			Required:    true,
		},
	}
}

func countOutput(desc string) []descriptor.ParameterDescriptor {
	return []descriptor.ParameterDescriptor{
		{Name: "count", Type: descriptor.ParamNumber, Description: desc, Required: true},
	}
}

func flag(name, desc string) []descriptor.ParameterDescriptor {
	return []descriptor.ParameterDescriptor{
		{Name: name, Type: descriptor.ParamBoolean, Description: desc, Required: true},
	}
}

func definitions() []catalogEntry {
	return []catalogEntry{
		{
			desc: descriptor.ActionDescriptor{
				Name:                 ActionIncrement,
				Description:          "Increment the counter",
				Inputs:               counterInputs("increment"),
				Outputs:              countOutput("Updated counter value"),
				RequiredCapabilities: []descriptor.Capability{},
			},
			handler: increment,
			form: formSpec{
				title:       "Increment Counter",
				description: "Increase the counter value",
				label:       "Increment",
				fields:      []fieldSpec{{name: "amount", label: "Amount to increment", def: 1}},
			},
		},
		{
			desc: descriptor.ActionDescriptor{
				Name:                 ActionDecrement,
				Description:          "Decrement the counter",
				Inputs:               counterInputs("decrement"),
				Outputs:              countOutput("Updated counter value"),
				RequiredCapabilities: []descriptor.Capability{},
			},
			handler: decrement,
			form: formSpec{
				title:       "Decrement Counter",
				description: "Decrease the counter value",
				label:       "Decrement",
				fields:      []fieldSpec{{name: "amount", label: "Amount to decrement", def: 1}},
			},
		},
		{
			desc: descriptor.ActionDescriptor{
				Name:                 ActionReset,
				Description:          "Reset the counter to zero",
				Inputs:               []descriptor.ParameterDescriptor{},
				Outputs:              countOutput("Reset counter value (0)"),
				RequiredCapabilities: []descriptor.Capability{},
			},
			handler: reset,
			form: formSpec{
				title:       "Reset Counter",
				description: "Reset the counter to zero",
				label:       "Reset",
			},
		},
		{
			desc: descriptor.ActionDescriptor{
				Name:                 ActionToggleCounter,
				Description:          "Toggle visibility of counter block",
				Inputs:               flag("showCounter", "Current visibility state of counter"),
				Outputs:              flag("showCounter", "Updated visibility state"),
				RequiredCapabilities: []descriptor.Capability{},
			},
			handler: toggle("showCounter", "Counter"),
			form: formSpec{
				title:       "Toggle Counter",
				description: "Toggle visibility of the counter block",
				label:       "Toggle Counter",
			},
		},
		{
			desc: descriptor.ActionDescriptor{
				Name:                 ActionToggleStats,
				Description:          "Toggle visibility of stats block",
				Inputs:               flag("showStats", "Current visibility state of stats"),
				Outputs:              flag("showStats", "Updated visibility state"),
				RequiredCapabilities: []descriptor.Capability{},
			},
			handler: toggle("showStats", "Stats"),
			form: formSpec{
				title:       "Toggle Stats",
				description: "Toggle visibility of the stats block",
				label:       "Toggle Stats",
			},
		},
	}
}
