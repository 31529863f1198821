package descriptor

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Validate checks the structural invariants of the descriptor and reports
// every violation found, joined into one error.
func (m *ModuleDescriptor) Validate() error {
	var errs []error
	fail := func(path, format string, args ...any) {
		errs = append(errs, &InvariantError{Path: path, Reason: fmt.Sprintf(format, args...)})
	}

	if m.Name == "" {
		fail("name", "must not be empty")
	}
	if _, err := semver.NewVersion(m.Version); err != nil {
		fail("version", "not a semantic version: %q", m.Version)
	}
	if m.HashlinksVersion != "" {
		if _, err := semver.NewVersion(m.HashlinksVersion); err != nil {
			fail("hashlinks_version", "not a semantic version: %q", m.HashlinksVersion)
		}
	}

	for i, c := range m.Capabilities {
		validateCapability(fmt.Sprintf("capabilities[%d]", i), c, fail)
	}

	seen := make(map[string]bool, len(m.Actions))
	for _, a := range m.Actions {
		path := fmt.Sprintf("actions[%s]", a.Name)
		if a.Name == "" {
			fail("actions", "action name must not be empty")
			continue
		}
		if seen[a.Name] {
			fail(path, "duplicate action name")
		}
		seen[a.Name] = true

		validateParams(path+".inputs", a.Inputs, fail)
		validateParams(path+".outputs", a.Outputs, fail)
		for i, c := range a.RequiredCapabilities {
			validateCapability(fmt.Sprintf("%s.required_capabilities[%d]", path, i), c, fail)
		}
	}

	for i, p := range m.Plugins {
		if p.Name == "" {
			fail(fmt.Sprintf("plugins[%d]", i), "plugin name must not be empty")
		}
	}

	return errors.Join(errs...)
}

func validateParams(path string, params []ParameterDescriptor, fail func(string, string, ...any)) {
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		ppath := fmt.Sprintf("%s[%s]", path, p.Name)
		if p.Name == "" {
			fail(path, "parameter name must not be empty")
			continue
		}
		if seen[p.Name] {
			fail(ppath, "duplicate parameter name")
		}
		seen[p.Name] = true

		if !p.Type.Valid() {
			fail(ppath, "unsupported parameter type %q", p.Type)
		}
		if p.Validation == nil {
			continue
		}
		if p.Type == ParamBoolean {
			fail(ppath, "boolean parameters cannot carry a validation rule")
			continue
		}
		if p.Validation.Min != nil && p.Validation.Max != nil && *p.Validation.Min > *p.Validation.Max {
			fail(ppath, "validation min %g exceeds max %g", *p.Validation.Min, *p.Validation.Max)
		}
	}
}

func validateCapability(path string, c Capability, fail func(string, string, ...any)) {
	switch c.Kind {
	case KindNetwork:
		if c.Network == nil {
			fail(path, "network capability without value")
			return
		}
		if len(c.Network.Networks) == 0 {
			fail(path, "network capability must name at least one network")
		}
	case KindTransaction:
		if c.Transaction == nil {
			fail(path, "transaction capability without value")
			return
		}
		if len(c.Transaction.TransactionTypes) == 0 {
			fail(path, "transaction capability must name at least one transaction type")
		}
		if c.Transaction.MaxFeeHbar != nil && *c.Transaction.MaxFeeHbar < 0 {
			fail(path, "max_fee_hbar must not be negative")
		}
	default:
		fail(path, "unknown capability type %q", c.Kind)
	}
}

// CompatibleWith reports whether the descriptor's hashlinks version satisfies
// the given semver constraint (e.g. ">= 0.1.0, < 1.0.0").
func (m *ModuleDescriptor) CompatibleWith(constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(m.HashlinksVersion)
	if err != nil {
		return false, fmt.Errorf("invalid hashlinks version %q: %w", m.HashlinksVersion, err)
	}
	return c.Check(v), nil
}
