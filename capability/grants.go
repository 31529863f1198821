package capability

import (
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/reglet-dev/reglet-demo-actions/descriptor"
)

// NetworkGrant allows a set of operations against networks. Both lists hold
// glob patterns.
type NetworkGrant struct {
	Networks   []string `json:"networks" yaml:"networks"`
	Operations []string `json:"operations" yaml:"operations"`
}

// TransactionGrant allows submitting transactions of the listed types.
// A nil MaxFeeHbar means no fee limit.
type TransactionGrant struct {
	Types      []string `json:"types" yaml:"types"`
	MaxFeeHbar *float64 `json:"max_fee_hbar,omitempty" yaml:"max_fee_hbar,omitempty"`
}

// GrantSet is the set of capabilities granted to, or required by, a plugin.
type GrantSet struct {
	Network     *NetworkGrant     `json:"network,omitempty" yaml:"network,omitempty"`
	Transaction *TransactionGrant `json:"transaction,omitempty" yaml:"transaction,omitempty"`
}

// FromCapabilities folds descriptor capabilities into a single GrantSet.
func FromCapabilities(caps []descriptor.Capability) *GrantSet {
	gs := &GrantSet{}
	for _, c := range caps {
		switch {
		case c.Network != nil:
			gs.Merge(&GrantSet{Network: &NetworkGrant{
				Networks:   slices.Clone(c.Network.Networks),
				Operations: slices.Clone(c.Network.Operations),
			}})
		case c.Transaction != nil:
			gs.Merge(&GrantSet{Transaction: &TransactionGrant{
				Types:      slices.Clone(c.Transaction.TransactionTypes),
				MaxFeeHbar: cloneFee(c.Transaction.MaxFeeHbar),
			}})
		}
	}
	gs.Deduplicate()
	return gs
}

// IsEmpty reports whether the set grants nothing.
func (g *GrantSet) IsEmpty() bool {
	if g == nil {
		return true
	}
	netEmpty := g.Network == nil || (len(g.Network.Networks) == 0 && len(g.Network.Operations) == 0)
	txEmpty := g.Transaction == nil || len(g.Transaction.Types) == 0
	return netEmpty && txEmpty
}

// Clone returns a deep copy.
func (g *GrantSet) Clone() *GrantSet {
	if g == nil {
		return &GrantSet{}
	}
	out := &GrantSet{}
	if g.Network != nil {
		out.Network = &NetworkGrant{
			Networks:   slices.Clone(g.Network.Networks),
			Operations: slices.Clone(g.Network.Operations),
		}
	}
	if g.Transaction != nil {
		out.Transaction = &TransactionGrant{
			Types:      slices.Clone(g.Transaction.Types),
			MaxFeeHbar: cloneFee(g.Transaction.MaxFeeHbar),
		}
	}
	return out
}

// Merge adds every grant in other to g. When both sides limit transaction
// fees the larger limit wins; a missing limit on either side removes it.
func (g *GrantSet) Merge(other *GrantSet) {
	if other == nil {
		return
	}
	if other.Network != nil {
		if g.Network == nil {
			g.Network = &NetworkGrant{}
		}
		g.Network.Networks = append(g.Network.Networks, other.Network.Networks...)
		g.Network.Operations = append(g.Network.Operations, other.Network.Operations...)
	}
	if other.Transaction != nil {
		if g.Transaction == nil {
			g.Transaction = &TransactionGrant{
				Types:      slices.Clone(other.Transaction.Types),
				MaxFeeHbar: cloneFee(other.Transaction.MaxFeeHbar),
			}
		} else {
			g.Transaction.Types = append(g.Transaction.Types, other.Transaction.Types...)
			g.Transaction.MaxFeeHbar = widerFee(g.Transaction.MaxFeeHbar, other.Transaction.MaxFeeHbar)
		}
	}
	g.Deduplicate()
}

// Difference returns the part of g that granted does not cover.
func (g *GrantSet) Difference(granted *GrantSet) *GrantSet {
	out := &GrantSet{}
	if g == nil {
		return out
	}
	if granted == nil {
		granted = &GrantSet{}
	}

	if g.Network != nil {
		var have NetworkGrant
		if granted.Network != nil {
			have = *granted.Network
		}
		nets := uncovered(g.Network.Networks, have.Networks)
		ops := uncovered(g.Network.Operations, have.Operations)
		if len(nets) > 0 || len(ops) > 0 {
			// An uncovered operation is missing on every required network.
			if len(nets) == 0 {
				nets = slices.Clone(g.Network.Networks)
			}
			if len(ops) == 0 {
				ops = slices.Clone(g.Network.Operations)
			}
			out.Network = &NetworkGrant{Networks: nets, Operations: ops}
		}
	}

	if g.Transaction != nil {
		var have TransactionGrant
		if granted.Transaction != nil {
			have = *granted.Transaction
		}
		types := uncovered(g.Transaction.Types, have.Types)
		feeShort := granted.Transaction == nil || !feeCovers(have.MaxFeeHbar, g.Transaction.MaxFeeHbar)
		if len(types) > 0 || feeShort {
			if len(types) == 0 {
				types = slices.Clone(g.Transaction.Types)
			}
			out.Transaction = &TransactionGrant{Types: types, MaxFeeHbar: cloneFee(g.Transaction.MaxFeeHbar)}
		}
	}
	return out
}

// Deduplicate sorts every list and removes duplicate entries.
func (g *GrantSet) Deduplicate() {
	if g == nil {
		return
	}
	if g.Network != nil {
		g.Network.Networks = dedupe(g.Network.Networks)
		g.Network.Operations = dedupe(g.Network.Operations)
	}
	if g.Transaction != nil {
		g.Transaction.Types = dedupe(g.Transaction.Types)
	}
}

// Covers reports whether any pattern in patterns matches name.
func Covers(patterns []string, name string) bool {
	for _, p := range patterns {
		if p == name {
			return true
		}
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

// IsPattern reports whether s contains glob metacharacters.
func IsPattern(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

func uncovered(required, granted []string) []string {
	var out []string
	for _, r := range required {
		if !Covers(granted, r) {
			out = append(out, r)
		}
	}
	return out
}

// feeCovers reports whether a grant limit admits a required limit.
func feeCovers(granted, required *float64) bool {
	if granted == nil {
		return true
	}
	if required == nil {
		return false
	}
	return *required <= *granted
}

func widerFee(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	m := max(*a, *b)
	return &m
}

func cloneFee(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func dedupe(in []string) []string {
	if in == nil {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}
