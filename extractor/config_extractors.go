// Package extractor derives the capabilities an invocation needs from its
// configuration, from a module descriptor, or from a single action.
package extractor

import (
	"encoding/json"
	"strconv"

	"github.com/reglet-dev/reglet-demo-actions/abi"
	"github.com/reglet-dev/reglet-demo-actions/capability"
)

// DefaultOperation is assumed when the configuration names no operation.
const DefaultOperation = "query"

// NetworkExtractor extracts required network permissions from the
// "network" (or "networks") and "operation" keys.
type NetworkExtractor struct{}

func (e *NetworkExtractor) Extract(config map[string]any) *capability.GrantSet {
	var networks []string
	if n, ok := config["network"].(string); ok && n != "" {
		networks = append(networks, n)
	}
	networks = append(networks, stringList(config["networks"])...)
	if len(networks) == 0 {
		return nil
	}

	op := DefaultOperation
	if o, ok := config["operation"].(string); ok && o != "" {
		op = o
	}

	return &capability.GrantSet{
		Network: &capability.NetworkGrant{
			Networks:   networks,
			Operations: []string{op},
		},
	}
}

// TransactionExtractor extracts required transaction permissions from the
// "transaction_type" and "max_fee_hbar" keys.
type TransactionExtractor struct{}

func (e *TransactionExtractor) Extract(config map[string]any) *capability.GrantSet {
	txType, ok := config["transaction_type"].(string)
	if !ok || txType == "" {
		return nil
	}
	grant := &capability.TransactionGrant{Types: []string{txType}}
	if fee, ok := number(config["max_fee_hbar"]); ok {
		grant.MaxFeeHbar = &fee
	}
	return &capability.GrantSet{Transaction: grant}
}

// CompositeExtractor merges the results of several extractors.
type CompositeExtractor []capability.Extractor

func (c CompositeExtractor) Extract(config map[string]any) *capability.GrantSet {
	var out *capability.GrantSet
	for _, e := range c {
		gs := e.Extract(config)
		if gs == nil {
			continue
		}
		if out == nil {
			out = &capability.GrantSet{}
		}
		out.Merge(gs)
	}
	return out
}

func stringList(v any) []string {
	var out []string
	switch vs := v.(type) {
	case []string:
		for _, s := range vs {
			if s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range vs {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// Ensure extractors implement the interface.
var (
	_ capability.Extractor = (*NetworkExtractor)(nil)
	_ capability.Extractor = (*TransactionExtractor)(nil)
	_ capability.Extractor = CompositeExtractor(nil)
)

// RegisterDefaultExtractors registers the built-in config-based extractors.
func RegisterDefaultExtractors(registry *capability.Registry) {
	netExtractor := &NetworkExtractor{}
	registry.Register("network", netExtractor)
	registry.Register("transaction", &TransactionExtractor{})
	registry.Register(abi.DefaultPluginName, CompositeExtractor{netExtractor, &TransactionExtractor{}})
}
