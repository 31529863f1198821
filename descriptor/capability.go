package descriptor

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// CapabilityKind tags the variant held by a Capability.
type CapabilityKind string

const (
	KindNetwork     CapabilityKind = "network"
	KindTransaction CapabilityKind = "transaction"
)

// NetworkCapability permits a set of operations against named networks.
type NetworkCapability struct {
	Networks   []string `json:"networks" yaml:"networks" jsonschema:"required"`
	Operations []string `json:"operations" yaml:"operations" jsonschema:"required"`
}

// TransactionCapability permits submitting transactions of the listed types,
// optionally bounded by a maximum fee.
type TransactionCapability struct {
	TransactionTypes []string `json:"transaction_types" yaml:"transaction_types" jsonschema:"required"`
	MaxFeeHbar       *float64 `json:"max_fee_hbar" yaml:"max_fee_hbar" jsonschema:"nullable"`
}

// Capability is a permission the host must grant before an action runs.
// Exactly one of Network or Transaction is set, as named by Kind.
type Capability struct {
	Kind        CapabilityKind
	Network     *NetworkCapability
	Transaction *TransactionCapability
}

// Network builds a network capability.
func Network(networks, operations []string) Capability {
	return Capability{
		Kind:    KindNetwork,
		Network: &NetworkCapability{Networks: networks, Operations: operations},
	}
}

// Transaction builds a transaction capability. maxFee may be nil.
func Transaction(types []string, maxFee *float64) Capability {
	return Capability{
		Kind:        KindTransaction,
		Transaction: &TransactionCapability{TransactionTypes: types, MaxFeeHbar: maxFee},
	}
}

// Value returns the variant payload.
func (c Capability) Value() any {
	switch {
	case c.Kind == KindNetwork && c.Network != nil:
		return c.Network
	case c.Kind == KindTransaction && c.Transaction != nil:
		return c.Transaction
	}
	return nil
}

// Clone returns a deep copy.
func (c Capability) Clone() Capability {
	out := Capability{Kind: c.Kind}
	if c.Network != nil {
		out.Network = &NetworkCapability{
			Networks:   append([]string{}, c.Network.Networks...),
			Operations: append([]string{}, c.Network.Operations...),
		}
	}
	if c.Transaction != nil {
		out.Transaction = &TransactionCapability{
			TransactionTypes: append([]string{}, c.Transaction.TransactionTypes...),
		}
		if c.Transaction.MaxFeeHbar != nil {
			fee := *c.Transaction.MaxFeeHbar
			out.Transaction.MaxFeeHbar = &fee
		}
	}
	return out
}

// String renders the capability for prompts and log lines.
func (c Capability) String() string {
	switch c.Kind {
	case KindNetwork:
		if c.Network != nil {
			return fmt.Sprintf("network %v ops=%v", c.Network.Networks, c.Network.Operations)
		}
	case KindTransaction:
		if c.Transaction != nil {
			if c.Transaction.MaxFeeHbar != nil {
				return fmt.Sprintf("transaction %v max_fee=%g", c.Transaction.TransactionTypes, *c.Transaction.MaxFeeHbar)
			}
			return fmt.Sprintf("transaction %v", c.Transaction.TransactionTypes)
		}
	}
	return string(c.Kind)
}

type capabilityWire struct {
	Type  CapabilityKind  `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the capability as {"type": kind, "value": {...}}.
func (c Capability) MarshalJSON() ([]byte, error) {
	v := c.Value()
	if v == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCapability, c.Kind)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(capabilityWire{Type: c.Kind, Value: raw})
}

// UnmarshalJSON decodes the tagged form written by MarshalJSON.
func (c *Capability) UnmarshalJSON(data []byte) error {
	var w capabilityWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case KindNetwork:
		var n NetworkCapability
		if err := json.Unmarshal(w.Value, &n); err != nil {
			return fmt.Errorf("decoding network capability: %w", err)
		}
		*c = Capability{Kind: KindNetwork, Network: &n}
	case KindTransaction:
		var t TransactionCapability
		if err := json.Unmarshal(w.Value, &t); err != nil {
			return fmt.Errorf("decoding transaction capability: %w", err)
		}
		*c = Capability{Kind: KindTransaction, Transaction: &t}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCapability, w.Type)
	}
	return nil
}

type capabilityYAML struct {
	Type  CapabilityKind `yaml:"type"`
	Value yaml.Node      `yaml:"value"`
}

// MarshalYAML mirrors the JSON layout.
func (c Capability) MarshalYAML() (interface{}, error) {
	v := c.Value()
	if v == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCapability, c.Kind)
	}
	return struct {
		Type  CapabilityKind `yaml:"type"`
		Value any            `yaml:"value"`
	}{Type: c.Kind, Value: v}, nil
}

// UnmarshalYAML decodes the tagged form written by MarshalYAML.
func (c *Capability) UnmarshalYAML(node *yaml.Node) error {
	var w capabilityYAML
	if err := node.Decode(&w); err != nil {
		return err
	}
	switch w.Type {
	case KindNetwork:
		var n NetworkCapability
		if err := w.Value.Decode(&n); err != nil {
			return fmt.Errorf("decoding network capability: %w", err)
		}
		*c = Capability{Kind: KindNetwork, Network: &n}
	case KindTransaction:
		var t TransactionCapability
		if err := w.Value.Decode(&t); err != nil {
			return fmt.Errorf("decoding transaction capability: %w", err)
		}
		*c = Capability{Kind: KindTransaction, Transaction: &t}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCapability, w.Type)
	}
	return nil
}
