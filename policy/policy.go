// Package policy decides whether network and transaction requests fall
// within a plugin's granted capabilities.
package policy

import (
	"fmt"

	"github.com/reglet-dev/reglet-demo-actions/capability"
)

var _ Policy = (*GrantPolicy)(nil)

// GrantPolicy matches requests against a GrantSet. Network names, operations
// and transaction types in a grant are glob patterns.
type GrantPolicy struct {
	denials DenialHandler
}

// Option configures a GrantPolicy.
type Option func(*GrantPolicy)

// WithDenialHandler sets the handler notified by the Check methods.
func WithDenialHandler(h DenialHandler) Option {
	return func(p *GrantPolicy) {
		if h != nil {
			p.denials = h
		}
	}
}

// NewPolicy creates a GrantPolicy. Denials go to stderr unless a handler is set.
func NewPolicy(opts ...Option) *GrantPolicy {
	p := &GrantPolicy{denials: &StderrDenialHandler{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckNetwork evaluates req and reports a denial.
func (p *GrantPolicy) CheckNetwork(req NetworkRequest, grants *capability.GrantSet) bool {
	if ok, reason := p.network(req, grants); !ok {
		p.denials.OnDenial("network", req, reason)
		return false
	}
	return true
}

// EvaluateNetwork evaluates req silently.
func (p *GrantPolicy) EvaluateNetwork(req NetworkRequest, grants *capability.GrantSet) bool {
	ok, _ := p.network(req, grants)
	return ok
}

// CheckTransaction evaluates req and reports a denial.
func (p *GrantPolicy) CheckTransaction(req TransactionRequest, grants *capability.GrantSet) bool {
	if ok, reason := p.transaction(req, grants); !ok {
		p.denials.OnDenial("transaction", req, reason)
		return false
	}
	return true
}

// EvaluateTransaction evaluates req silently.
func (p *GrantPolicy) EvaluateTransaction(req TransactionRequest, grants *capability.GrantSet) bool {
	ok, _ := p.transaction(req, grants)
	return ok
}

func (p *GrantPolicy) network(req NetworkRequest, grants *capability.GrantSet) (bool, string) {
	if grants == nil || grants.Network == nil {
		return false, "no network capability granted"
	}
	if !capability.Covers(grants.Network.Networks, req.Network) {
		return false, fmt.Sprintf("network %q not granted", req.Network)
	}
	if !capability.Covers(grants.Network.Operations, req.Operation) {
		return false, fmt.Sprintf("operation %q not granted on %q", req.Operation, req.Network)
	}
	return true, ""
}

func (p *GrantPolicy) transaction(req TransactionRequest, grants *capability.GrantSet) (bool, string) {
	if grants == nil || grants.Transaction == nil {
		return false, "no transaction capability granted"
	}
	if !capability.Covers(grants.Transaction.Types, req.Type) {
		return false, fmt.Sprintf("transaction type %q not granted", req.Type)
	}
	if limit := grants.Transaction.MaxFeeHbar; limit != nil && req.FeeHbar > *limit {
		return false, fmt.Sprintf("fee %g hbar exceeds limit %g", req.FeeHbar, *limit)
	}
	return true, ""
}
