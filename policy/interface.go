package policy

import "github.com/reglet-dev/reglet-demo-actions/capability"

// NetworkRequest asks to perform an operation against a named network.
type NetworkRequest struct {
	Network   string
	Operation string
}

// TransactionRequest asks to submit a transaction of a type with a fee.
type TransactionRequest struct {
	Type    string
	FeeHbar float64
}

// Policy enforces capability grants against runtime requests.
type Policy interface {
	CheckNetwork(req NetworkRequest, grants *capability.GrantSet) bool
	CheckTransaction(req TransactionRequest, grants *capability.GrantSet) bool

	// Evaluate methods return the decision without side effects (like logging denials).
	EvaluateNetwork(req NetworkRequest, grants *capability.GrantSet) bool
	EvaluateTransaction(req TransactionRequest, grants *capability.GrantSet) bool
}

// DenialHandler is called when a policy check denies a request.
type DenialHandler interface {
	// OnDenial is called when a capability request is denied.
	OnDenial(kind string, request any, reason string)
}
