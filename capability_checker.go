package demoactions

import (
	"context"
	"errors"
	"fmt"

	"github.com/reglet-dev/reglet-demo-actions/actions"
	"github.com/reglet-dev/reglet-demo-actions/capability"
	"github.com/reglet-dev/reglet-demo-actions/policy"
)

// ErrCapabilityDenied is returned when a request falls outside a plugin's grants.
var ErrCapabilityDenied = errors.New("capability denied")

// QueryOperation is the network operation checked for every POST.
const QueryOperation = "query"

// CapabilityChecker checks if operations are allowed based on granted capabilities.
type CapabilityChecker struct {
	policy              policy.Policy
	grantedCapabilities map[string]*capability.GrantSet
	denialHandler       DenialHandler
}

// DenialHandler is called when a capability is denied.
// It allows custom logging or auditing.
type DenialHandler func(ctx context.Context, pluginName, capabilityKind, pattern, message string)

// CapabilityCheckerOption configures a CapabilityChecker.
type CapabilityCheckerOption func(*capabilityCheckerConfig)

type capabilityCheckerConfig struct {
	policy        policy.Policy
	denialHandler DenialHandler
}

// WithCapabilityPolicy replaces the default grant policy.
func WithCapabilityPolicy(p policy.Policy) CapabilityCheckerOption {
	return func(c *capabilityCheckerConfig) {
		c.policy = p
	}
}

// WithCapabilityDenialHandler sets the handler for denied capabilities.
func WithCapabilityDenialHandler(handler DenialHandler) CapabilityCheckerOption {
	return func(c *capabilityCheckerConfig) {
		c.denialHandler = handler
	}
}

// NewCapabilityChecker creates a new capability checker with the given per-plugin grants.
func NewCapabilityChecker(caps map[string]*capability.GrantSet, opts ...CapabilityCheckerOption) *CapabilityChecker {
	var cfg capabilityCheckerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.policy == nil {
		cfg.policy = policy.NewPolicy(policy.WithDenialHandler(&policy.NopDenialHandler{}))
	}

	return &CapabilityChecker{
		policy:              cfg.policy,
		grantedCapabilities: caps,
		denialHandler:       cfg.denialHandler,
	}
}

// CheckNetwork checks that plugin may perform operation on network.
func (c *CapabilityChecker) CheckNetwork(ctx context.Context, pluginName, network, operation string) error {
	pattern := network + ":" + operation
	grants, ok := c.grantedCapabilities[pluginName]
	if !ok || grants == nil {
		return c.handleDeny(ctx, pluginName, "network", pattern, "no capabilities granted")
	}

	req := policy.NetworkRequest{Network: network, Operation: operation}

	// 1. Silent Check
	if c.policy.EvaluateNetwork(req, grants) {
		return nil
	}

	// 2. Loud Check
	c.policy.CheckNetwork(req, grants)
	return c.handleDeny(ctx, pluginName, "network", pattern, "network capability denied")
}

// CheckTransaction checks that plugin may submit a transaction of txType paying feeHbar.
func (c *CapabilityChecker) CheckTransaction(ctx context.Context, pluginName, txType string, feeHbar float64) error {
	pattern := fmt.Sprintf("%s@%g", txType, feeHbar)
	grants, ok := c.grantedCapabilities[pluginName]
	if !ok || grants == nil {
		return c.handleDeny(ctx, pluginName, "transaction", pattern, "no capabilities granted")
	}

	if c.policy.CheckTransaction(policy.TransactionRequest{Type: txType, FeeHbar: feeHbar}, grants) {
		return nil
	}

	return c.handleDeny(ctx, pluginName, "transaction", pattern, "transaction capability denied")
}

func (c *CapabilityChecker) handleDeny(ctx context.Context, pluginName, kind, pattern, message string) error {
	fullMsg := fmt.Sprintf("%s: %s", message, pattern)
	if c.denialHandler != nil {
		c.denialHandler(ctx, pluginName, kind, pattern, fullMsg)
	}
	return fmt.Errorf("%w: %s", ErrCapabilityDenied, fullMsg)
}

// CapabilityMiddleware returns a middleware that requires a network grant
// for the call's network before a POST runs. Calls without a network pass
// through unchecked. A denial is reported in the action result.
func CapabilityMiddleware(checker *CapabilityChecker, pluginName string) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, call Call) (string, error) {
			if call.Operation != OpPost || call.Network == "" {
				return next(ctx, call)
			}
			plugin := pluginName
			if name, ok := CapabilityPluginNameFromContext(ctx); ok {
				plugin = name
			}
			if err := checker.CheckNetwork(ctx, plugin, call.Network, QueryOperation); err != nil {
				return encode(actions.Fail("%v", err))
			}
			return next(ctx, call)
		}
	}
}

// Context helpers for plugin name propagation
type capabilityContextKey struct {
	name string
}

var pluginNameContextKey = &capabilityContextKey{name: "plugin_name"}

// WithCapabilityPluginName adds the plugin name to the context.
func WithCapabilityPluginName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, pluginNameContextKey, name)
}

// CapabilityPluginNameFromContext retrieves the plugin name from the context.
func CapabilityPluginNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(pluginNameContextKey).(string)
	return name, ok
}
