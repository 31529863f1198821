// Package gatekeeper handles capability granting: loads stored grants,
// diffs against required, prompts for missing, persists decisions.
package gatekeeper

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/reglet-dev/reglet-demo-actions/capability"
	"github.com/reglet-dev/reglet-demo-actions/capability/grantstore"
)

// SecurityLevel controls the gatekeeper's prompting behavior.
type SecurityLevel string

const (
	SecurityStrict     SecurityLevel = "strict"
	SecurityStandard   SecurityLevel = "standard"
	SecurityPermissive SecurityLevel = "permissive"
)

// ParseSecurityLevel accepts strict, standard or permissive.
func ParseSecurityLevel(s string) (SecurityLevel, error) {
	switch l := SecurityLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case SecurityStrict, SecurityStandard, SecurityPermissive:
		return l, nil
	}
	return "", fmt.Errorf("unknown security level %q (want strict, standard or permissive)", s)
}

var _ capability.GatekeeperPort = (*Gatekeeper)(nil)

// Gatekeeper handles capability granting: loads stored grants,
// diffs against required, prompts for missing, persists decisions.
type Gatekeeper struct {
	store         capability.GrantStore
	prompter      capability.Prompter
	logger        *slog.Logger
	securityLevel SecurityLevel
}

// Option configures a Gatekeeper.
type Option func(*Gatekeeper)

// WithStore sets the grant store.
func WithStore(s capability.GrantStore) Option {
	return func(g *Gatekeeper) { g.store = s }
}

// WithPrompter sets the prompter.
func WithPrompter(p capability.Prompter) Option {
	return func(g *Gatekeeper) { g.prompter = p }
}

// WithSecurityLevel sets the security policy level.
func WithSecurityLevel(level SecurityLevel) Option {
	return func(g *Gatekeeper) { g.securityLevel = level }
}

// WithLogger sets the logger for policy decisions.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gatekeeper) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGatekeeper creates a capability gatekeeper with pluggable store and prompter.
func NewGatekeeper(opts ...Option) *Gatekeeper {
	g := &Gatekeeper{
		securityLevel: SecurityStandard,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.store == nil {
		g.store = grantstore.NewFileStore()
	}
	if g.prompter == nil {
		g.prompter = NewTerminalPrompter()
	}
	return g
}

// GrantCapabilities determines which capabilities to grant based on security policy,
// user input, and saved grants.
func (g *Gatekeeper) GrantCapabilities(
	required *capability.GrantSet,
	capabilityInfo map[string]capability.CapabilityInfo,
	trustAll bool,
) (*capability.GrantSet, error) {
	if required == nil || required.IsEmpty() {
		return &capability.GrantSet{}, nil
	}

	if trustAll {
		g.logger.Warn("auto-granting all requested capabilities (--trust-plugin enabled)")
		return required.Clone(), nil
	}

	existingGrants, err := g.store.Load()
	if err != nil {
		g.logger.Warn("ignoring unreadable grant store", "path", g.store.ConfigPath(), "error", err)
		existingGrants = &capability.GrantSet{}
	}

	missing := required.Difference(existingGrants)
	if missing.IsEmpty() {
		return existingGrants, nil
	}
	missing.Deduplicate()

	// Permissive mode never prompts, so it works without a terminal.
	if g.securityLevel != SecurityPermissive && !g.prompter.IsInteractive() {
		return nil, g.prompter.FormatNonInteractiveError(missing)
	}

	newGrants := existingGrants.Clone()
	shouldSave := false

	for _, req := range requests(missing, capabilityInfo) {
		granted, always, err := g.evaluateWithSecurityLevel(req)
		if err != nil {
			return nil, err
		}
		if !granted {
			return nil, fmt.Errorf("capability denied by user: %s", req.Description)
		}
		newGrants.Merge(req.Rule.(*capability.GrantSet))
		if always {
			shouldSave = true
		}
	}

	if shouldSave {
		if err := g.store.Save(newGrants); err != nil {
			g.logger.Warn("failed to save grants", "path", g.store.ConfigPath(), "error", err)
		} else {
			g.logger.Info("permissions saved", "path", g.store.ConfigPath())
		}
	}

	return newGrants, nil
}

// requests splits missing grants into one prompt per network and one for
// transactions. Each Request.Rule is the *capability.GrantSet it grants.
func requests(missing *capability.GrantSet, info map[string]capability.CapabilityInfo) []capability.Request {
	var out []capability.Request
	if missing.Network != nil {
		for _, n := range missing.Network.Networks {
			gs := &capability.GrantSet{Network: &capability.NetworkGrant{
				Networks:   []string{n},
				Operations: append([]string{}, missing.Network.Operations...),
			}}
			out = append(out, capability.Request{
				Kind:        "network",
				Rule:        gs,
				Description: fmt.Sprintf("network %s %v%s", n, missing.Network.Operations, describeInfo(info)),
				IsBroad:     capability.IsPattern(n) || anyPattern(missing.Network.Operations),
			})
		}
	}
	if missing.Transaction != nil {
		tx := missing.Transaction
		desc := fmt.Sprintf("transaction %v", tx.Types)
		if tx.MaxFeeHbar != nil {
			desc += fmt.Sprintf(" max fee %g hbar", *tx.MaxFeeHbar)
		} else {
			desc += " without fee limit"
		}
		out = append(out, capability.Request{
			Kind:        "transaction",
			Rule:        &capability.GrantSet{Transaction: &capability.TransactionGrant{Types: tx.Types, MaxFeeHbar: tx.MaxFeeHbar}},
			Description: desc + describeInfo(info),
			IsBroad:     tx.MaxFeeHbar == nil || anyPattern(tx.Types),
		})
	}
	return out
}

func describeInfo(info map[string]capability.CapabilityInfo) string {
	var names []string
	for _, ci := range info {
		if ci.Action != "" {
			names = append(names, ci.PluginName+"/"+ci.Action)
		} else if ci.PluginName != "" {
			names = append(names, ci.PluginName)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return fmt.Sprintf(" (requested by %s)", strings.Join(names, ", "))
}

func anyPattern(ss []string) bool {
	for _, s := range ss {
		if capability.IsPattern(s) {
			return true
		}
	}
	return false
}

// evaluateWithSecurityLevel applies security level policy and prompts if needed.
func (g *Gatekeeper) evaluateWithSecurityLevel(req capability.Request) (bool, bool, error) {
	riskDesc := ""
	if gs, ok := req.Rule.(*capability.GrantSet); ok {
		if factors := capability.AnalyzeRisk(gs).RiskFactors; len(factors) > 0 {
			riskDesc = factors[0].Description
		}
	}

	if req.IsBroad {
		switch g.securityLevel {
		case SecurityStrict:
			if riskDesc == "" {
				riskDesc = "broad access beyond what may be necessary"
			}
			g.logger.Error("broad capability denied by security policy",
				"level", "strict",
				"capability", req.Description,
				"risk", riskDesc)
			return false, false, fmt.Errorf("broad capability denied by strict security policy: %s", req.Description)

		case SecurityPermissive:
			g.logger.Warn("auto-granting broad capability (permissive mode)",
				"capability", req.Description)
			return true, false, nil
		}
	}

	if g.securityLevel == SecurityPermissive {
		return true, false, nil
	}

	return g.prompter.PromptForCapability(req)
}
