package capability

// CapabilityInfo contains metadata about a capability request.
type CapabilityInfo struct {
	PluginName string
	Action     string
	IsBroad    bool
}

// Request represents a single capability request for prompting constraints.
type Request struct {
	Rule        any
	Kind        string
	Description string
	IsBroad     bool
}

// Requirement represents a request for capabilities by a plugin.
type Requirement struct {
	Requested  *GrantSet
	PluginName string
}

// GatekeeperPort grants capabilities based on security policy.
type GatekeeperPort interface {
	GrantCapabilities(
		required *GrantSet,
		capabilityInfo map[string]CapabilityInfo,
		trustAll bool,
	) (*GrantSet, error)
}

// GrantStore persists and retrieves granted capabilities.
type GrantStore interface {
	Load() (*GrantSet, error)
	Save(grants *GrantSet) error
	ConfigPath() string
}

// Prompter handles interactive capability authorization.
type Prompter interface {
	IsInteractive() bool
	PromptForCapability(req Request) (granted bool, always bool, err error)
	FormatNonInteractiveError(missing *GrantSet) error
}
