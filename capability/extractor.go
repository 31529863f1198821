// Package capability provides capability management for the demo actions
// host: grant sets, risk analysis, extractor registration and the ports
// used by the gatekeeper.
package capability

import (
	"sync"
)

// Extractor analyzes invocation configuration to determine required capabilities.
type Extractor interface {
	// Extract analyzes the configuration and returns a GrantSet of required capabilities.
	Extract(config map[string]any) *GrantSet
}

// Registry manages the registration and retrieval of capability extractors.
type Registry struct {
	extractors map[string]Extractor
	mu         sync.RWMutex
}

// NewRegistry creates a new, empty capability registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string]Extractor),
	}
}

// Register adds a capability extractor for a specific plugin.
func (r *Registry) Register(pluginName string, extractor Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[pluginName] = extractor
}

// Get retrieves the extractor for a given plugin.
// Returns nil and false if no extractor is registered.
func (r *Registry) Get(pluginName string) (Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	extractor, ok := r.extractors[pluginName]
	return extractor, ok
}
