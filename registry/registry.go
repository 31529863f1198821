// Package registry manages the JSON schemas used to validate capability
// values and action parameter documents.
package registry

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/reglet-dev/reglet-demo-actions/descriptor"
)

// Registry implements CapabilityRegistry using in-memory storage.
type Registry struct {
	schemas    map[string]string
	mu         sync.RWMutex
	strictMode bool
	reflector  *jsonschema.Reflector
}

// RegistryOption configures the Registry.
type RegistryOption func(*Registry)

// WithStrictMode makes reflected schemas reject properties the Go type does not declare.
func WithStrictMode(strict bool) RegistryOption {
	return func(r *Registry) {
		r.strictMode = strict
	}
}

// NewRegistry creates an empty capability registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		schemas:    make(map[string]string),
		reflector:  new(jsonschema.Reflector),
		strictMode: true,
	}

	r.reflector.ExpandedStruct = true

	for _, opt := range opts {
		opt(r)
	}
	r.reflector.AllowAdditionalProperties = !r.strictMode

	return r
}

// NewDefaultRegistry creates a registry with the built-in capability kinds registered.
func NewDefaultRegistry(opts ...RegistryOption) (*Registry, error) {
	r := NewRegistry(opts...)
	if err := r.Register(string(descriptor.KindNetwork), descriptor.NetworkCapability{}); err != nil {
		return nil, err
	}
	if err := r.Register(string(descriptor.KindTransaction), descriptor.TransactionCapability{}); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds a schema for a capability kind.
// model can be a Go struct (to generate schema), a raw JSON schema string,
// a map, or a byte slice holding a schema.
func (r *Registry) Register(kind string, model interface{}) error {
	if kind == "" {
		return fmt.Errorf("capability kind cannot be empty")
	}

	schemaStr, err := r.schemaFor(model)
	if err != nil {
		return fmt.Errorf("capability kind %s: %w", kind, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[kind]; exists {
		return fmt.Errorf("capability kind already registered: %s", kind)
	}
	r.schemas[kind] = schemaStr
	return nil
}

func (r *Registry) schemaFor(model interface{}) (string, error) {
	switch v := model.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case map[string]interface{}:
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to marshal schema map: %w", err)
		}
		return string(b), nil
	}

	t := reflect.TypeOf(model)
	if t == nil {
		return "", fmt.Errorf("nil model")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return "", fmt.Errorf("unsupported model type %T", model)
	}

	s := r.reflector.Reflect(model)
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal generated schema: %w", err)
	}
	return string(b), nil
}

// GetSchema retrieves the JSON Schema for a capability kind.
func (r *Registry) GetSchema(kind string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[kind]
	return s, ok
}

// List returns all registered capability kinds, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.schemas))
	for k := range r.schemas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
