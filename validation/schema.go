// Package validation validates module descriptors and parameter documents
// against JSON schemas from the registry package.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaCache compiles schemas once per id and is safe for concurrent use.
type schemaCache struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

func newSchemaCache() *schemaCache {
	return &schemaCache{compiled: make(map[string]*jsonschema.Schema)}
}

func (c *schemaCache) get(id string, source func() ([]byte, error)) (*jsonschema.Schema, error) {
	c.mu.RLock()
	s, ok := c.compiled[id]
	c.mu.RUnlock()
	if ok {
		return s, nil
	}

	data, err := source()
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(id, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("schema load failed for %s: %w", id, err)
	}
	s, err = compiler.Compile(id)
	if err != nil {
		return nil, fmt.Errorf("schema compile failed for %s: %w", id, err)
	}

	c.mu.Lock()
	c.compiled[id] = s
	c.mu.Unlock()
	return s, nil
}

// check validates doc and converts schema violations into result messages.
// Only non-schema failures are returned as errors.
func check(s *jsonschema.Schema, doc any, prefix string) ([]string, error) {
	err := s.Validate(doc)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, err
	}

	var msgs []string
	collectLeaves(ve, prefix, &msgs)
	sort.Strings(msgs)
	return msgs, nil
}

func collectLeaves(ve *jsonschema.ValidationError, prefix string, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, fmt.Sprintf("%s%s: %s", prefix, loc, ve.Message))
		return
	}
	for _, cause := range ve.Causes {
		collectLeaves(cause, prefix, out)
	}
}
