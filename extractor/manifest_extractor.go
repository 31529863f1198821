package extractor

import (
	"errors"
	"fmt"

	"github.com/reglet-dev/reglet-demo-actions/capability"
	"github.com/reglet-dev/reglet-demo-actions/descriptor"
	"github.com/reglet-dev/reglet-demo-actions/parser"
	"github.com/reglet-dev/reglet-demo-actions/template"
)

// ErrNoParser is returned when a ManifestExtractor has no parser configured.
var ErrNoParser = errors.New("no descriptor parser configured")

// ManifestExtractor reads the capabilities declared by a descriptor document,
// optionally rendering it as a template first.
type ManifestExtractor struct {
	parser parser.DescriptorParser
	engine template.TemplateEngine
	raw    []byte
}

// ManifestOption configures a ManifestExtractor.
type ManifestOption func(*ManifestExtractor)

// WithParser sets the descriptor parser.
func WithParser(p parser.DescriptorParser) ManifestOption {
	return func(e *ManifestExtractor) { e.parser = p }
}

// WithTemplateEngine renders the document with the extraction config before parsing.
func WithTemplateEngine(t template.TemplateEngine) ManifestOption {
	return func(e *ManifestExtractor) { e.engine = t }
}

// NewManifestExtractor creates an extractor over a raw descriptor document.
func NewManifestExtractor(raw []byte, opts ...ManifestOption) *ManifestExtractor {
	e := &ManifestExtractor{raw: raw}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns every capability the descriptor declares, at module or action level.
func (e *ManifestExtractor) Extract(config map[string]any) (*capability.GrantSet, error) {
	if e.parser == nil {
		return nil, ErrNoParser
	}

	data := e.raw
	if e.engine != nil {
		rendered, err := e.engine.Render(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to render descriptor: %w", err)
		}
		data = rendered
	}

	m, err := e.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse descriptor: %w", err)
	}

	caps := append([]descriptor.Capability{}, m.Capabilities...)
	for _, a := range m.Actions {
		caps = append(caps, a.RequiredCapabilities...)
	}
	return capability.FromCapabilities(caps), nil
}
