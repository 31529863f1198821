// Package parser reads module descriptors from JSON or YAML documents.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/reglet-dev/reglet-demo-actions/descriptor"
)

// DescriptorParser parses raw descriptor bytes into a ModuleDescriptor.
type DescriptorParser interface {
	// Parse unmarshals descriptor bytes into a ModuleDescriptor.
	Parse(data []byte) (*descriptor.ModuleDescriptor, error)
}

// ForPath picks a parser from the file extension.
func ForPath(path string) (DescriptorParser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return NewJSONDescriptorParser(), nil
	case ".yaml", ".yml":
		return NewYamlDescriptorParser(), nil
	default:
		return nil, fmt.Errorf("unsupported descriptor format %q", ext)
	}
}
