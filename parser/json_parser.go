package parser

import (
	"encoding/json"
	"fmt"

	"github.com/reglet-dev/reglet-demo-actions/descriptor"
)

// JSONDescriptorParser implements DescriptorParser for JSON.
type JSONDescriptorParser struct{}

// NewJSONDescriptorParser creates a new JSONDescriptorParser.
func NewJSONDescriptorParser() DescriptorParser {
	return &JSONDescriptorParser{}
}

// Parse unmarshals JSON bytes into a ModuleDescriptor.
func (p *JSONDescriptorParser) Parse(data []byte) (*descriptor.ModuleDescriptor, error) {
	var m descriptor.ModuleDescriptor
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse descriptor json: %w", err)
	}
	return &m, nil
}
