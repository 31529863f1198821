package parser

import (
	"fmt"

	"github.com/reglet-dev/reglet-demo-actions/descriptor"
	"gopkg.in/yaml.v3"
)

// YamlDescriptorParser implements DescriptorParser for YAML.
type YamlDescriptorParser struct{}

// NewYamlDescriptorParser creates a new YamlDescriptorParser.
func NewYamlDescriptorParser() DescriptorParser {
	return &YamlDescriptorParser{}
}

// Parse unmarshals YAML bytes into a ModuleDescriptor.
func (p *YamlDescriptorParser) Parse(data []byte) (*descriptor.ModuleDescriptor, error) {
	var m descriptor.ModuleDescriptor
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse descriptor yaml: %w", err)
	}
	return &m, nil
}
