package template

import (
	"bytes"
	"fmt"
	"text/template"
)

var _ TemplateEngine = (*TextEngine)(nil)

// TextEngine renders with text/template. A key missing from the
// configuration is an error.
type TextEngine struct{}

// NewTextEngine creates a TextEngine.
func NewTextEngine() *TextEngine {
	return &TextEngine{}
}

// Render executes raw against config.
func (e *TextEngine) Render(raw []byte, config map[string]any) ([]byte, error) {
	tmpl, err := template.New("descriptor").Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	if config == nil {
		config = map[string]any{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, config); err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return buf.Bytes(), nil
}
