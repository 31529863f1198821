// Package template renders descriptor documents that reference invocation
// configuration, such as a network chosen at run time.
package template

// TemplateEngine renders templates with provided data.
type TemplateEngine interface {
	// Render processes raw bytes as a template using the provided configuration.
	Render(raw []byte, config map[string]any) ([]byte, error)
}
