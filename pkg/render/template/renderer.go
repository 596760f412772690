package template

// TemplateRenderer is the seam the HTML renderer relies on: it executes the
// template stored at path with data.
type TemplateRenderer interface {
	Render(path string, data map[string]any) (string, error)
}
