package render

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry stores renderers by name. The CLI and the preview server pick the
// output format through it, either by name or by negotiated media type.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]Renderer),
	}
}

// Register adds a renderer by its Name(). Names and media types must be
// unique.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return fmt.Errorf("render: renderer is required")
	}
	name := renderer.Name()
	if name == "" {
		return fmt.Errorf("render: renderer name is required")
	}
	mediaType := MediaType(renderer.ContentType())

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("render: renderer %q already registered", name)
	}
	for other, existing := range r.renderers {
		if mediaType != "" && MediaType(existing.ContentType()) == mediaType {
			return fmt.Errorf("render: %q already serves %s", other, mediaType)
		}
	}
	r.renderers[name] = renderer
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// Get retrieves a renderer by name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("render: renderer %q not found", name)
	}
	return renderer, nil
}

// Lookup resolves a renderer by name, falling back to fallback when name is
// empty.
func (r *Registry) Lookup(name, fallback string) (Renderer, error) {
	if name == "" {
		name = fallback
	}
	return r.Get(name)
}

// List returns a sorted list of renderer names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names()
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MediaTypes lists the media type of every renderer for content negotiation.
// The renderer named preferred leads, the rest follow by name.
func (r *Registry) MediaTypes(preferred string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := r.names()
	out := make([]string, 0, len(names))
	if renderer, ok := r.renderers[preferred]; ok {
		out = append(out, MediaType(renderer.ContentType()))
	}
	for _, name := range names {
		if name != preferred {
			out = append(out, MediaType(r.renderers[name].ContentType()))
		}
	}
	return out
}

// ForMediaType returns the renderer producing mediaType. Parameters such as
// charset are ignored.
func (r *Registry) ForMediaType(mediaType string) (Renderer, error) {
	want := MediaType(mediaType)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.names() {
		if renderer := r.renderers[name]; MediaType(renderer.ContentType()) == want {
			return renderer, nil
		}
	}
	return nil, fmt.Errorf("render: no renderer for %q", mediaType)
}

// MediaType strips the parameters from a content type and lowercases it:
// "text/html; charset=utf-8" becomes "text/html".
func MediaType(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
