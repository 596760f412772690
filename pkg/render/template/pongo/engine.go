// Package pongo implements template.TemplateRenderer on top of a pongo2
// template set read from an fs.FS.
package pongo

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formruntime/pkg/render/template"
)

// Engine renders templates by path. Parsed templates are cached.
type Engine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New returns an engine reading templates from files.
func New(files fs.FS) (*Engine, error) {
	if files == nil {
		return nil, errors.New("pongo: template fs is required")
	}
	registerFilters()
	return &Engine{
		set:       pongo2.NewSet("formruntime", pongo2.NewFSLoader(files)),
		templates: make(map[string]*pongo2.Template),
	}, nil
}

// Render executes the template stored at path.
func (e *Engine) Render(path string, data map[string]any) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("pongo: engine is nil")
	}
	tmpl, err := e.template(path)
	if err != nil {
		return "", err
	}
	out, err := tmpl.Execute(pongo2.Context(data))
	if err != nil {
		return "", fmt.Errorf("pongo: execute template %q: %w", path, err)
	}
	return out, nil
}

func (e *Engine) template(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("pongo: load template %q: %w", path, err)
	}
	e.templates[path] = tmpl
	return tmpl, nil
}

var filtersOnce sync.Once

// registerFilters touches the process wide pongo2 filter map, which is not
// guarded, so it runs once.
func registerFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("boolattr") {
			_ = pongo2.RegisterFilter("boolattr", filterBoolAttr)
		}
		if !pongo2.FilterExists("sanitize") {
			_ = pongo2.RegisterFilter("sanitize", filterSanitize)
		}
	})
}

// filterBoolAttr prints booleans the way DOM attributes expect them
// ("true"/"false"); pongo2 would print "True"/"False".
func filterBoolAttr(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.IsTrue() {
		return pongo2.AsValue("true"), nil
	}
	return pongo2.AsValue("false"), nil
}

// filterSanitize runs rich text through the *bluemonday.Policy given as the
// parameter and marks the result safe. Without a policy the output is empty.
func filterSanitize(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	raw := strings.TrimSpace(in.String())
	if raw == "" || param == nil {
		return pongo2.AsSafeValue(""), nil
	}
	policy, ok := param.Interface().(*bluemonday.Policy)
	if !ok || policy == nil {
		return pongo2.AsSafeValue(""), nil
	}
	return pongo2.AsSafeValue(strings.TrimSpace(policy.Sanitize(raw))), nil
}
