package html

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formruntime/pkg/runtime"
)

// Theme partial keys. A theme's Partials map replaces the template of every
// component sharing the key.
const (
	PartialForm            = "forms.form"
	PartialPage            = "forms.page"
	PartialDescription     = "forms.description"
	PartialPanel           = "forms.panel"
	PartialInstanceManager = "forms.instance-manager"
	PartialField           = "forms.field"
	PartialImage           = "forms.image"
	PartialButton          = "forms.button"
)

// ThemeStylesheetAsset is the theme asset key linked from document pages.
const ThemeStylesheetAsset = "html.stylesheet"

var defaultPartials = map[string]string{
	PartialForm:            "templates/form.tmpl",
	PartialPage:            "templates/page.tmpl",
	PartialDescription:     "templates/description.tmpl",
	PartialPanel:           "templates/panel.tmpl",
	PartialInstanceManager: "templates/instance_manager.tmpl",
	PartialField:           "templates/field.tmpl",
	PartialImage:           "templates/image.tmpl",
	PartialButton:          "templates/button.tmpl",
}

// DefaultPartials returns the built-in template of every partial key, for
// use as theme fallbacks.
func DefaultPartials() map[string]string {
	out := make(map[string]string, len(defaultPartials))
	for key, path := range defaultPartials {
		out[key] = path
	}
	return out
}

// Component maps a data-cmp-is component name onto the template that renders
// it and the BEM block used for its CSS classes. Partial is the theme key that
// can override Template.
type Component struct {
	Template string
	Block    string
	Partial  string
}

// Components tracks component templates keyed by component name. Callers can
// override defaults to restyle a single component.
type Components struct {
	mu         sync.RWMutex
	components map[string]Component
}

// NewComponents creates an empty registry.
func NewComponents() *Components {
	return &Components{components: make(map[string]Component)}
}

// DefaultComponents returns a registry holding the built-in templates.
func DefaultComponents() *Components {
	registry := NewComponents()
	register := func(name, partial, block string) {
		registry.MustRegister(name, Component{Template: defaultPartials[partial], Block: block, Partial: partial})
	}
	register(runtime.ComponentPanel, PartialPanel, "cmp-container")
	register(runtime.ComponentInstanceManager, PartialInstanceManager, "cmp-adaptiveform-instancemanager")
	register(runtime.ComponentTextInput, PartialField, "cmp-adaptiveform-textinput")
	register(runtime.ComponentNumberInput, PartialField, "cmp-adaptiveform-numberinput")
	register(runtime.ComponentDateInput, PartialField, "cmp-adaptiveform-datepicker")
	register(runtime.ComponentCheckbox, PartialField, "cmp-adaptiveform-checkbox")
	register(runtime.ComponentImage, PartialImage, "cmp-image")
	register(runtime.ComponentButton, PartialButton, "cmp-adaptiveform-button")
	return registry
}

// Register associates a component with name. Existing entries are replaced.
func (r *Components) Register(name string, component Component) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("html: component name is required")
	}
	if strings.TrimSpace(component.Template) == "" {
		return fmt.Errorf("html: template for %q is required", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[name] = component
	return nil
}

// MustRegister panics on registration failure.
func (r *Components) MustRegister(name string, component Component) {
	if err := r.Register(name, component); err != nil {
		panic(err)
	}
}

// Lookup returns the component registered under name.
func (r *Components) Lookup(name string) (Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	component, ok := r.components[name]
	return component, ok
}

// Names lists registered component names.
func (r *Components) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
