package formruntime

import (
	"context"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formruntime/pkg/model"
	"github.com/goliatone/go-formruntime/pkg/orchestrator"
	"github.com/goliatone/go-formruntime/pkg/render"
	"github.com/goliatone/go-formruntime/pkg/runtime"
)

// RenderOptions describes per-request overrides that renderers can use to
// surface server-side validation errors and instance actions.
type RenderOptions = render.RenderOptions

// Request aliases orchestrator.Request.
type Request = orchestrator.Request

// Source aliases orchestrator.Source.
type Source = orchestrator.Source

// Container is the live runtime of a loaded form.
type Container = runtime.Container

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Load reads the definition behind source and returns its live runtime.
func Load(ctx context.Context, source Source, options ...orchestrator.Option) (*Container, error) {
	gen := orchestrator.New(options...)
	return gen.Load(ctx, orchestrator.Request{Source: source})
}

// Generate loads the definition behind source and renders it using the named
// renderer. It is the simplest entry point for callers that just want HTML.
func Generate(ctx context.Context, source Source, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Source:   source,
		Renderer: rendererName,
	})
}

// GenerateFromDefinition renders an already decoded definition, bypassing the
// read and schema stages.
func GenerateFromDefinition(ctx context.Context, def model.Definition, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Definition: &def,
		Renderer:   rendererName,
	})
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// theme/variant choices are resolved ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector, defaultTheme, defaultVariant string) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector, defaultTheme, defaultVariant)
}

// WithThemeFallbacks forwards the partials a theme selection starts from.
func WithThemeFallbacks(fallbacks map[string]string) orchestrator.Option {
	return orchestrator.WithThemeFallbacks(fallbacks)
}
