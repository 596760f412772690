package orchestrator

import (
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formruntime/pkg/renderers/html"
)

// WithThemeSelector resolves a theme before every render. name and variant
// are used when a request names neither.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(o *Orchestrator) {
		o.themes = selector
		o.themeName = name
		o.themeVariant = variant
	}
}

// WithThemeFallbacks replaces the partials a theme selection starts from.
// The html renderer's built-in templates are used by default.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(o *Orchestrator) {
		o.themeFallbacks = fallbacks
	}
}

func defaultThemeFallbacks() map[string]string {
	return html.DefaultPartials()
}

// ThemeConfig selects a theme and flattens it for renderers. Empty name and
// variant fall back to the configured defaults. Without a selector it returns
// nil.
func (o *Orchestrator) ThemeConfig(name, variant string) (*theme.RendererConfig, error) {
	if o.themes == nil {
		return nil, nil
	}
	if strings.TrimSpace(name) == "" {
		name = o.themeName
	}
	if strings.TrimSpace(variant) == "" {
		variant = o.themeVariant
	}
	selection, err := o.themes.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme %q: %w", name, err)
	}
	if selection == nil {
		return nil, nil
	}
	return rendererConfig(selection, o.themeFallbacks), nil
}

// rendererConfig merges the manifest and then the selected variant over the
// fallback partials. Every token becomes a --<token> CSS variable.
func rendererConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	cfg := &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: merge(nil, fallbacks),
	}

	var prefix string
	files := map[string]string{}
	if manifest := selection.Manifest; manifest != nil {
		cfg.Partials = merge(cfg.Partials, manifest.Templates)
		cfg.Tokens = merge(nil, manifest.Tokens)
		prefix = manifest.Assets.Prefix
		files = merge(files, manifest.Assets.Files)
		if variant, ok := manifest.Variants[selection.Variant]; ok {
			cfg.Partials = merge(cfg.Partials, variant.Templates)
			cfg.Tokens = merge(cfg.Tokens, variant.Tokens)
			if variant.Assets.Prefix != "" {
				prefix = variant.Assets.Prefix
			}
			files = merge(files, variant.Assets.Files)
		}
	}

	if len(cfg.Tokens) > 0 {
		cfg.CSSVars = make(map[string]string, len(cfg.Tokens))
		for key, value := range cfg.Tokens {
			cfg.CSSVars["--"+key] = value
		}
	}
	cfg.AssetURL = func(key string) string {
		file := files[key]
		if file == "" {
			return ""
		}
		if prefix == "" || strings.Contains(file, "://") {
			return file
		}
		return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
	}
	return cfg
}

func merge(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
