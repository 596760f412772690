// Package html renders a form runtime as HTML. Every view becomes an element
// carrying its id and the data-cmp-* attributes (is, visible, enabled), fields
// get their label, description and error message chrome, and repeatable panels
// can expose add/remove controls that post back to a preview server.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formruntime/pkg/model"
	"github.com/goliatone/go-formruntime/pkg/render"
	rendertemplate "github.com/goliatone/go-formruntime/pkg/render/template"
	"github.com/goliatone/go-formruntime/pkg/render/template/pongo"
	"github.com/goliatone/go-formruntime/pkg/runtime"
)

// Name is the registry name of the renderer.
const Name = "html"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	components       *Components
	policy           *bluemonday.Policy
	document         bool
	lang             string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponents replaces the component registry.
func WithComponents(components *Components) Option {
	return func(cfg *config) {
		if components != nil {
			cfg.components = components
		}
	}
}

// WithSanitizer overrides the policy applied to rich text descriptions.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// WithDocument wraps the form in a complete HTML page that inlines the
// stylesheet and the tooltip script.
func WithDocument(lang string) Option {
	return func(cfg *config) {
		cfg.document = true
		if lang = strings.TrimSpace(lang); lang != "" {
			cfg.lang = lang
		}
	}
}

type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	components *Components
	policy     *bluemonday.Policy
	document   bool
	lang       string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{lang: "en"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.components == nil {
		cfg.components = DefaultComponents()
	}
	if cfg.policy == nil {
		cfg.policy = DescriptionPolicy()
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := pongo.New(cfg.templateFS)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	return &Renderer{
		templates:  templates,
		components: cfg.components,
		policy:     cfg.policy,
		document:   cfg.document,
		lang:       cfg.lang,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the current state of the container.
func (r *Renderer) Render(ctx context.Context, container *runtime.Container, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	if container == nil {
		return nil, fmt.Errorf("html renderer: container is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var body strings.Builder
	for _, view := range container.Children() {
		out, err := r.renderView(view, options)
		if err != nil {
			return nil, err
		}
		body.WriteString(out)
	}

	form := container.Model()
	action := form.Action
	if options.SubmitURL != "" {
		action = options.SubmitURL
	}
	result, err := r.templates.Render(partial(options.Theme, PartialForm), map[string]any{
		"id":              form.ID,
		"component":       runtime.ComponentFormContainer,
		"title":           form.Title,
		"description":     form.Description,
		"policy":          r.policy,
		"action":          action,
		"pagePath":        form.EncodedPagePath(),
		"version":         form.Metadata.Version,
		"grammar":         form.Metadata.Grammar,
		"thankYouMessage": form.ThankYouMessage,
		"formErrors":      render.MergeFormErrors(options.FormErrors),
		"body":            body.String(),
		"theme":           themeName(options.Theme),
		"themeVariant":    themeVariant(options.Theme),
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render form: %w", err)
	}

	if !r.document {
		return []byte(result), nil
	}

	page, err := r.templates.Render(partial(options.Theme, PartialPage), map[string]any{
		"lang":            r.lang,
		"title":           form.Title,
		"stylesheet":      readAsset(StylesheetName),
		"script":          readAsset(RuntimeScriptName),
		"themeStylesheet": themeAsset(options.Theme, ThemeStylesheetAsset),
		"themeVars":       cssVars(options.Theme),
		"body":            result,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render page: %w", err)
	}
	return []byte(page), nil
}

func (r *Renderer) renderView(view *runtime.View, options render.RenderOptions) (string, error) {
	item := view.Model()
	componentName := view.Component()
	component, ok := r.components.Lookup(componentName)
	if !ok {
		return "", fmt.Errorf("html renderer: component %q not registered for %q", componentName, item.ID)
	}

	var body strings.Builder
	for _, child := range view.Children() {
		out, err := r.renderView(child, options)
		if err != nil {
			return "", err
		}
		body.WriteString(out)
	}

	data := map[string]any{
		"id":        item.ID,
		"name":      item.Name,
		"label":     item.Label,
		"component": componentName,
		"block":     component.Block,
		"visible":   item.Visible,
		"enabled":   item.Enabled,
		"required":  item.Required,
		"errors":    options.Errors[item.ID],
		"body":      body.String(),
	}

	switch item.FieldType {
	case model.FieldTypeInstanceManager:
		if manager := view.InstanceManager(); manager != nil {
			data["count"] = strconv.Itoa(manager.Count())
			data["minOccur"] = strconv.Itoa(manager.MinOccur())
			data["maxOccur"] = strconv.Itoa(manager.MaxOccur())
			data["canAdd"] = manager.CanAdd()
			data["canRemove"] = manager.CanRemove()
		}
		data["addURL"] = options.InstanceActionURL(item.ID, "add")
		data["removeURL"] = options.InstanceActionURL(item.ID, "remove")
	case model.FieldTypeImage:
		if item.Image != nil {
			data["src"] = item.Image.Src
			data["alt"] = item.Image.Alt
		}
	}

	if item.FieldType.IsInput() {
		r.fieldData(item, data)
	}

	if item.FieldType != model.FieldTypeInstanceManager {
		chrome, err := r.templates.Render(partial(options.Theme, PartialDescription), map[string]any{
			"id":               item.ID,
			"block":            component.Block,
			"shortDescription": item.ShortDescription,
			"description":      item.Description,
			"policy":           r.policy,
		})
		if err != nil {
			return "", fmt.Errorf("html renderer: render description for %q: %w", item.ID, err)
		}
		data["chrome"] = chrome
	}

	template := component.Template
	if override := themePartial(options.Theme, component.Partial); override != "" {
		template = override
	}
	out, err := r.templates.Render(template, data)
	if err != nil {
		return "", fmt.Errorf("html renderer: render %s %q: %w", componentName, item.ID, err)
	}
	return out, nil
}

func (r *Renderer) fieldData(item *model.Item, data map[string]any) {
	data["placeholder"] = item.Placeholder
	data["value"] = formatValue(item.Value)

	switch item.FieldType {
	case model.FieldTypeCheckbox:
		data["inputType"] = "checkbox"
		data["checked"] = isChecked(item.Value)
	case model.FieldTypeNumberInput:
		data["inputType"] = "number"
		if n := item.Number; n != nil {
			if n.Minimum != nil {
				data["min"] = formatValue(*n.Minimum)
			}
			if n.Maximum != nil {
				data["max"] = formatValue(*n.Maximum)
			}
			if n.FracDigits != nil {
				data["step"] = formatValue(math.Pow10(-*n.FracDigits))
			}
		}
	case model.FieldTypeDateInput:
		data["inputType"] = "date"
	default:
		data["inputType"] = "text"
	}
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

func isChecked(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		checked, _ := strconv.ParseBool(strings.TrimSpace(v))
		return checked
	default:
		return false
	}
}

func themeName(cfg *theme.RendererConfig) string {
	if cfg == nil {
		return ""
	}
	return cfg.Theme
}

func themeVariant(cfg *theme.RendererConfig) string {
	if cfg == nil {
		return ""
	}
	return cfg.Variant
}

func themePartial(cfg *theme.RendererConfig, key string) string {
	if cfg == nil || key == "" {
		return ""
	}
	return strings.TrimSpace(cfg.Partials[key])
}

// partial resolves one of the page level templates, preferring the theme's
// override.
func partial(cfg *theme.RendererConfig, key string) string {
	if override := themePartial(cfg, key); override != "" {
		return override
	}
	return defaultPartials[key]
}

func themeAsset(cfg *theme.RendererConfig, key string) string {
	if cfg == nil || cfg.AssetURL == nil {
		return ""
	}
	return cfg.AssetURL(key)
}

// cssVars prints the theme's CSS custom properties as a :root rule with the
// properties sorted by name.
func cssVars(cfg *theme.RendererConfig) string {
	if cfg == nil || len(cfg.CSSVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(cfg.CSSVars))
	for key := range cfg.CSSVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(cfg.CSSVars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
