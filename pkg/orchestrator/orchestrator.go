package orchestrator

import (
	"context"
	"errors"
	"fmt"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formruntime/pkg/model"
	"github.com/goliatone/go-formruntime/pkg/render"
	"github.com/goliatone/go-formruntime/pkg/renderers/html"
	"github.com/goliatone/go-formruntime/pkg/renderers/jsonstate"
	"github.com/goliatone/go-formruntime/pkg/rules"
	"github.com/goliatone/go-formruntime/pkg/rules/expr"
	"github.com/goliatone/go-formruntime/pkg/runtime"
	"github.com/goliatone/go-formruntime/pkg/validation"
)

const defaultRendererName = html.Name

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithBuilderOptions forwards options to the model builder created for every
// load (id generator, occurrence defaults).
func WithBuilderOptions(options ...model.BuilderOption) Option {
	return func(o *Orchestrator) {
		o.builderOptions = append(o.builderOptions, options...)
	}
}

// WithIDGeneratorFactory gives every Build its own id generator, so reloading
// a definition restarts sequential ids.
func WithIDGeneratorFactory(factory func() model.IDGenerator) Option {
	return func(o *Orchestrator) {
		o.idFactory = factory
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithTransformer registers a Transformer that rewrites the decoded
// definition before it is built.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.transformers = append(o.transformers, t)
		}
	}
}

// WithDecorators registers decorators that run against the built form before
// the runtime is created.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		if len(decorators) == 0 {
			return
		}
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithSchemaValidation toggles the JSON schema check on raw documents. It is
// enabled by default.
func WithSchemaValidation(enabled bool) Option {
	return func(o *Orchestrator) {
		o.validateSchema = enabled
	}
}

// WithRules replaces the evaluator of visibleWhen/enabledWhen rules. A nil
// evaluator disables rules. extras is exposed to rules as "extras.".
func WithRules(evaluator rules.Evaluator, extras map[string]any) Option {
	return func(o *Orchestrator) {
		o.rules = evaluator
		o.ruleExtras = extras
	}
}

// WithRuntimeOptions forwards options to runtime.New.
func WithRuntimeOptions(options ...runtime.Option) Option {
	return func(o *Orchestrator) {
		o.runtimeOptions = append(o.runtimeOptions, options...)
	}
}

// Orchestrator coordinates the pipeline from definition document to a live
// runtime and its rendered output. Defaults: schema validation on, UUID ids,
// expression rules, html and json renderers registered, html as the default
// renderer.
type Orchestrator struct {
	registry        *render.Registry
	defaultRenderer string
	builderOptions  []model.BuilderOption
	idFactory       func() model.IDGenerator
	runtimeOptions  []runtime.Option
	transformers    []Transformer
	decorators      []model.Decorator
	validateSchema  bool
	rules           rules.Evaluator
	ruleExtras      map[string]any
	themes          theme.ThemeSelector
	themeName       string
	themeVariant    string
	themeFallbacks  map[string]string
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		validateSchema:  true,
		rules:           expr.New(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes the inputs of a load or render.
type Request struct {
	// Source identifies where the definition lives. Optional when Definition
	// is supplied.
	Source Source

	// Definition allows callers to bypass reading and schema validation when
	// they already hold a decoded document.
	Definition *model.Definition

	// Renderer names the renderer Generate uses. Empty falls back to the
	// configured default.
	Renderer string

	// RenderOptions carries per-request errors and the instance actions URL.
	RenderOptions render.RenderOptions

	// ThemeName and ThemeVariant pick the theme when a selector is
	// configured. Empty values use the selector defaults.
	ThemeName    string
	ThemeVariant string
}

// Registry returns the renderer registry.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

// Definition reads, checks, decodes and transforms the requested definition.
func (o *Orchestrator) Definition(ctx context.Context, req Request) (model.Definition, error) {
	if ctx == nil {
		return model.Definition{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return model.Definition{}, err
	}

	var def model.Definition
	switch {
	case req.Definition != nil:
		def = *req.Definition
	case req.Source != nil:
		raw, err := req.Source.Read(ctx)
		if err != nil {
			return model.Definition{}, err
		}
		if o.validateSchema {
			if result := validation.ValidateDefinition(raw); !result.Valid {
				return model.Definition{}, &DefinitionError{Location: req.Source.Location(), Result: result}
			}
		}
		def, err = model.DecodeBytes(raw)
		if err != nil {
			return model.Definition{}, fmt.Errorf("orchestrator: decode %s: %w", req.Source.Location(), err)
		}
	default:
		return model.Definition{}, errors.New("orchestrator: source or definition is required")
	}

	for _, t := range o.transformers {
		if err := t.Transform(ctx, &def); err != nil {
			return model.Definition{}, fmt.Errorf("orchestrator: transform definition: %w", err)
		}
	}
	return def, nil
}

// Load builds a live runtime for the requested definition.
func (o *Orchestrator) Load(ctx context.Context, req Request) (*runtime.Container, error) {
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	def, err := o.Definition(ctx, req)
	if err != nil {
		return nil, err
	}
	return o.Build(def)
}

// Build converts a decoded definition into a live runtime. The runtime clones
// instances with the same id generator the builder used.
func (o *Orchestrator) Build(def model.Definition) (*runtime.Container, error) {
	options := append([]model.BuilderOption(nil), o.builderOptions...)
	if o.idFactory != nil {
		options = append(options, model.WithIDGenerator(o.idFactory()))
	}
	if len(o.decorators) > 0 {
		options = append(options, model.WithDecorators(o.decorators...))
	}
	builder := model.NewBuilder(options...)

	form, err := builder.Build(def)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build form model: %w", err)
	}

	runtimeOptions := []runtime.Option{runtime.WithIDGenerator(builder.IDs())}
	if o.rules != nil {
		runtimeOptions = append(runtimeOptions, runtime.WithRules(o.rules, o.ruleExtras))
	}
	runtimeOptions = append(runtimeOptions, o.runtimeOptions...)
	container, err := runtime.New(form, runtimeOptions...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: create runtime: %w", err)
	}
	return container, nil
}

// Generate loads the definition and renders it with the requested renderer.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	container, err := o.Load(ctx, req)
	if err != nil {
		return nil, err
	}
	options := req.RenderOptions
	if options.Theme == nil {
		options.Theme, err = o.ThemeConfig(req.ThemeName, req.ThemeVariant)
		if err != nil {
			return nil, err
		}
	}
	return o.Render(ctx, container, req.Renderer, options)
}

// Render renders an existing runtime. Options without a theme get the
// default theme selection.
func (o *Orchestrator) Render(ctx context.Context, container *runtime.Container, rendererName string, options render.RenderOptions) ([]byte, error) {
	renderer, err := o.rendererFor(rendererName)
	if err != nil {
		return nil, err
	}
	if options.Theme == nil {
		if options.Theme, err = o.ThemeConfig("", ""); err != nil {
			return nil, err
		}
	}
	output, err := renderer.Render(ctx, container, options)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Renderer resolves a renderer by name, falling back to the default.
func (o *Orchestrator) Renderer(name string) (render.Renderer, error) {
	return o.rendererFor(name)
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	renderer, err := o.registry.Lookup(name, o.defaultRenderer)
	if err == nil {
		return renderer, nil
	}
	if name != "" {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}
	return o.registry.Get(names[0])
}

func (o *Orchestrator) applyDefaults() {
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := html.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
		o.registry.MustRegister(jsonstate.New())
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
	if o.themeFallbacks == nil {
		o.themeFallbacks = defaultThemeFallbacks()
	}
}
