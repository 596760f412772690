package model

import (
	"fmt"
	"strings"
)

// BuilderOption configures the builder behaviour.
type BuilderOption func(*Builder)

// WithIDGenerator overrides the id generator. The same generator should be
// handed to the runtime so cloned instances keep the same id scheme.
func WithIDGenerator(ids IDGenerator) BuilderOption {
	return func(b *Builder) {
		if ids != nil {
			b.ids = ids
		}
	}
}

// WithDefaultMinOccur sets the floor applied to repeatable panels that do not
// declare minOccur. Negative values are ignored.
func WithDefaultMinOccur(n int) BuilderOption {
	return func(b *Builder) {
		if n >= 0 {
			b.defaultMinOccur = n
		}
	}
}

// WithDefaultInitialOccur sets how many instances a repeatable panel starts
// with when it declares neither initialOccur nor a larger minOccur.
func WithDefaultInitialOccur(n int) BuilderOption {
	return func(b *Builder) {
		if n >= 0 {
			b.initialOccur = n
		}
	}
}

// WithDecorators registers decorators that run after the form is built and
// prefilled.
func WithDecorators(decorators ...Decorator) BuilderOption {
	return func(b *Builder) {
		for _, d := range decorators {
			if d != nil {
				b.decorators = append(b.decorators, d)
			}
		}
	}
}

// Builder converts Definitions into Forms.
type Builder struct {
	ids             IDGenerator
	defaultMinOccur int
	initialOccur    int
	decorators      []Decorator
}

// NewBuilder returns a Builder using UUID based ids, a minOccur floor of 0 and
// one initial instance per repeatable panel.
func NewBuilder(options ...BuilderOption) *Builder {
	b := &Builder{
		ids:          UUIDGenerator(),
		initialOccur: 1,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

// IDs returns the generator used by the builder.
func (b *Builder) IDs() IDGenerator {
	return b.ids
}

// Build converts the definition into a Form. Repeatable panels become
// instance-manager nodes, definition data is applied to matching inputs and
// decorators run last.
func (b *Builder) Build(def Definition) (*Form, error) {
	form := &Form{
		ID:              b.ids.NewID(FieldTypeForm),
		Title:           strings.TrimSpace(def.Title),
		Description:     def.Description,
		Action:          strings.TrimSpace(def.Action),
		ThankYouMessage: def.ThankYouMessage,
		ThankYouPage:    strings.TrimSpace(def.ThankYouPage),
		DocumentPath:    strings.TrimSpace(def.DocumentPath),
		PagePath:        strings.TrimSpace(def.PagePath),
		Data:            def.Data,
		Metadata:        def.Metadata,
	}

	seen := make(map[string]struct{})
	for idx, itemDef := range def.Items {
		item, err := b.buildItem(itemDef, b.ids, fmt.Sprintf("items[%d]", idx))
		if err != nil {
			return nil, err
		}
		form.Items = append(form.Items, item)
		if item.Name == "" {
			continue
		}
		if _, dup := seen[item.Name]; dup {
			return nil, fmt.Errorf("%w: items[%d]: duplicate name %q", ErrInvalidDefinition, idx, item.Name)
		}
		seen[item.Name] = struct{}{}
	}

	for _, item := range form.Items {
		b.prefill(item, def.Data)
	}

	for _, decorator := range b.decorators {
		if err := decorator.Decorate(form); err != nil {
			return nil, fmt.Errorf("model: decorate form: %w", err)
		}
	}
	return form, nil
}

func (b *Builder) buildItem(def ItemDefinition, ids IDGenerator, path string) (*Item, error) {
	fieldType := FieldType(strings.TrimSpace(string(def.FieldType)))
	if !fieldType.Valid() || fieldType == FieldTypeInstanceManager {
		return nil, fmt.Errorf("%w: %s: unsupported fieldType %q", ErrInvalidDefinition, path, def.FieldType)
	}
	if len(def.Items) > 0 && !fieldType.IsContainer() {
		return nil, fmt.Errorf("%w: %s: %s cannot hold items", ErrInvalidDefinition, path, fieldType)
	}
	if def.Repeatable && fieldType != FieldTypePanel {
		return nil, fmt.Errorf("%w: %s: only panels can repeat", ErrInvalidDefinition, path)
	}

	item := &Item{
		Name:             strings.TrimSpace(def.Name),
		FieldType:        fieldType,
		Label:            def.Label,
		ShortDescription: def.ShortDescription,
		Description:      def.Description,
		Placeholder:      def.Placeholder,
		Visible:          boolOr(def.Visible, true),
		Enabled:          boolOr(def.Enabled, true),
		Required:         def.Required,
		VisibleWhen:      strings.TrimSpace(def.VisibleWhen),
		EnabledWhen:      strings.TrimSpace(def.EnabledWhen),
		Value:            cloneValue(def.Default),
		Properties:       def.Properties,
	}
	if ids != nil && !def.Repeatable {
		item.ID = ids.NewID(fieldType)
	}

	switch fieldType {
	case FieldTypeNumberInput:
		item.Number = numberConstraints(def)
	case FieldTypeImage:
		item.Image = &Image{Src: strings.TrimSpace(def.Src), Alt: def.Alt}
	}

	if def.Repeatable {
		// The panel itself becomes the template; its children never receive
		// ids because only clones are placed in the tree.
		for idx, child := range def.Items {
			built, err := b.buildItem(child, nil, fmt.Sprintf("%s.items[%d]", path, idx))
			if err != nil {
				return nil, err
			}
			item.Items = append(item.Items, built)
		}
		return b.instanceManager(def, item, ids, path)
	}

	for idx, child := range def.Items {
		built, err := b.buildItem(child, ids, fmt.Sprintf("%s.items[%d]", path, idx))
		if err != nil {
			return nil, err
		}
		item.Items = append(item.Items, built)
	}
	return item, nil
}

func (b *Builder) instanceManager(def ItemDefinition, template *Item, ids IDGenerator, path string) (*Item, error) {
	minOccur := intOr(def.MinOccur, b.defaultMinOccur)
	maxOccur := intOr(def.MaxOccur, Unbounded)
	if minOccur < 0 {
		return nil, fmt.Errorf("%w: %s: minOccur must not be negative", ErrInvalidDefinition, path)
	}
	if maxOccur < Unbounded {
		return nil, fmt.Errorf("%w: %s: maxOccur must be -1 (unbounded) or greater", ErrInvalidDefinition, path)
	}
	if maxOccur != Unbounded && minOccur > maxOccur {
		return nil, fmt.Errorf("%w: %s: minOccur %d exceeds maxOccur %d", ErrInvalidDefinition, path, minOccur, maxOccur)
	}

	initial := intOr(def.InitialOccur, b.initialOccur)
	if initial < minOccur {
		initial = minOccur
	}
	if maxOccur != Unbounded && initial > maxOccur {
		initial = maxOccur
	}

	node := &Item{
		Name:             template.Name,
		FieldType:        FieldTypeInstanceManager,
		Label:            template.Label,
		ShortDescription: template.ShortDescription,
		Description:      template.Description,
		Visible:          template.Visible,
		Enabled:          template.Enabled,
		VisibleWhen:      template.VisibleWhen,
		EnabledWhen:      template.EnabledWhen,
		MinOccur:         minOccur,
		MaxOccur:         maxOccur,
		Template:         template,
	}
	// rules on a repeatable panel apply to the whole repetition
	template.VisibleWhen, template.EnabledWhen = "", ""
	if ids != nil {
		node.ID = ids.NewID(FieldTypeInstanceManager)
	}
	for i := 0; i < initial; i++ {
		node.Items = append(node.Items, template.Clone(ids))
	}
	return node, nil
}

// prefill applies definition data to the subtree. Panels look up a nested map
// under their name and fall back to the enclosing scope; instance managers
// read a list and grow up to its length within their bounds.
func (b *Builder) prefill(item *Item, scope map[string]any) {
	if item == nil || len(scope) == 0 {
		return
	}
	switch item.FieldType {
	case FieldTypePanel:
		child := scope
		if nested, ok := scope[item.Name].(map[string]any); ok && item.Name != "" {
			child = nested
		}
		for _, c := range item.Items {
			b.prefill(c, child)
		}
	case FieldTypeInstanceManager:
		entries, ok := scope[item.Name].([]any)
		if !ok {
			return
		}
		for len(item.Items) < len(entries) && (item.MaxOccur == Unbounded || len(item.Items) < item.MaxOccur) {
			item.Items = append(item.Items, item.Template.Clone(b.ids))
		}
		for idx, instance := range item.Items {
			if idx >= len(entries) {
				break
			}
			values, ok := entries[idx].(map[string]any)
			if !ok {
				continue
			}
			for _, c := range instance.Items {
				b.prefill(c, values)
			}
		}
	default:
		if !item.FieldType.IsInput() || item.Name == "" {
			return
		}
		if value, ok := scope[item.Name]; ok {
			item.Value = cloneValue(value)
		}
	}
}

func numberConstraints(def ItemDefinition) *NumberConstraints {
	if def.Minimum == nil && def.Maximum == nil && def.ExclusiveMinimum == nil &&
		def.ExclusiveMaximum == nil && def.LeadDigits == nil && def.FracDigits == nil {
		return nil
	}
	return &NumberConstraints{
		Minimum:          def.Minimum,
		Maximum:          def.Maximum,
		ExclusiveMinimum: def.ExclusiveMinimum,
		ExclusiveMaximum: def.ExclusiveMaximum,
		LeadDigits:       def.LeadDigits,
		FracDigits:       def.FracDigits,
	}
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func intOr(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}
