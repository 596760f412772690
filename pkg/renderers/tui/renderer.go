// Package tui implements an interactive terminal editor for a form runtime.
// It walks the view tree, prompts for every visible and enabled input, lets the
// user add and remove instances of repeatable panels within their bounds and
// serializes the collected data when the session ends.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formruntime/pkg/model"
	"github.com/goliatone/go-formruntime/pkg/render"
	"github.com/goliatone/go-formruntime/pkg/runtime"
	"github.com/goliatone/go-formruntime/pkg/validation"
)

// Name is the registry name of the renderer.
const Name = "tui"

const continueOption = "Continue"

// Renderer implements render.Renderer for terminal-driven sessions.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	maxReviews        int
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		maxReviews:   3,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = newSurveyDriver()
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render runs an editing session against container and returns the collected
// data. The container is mutated in place.
func (r *Renderer) Render(ctx context.Context, container *runtime.Container, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, ErrNoDriver
	}
	if container == nil {
		return nil, errors.New("tui: container is nil")
	}

	if title := strings.TrimSpace(container.Model().Title); title != "" {
		if err := r.info(ctx, title); err != nil {
			return nil, err
		}
	}
	for _, message := range opts.FormErrors {
		if err := r.error(ctx, message); err != nil {
			return nil, err
		}
	}

	errs := opts.Errors
	for pass := 0; ; pass++ {
		for _, view := range container.Children() {
			if err := r.promptView(ctx, container, view, errs); err != nil {
				return nil, err
			}
		}

		result := validation.ValidateValues(container.Model())
		if result.Valid || pass >= r.maxReviews {
			break
		}
		for _, issue := range result.Issues {
			if err := r.error(ctx, fmt.Sprintf("%s: %s", issue.Path, issue.Message)); err != nil {
				return nil, err
			}
		}
		again, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: "Some values are invalid. Review the form again?",
			Default: true,
		})
		if err != nil {
			return nil, err
		}
		if !again {
			break
		}
		errs = result.Errors()
	}

	values := container.Data()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(values)
}

func (r *Renderer) promptView(ctx context.Context, container *runtime.Container, view *runtime.View, errs map[string][]string) error {
	if !view.Visible() {
		return nil
	}
	item := view.Model()

	switch {
	case item.FieldType == model.FieldTypeInstanceManager:
		return r.promptInstances(ctx, container, view, errs)
	case item.FieldType == model.FieldTypePanel:
		// instances are announced by promptInstance
		if label := displayLabel(item); label != "" && !isInstance(view) {
			if err := r.info(ctx, label); err != nil {
				return err
			}
		}
		for _, child := range view.Children() {
			if err := r.promptView(ctx, container, child, errs); err != nil {
				return err
			}
		}
		return nil
	case item.FieldType.IsInput():
		if !view.Enabled() {
			return nil
		}
		for _, message := range errs[item.ID] {
			if err := r.error(ctx, fmt.Sprintf("%s: %s", displayLabel(item), message)); err != nil {
				return err
			}
		}
		return r.promptInput(ctx, container, item)
	default:
		return nil
	}
}

func (r *Renderer) promptInstances(ctx context.Context, container *runtime.Container, view *runtime.View, errs map[string][]string) error {
	manager := view.InstanceManager()
	if manager == nil {
		return fmt.Errorf("tui: %q has no instance manager", view.ID())
	}
	label := displayLabel(view.Model())

	for idx, instance := range view.Children() {
		if err := r.promptInstance(ctx, container, instance, label, idx, errs); err != nil {
			return err
		}
	}

	for {
		options := make([]string, 0, 3)
		addOption := "Add " + label
		removeOption := "Remove last " + label
		if manager.CanAdd() {
			options = append(options, addOption)
		}
		if manager.CanRemove() {
			options = append(options, removeOption)
		}
		options = append(options, continueOption)
		if len(options) == 1 {
			return nil
		}

		choice, err := r.driver.Select(ctx, SelectConfig{
			Message:      fmt.Sprintf("%s (%s)", label, occurrence(manager.Count(), manager.MinOccur(), manager.MaxOccur())),
			Options:      options,
			DefaultIndex: len(options) - 1,
		})
		if err != nil {
			return err
		}
		if choice < 0 || choice >= len(options) {
			return fmt.Errorf("tui: invalid selection %d", choice)
		}

		switch options[choice] {
		case addOption:
			if _, err := container.AddInstance(view.ID()); err != nil {
				return err
			}
			children := view.Children()
			last := children[len(children)-1]
			if err := r.promptInstance(ctx, container, last, label, len(children)-1, errs); err != nil {
				return err
			}
		case removeOption:
			if _, err := container.RemoveInstance(view.ID()); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (r *Renderer) promptInstance(ctx context.Context, container *runtime.Container, instance *runtime.View, label string, idx int, errs map[string][]string) error {
	if err := r.info(ctx, fmt.Sprintf("%s #%d", label, idx+1)); err != nil {
		return err
	}
	for _, child := range instance.Children() {
		if err := r.promptView(ctx, container, child, errs); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptInput(ctx context.Context, container *runtime.Container, item *model.Item) error {
	label := displayLabel(item)
	if item.Required {
		label += " *"
	}

	if item.FieldType == model.FieldTypeCheckbox {
		current, _ := item.Value.(bool)
		checked, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: r.prompt(label),
			Default: current,
			Help:    item.ShortDescription,
		})
		if err != nil {
			return err
		}
		return container.SetValue(item.ID, checked)
	}

	raw, err := r.driver.Input(ctx, InputConfig{
		Message: r.prompt(label),
		Default: formatValue(item.Value),
		Help:    displayHelp(item),
		Validator: func(answer string) error {
			messages := validation.CheckValue(item, parseValue(item, answer))
			if len(messages) == 0 {
				return nil
			}
			return errors.New(strings.Join(messages, " "))
		},
	})
	if err != nil {
		return err
	}
	return container.SetValue(item.ID, parseValue(item, raw))
}

func (r *Renderer) prompt(label string) string {
	return r.theme.PromptPrefix + label
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) error(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func isInstance(view *runtime.View) bool {
	parent := view.Parent()
	return parent != nil && parent.Model().FieldType == model.FieldTypeInstanceManager
}

func displayLabel(item *model.Item) string {
	if item.Label != "" {
		return item.Label
	}
	return item.Name
}

func displayHelp(item *model.Item) string {
	if item.ShortDescription != "" {
		return item.ShortDescription
	}
	return item.Placeholder
}

func occurrence(count, minOccur, maxOccur int) string {
	if maxOccur == model.Unbounded {
		return fmt.Sprintf("%d, at least %d", count, minOccur)
	}
	return fmt.Sprintf("%d of %d-%d", count, minOccur, maxOccur)
}

// parseValue converts a prompt answer into the value stored on item. Empty
// answers clear the value.
func parseValue(item *model.Item, raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if item.FieldType == model.FieldTypeNumberInput {
		if n, ok := validation.ToNumber(trimmed); ok {
			return n
		}
	}
	return trimmed
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			flatten(joinKey(prefix, key), val, out)
		}
	case []any:
		for idx, val := range v {
			flatten(fmt.Sprintf("%s[%d]", prefix, idx), val, out)
		}
	default:
		out.Set(prefix, formatValue(v))
	}
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			writePretty(b, joinKey(prefix, key), v[key])
		}
	case []any:
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%s\n", prefix, formatValue(v))
		}
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
