package runtime

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formruntime/pkg/events"
	"github.com/goliatone/go-formruntime/pkg/model"
	"github.com/goliatone/go-formruntime/pkg/rules"
)

// WithRules evaluates the visibleWhen and enabledWhen rules of every item with
// evaluator. Rules run once when the container is built and again after every
// value change and instance add or remove. extras is exposed to rules under
// the "extras." prefix.
func WithRules(evaluator rules.Evaluator, extras map[string]any) Option {
	return func(c *Container) {
		c.rules = evaluator
		c.ruleExtras = extras
	}
}

func (c *Container) initRules() error {
	if c.rules == nil {
		return nil
	}
	if compiler, ok := c.rules.(rules.Compiler); ok {
		if err := compileRules(compiler, c.form.Items); err != nil {
			return err
		}
	}

	// Any listeners run after named ones, so subscribers see the triggering
	// change before the changes the rules derive from it.
	c.events.On(events.Any, func(e events.Event) {
		switch e.Name {
		case events.PanelInstanceAdded, events.PanelInstanceRemoved:
		case events.ModelChanged:
			if change, ok := e.Detail.(PropertyChange); !ok || change.Property != "value" {
				return
			}
		default:
			return
		}
		c.ruleErr = c.ApplyRules()
	})
	return c.ApplyRules()
}

func compileRules(compiler rules.Compiler, items []*model.Item) error {
	for _, item := range items {
		if item == nil {
			continue
		}
		for _, rule := range []string{item.VisibleWhen, item.EnabledWhen} {
			if err := compiler.Compile(rule); err != nil {
				return fmt.Errorf("runtime: rule of %q: %w", item.Name, err)
			}
		}
		if err := compileRules(compiler, item.Items); err != nil {
			return err
		}
		if item.Template != nil {
			if err := compileRules(compiler, []*model.Item{item.Template}); err != nil {
				return err
			}
		}
	}
	return nil
}

// ApplyRules evaluates every rule against the current data and updates the
// visible and enabled properties it controls. Changes dispatch AF_ModelChanged
// like any other property change.
func (c *Container) ApplyRules() error {
	if c.rules == nil || c.applyingRules {
		return nil
	}
	c.applyingRules = true
	defer func() { c.applyingRules = false }()

	data := c.Data()
	var errs []error
	for _, view := range c.roots {
		c.applyRules(view, data, nil, &errs)
	}
	return errors.Join(errs...)
}

// RuleError returns the error of the last rule pass triggered by a change.
func (c *Container) RuleError() error {
	return c.ruleErr
}

func (c *Container) applyRules(view *View, data, scope map[string]any, errs *[]error) {
	item := view.model
	ctx := rules.Context{Values: data, Scope: scope, Extras: c.ruleExtras}

	if item.VisibleWhen != "" {
		if ok, err := c.rules.Eval(item.Name, item.VisibleWhen, ctx); err != nil {
			*errs = append(*errs, fmt.Errorf("runtime: visibleWhen of %q: %w", item.ID, err))
		} else if err := c.SetVisible(item.ID, ok); err != nil {
			*errs = append(*errs, err)
		}
	}
	if item.EnabledWhen != "" {
		if ok, err := c.rules.Eval(item.Name, item.EnabledWhen, ctx); err != nil {
			*errs = append(*errs, fmt.Errorf("runtime: enabledWhen of %q: %w", item.ID, err))
		} else if err := c.SetEnabled(item.ID, ok); err != nil {
			*errs = append(*errs, err)
		}
	}

	if item.FieldType == model.FieldTypeInstanceManager {
		for _, instanceView := range view.children {
			values := make(map[string]any)
			for _, child := range instanceView.children {
				collectData(child, values)
			}
			c.applyRules(instanceView, data, values, errs)
		}
		return
	}
	for _, child := range view.children {
		c.applyRules(child, data, scope, errs)
	}
}
