package runtime

import (
	"fmt"

	"github.com/goliatone/go-formruntime/pkg/model"
)

// Verify checks that the view tree mirrors the model: every view has as many
// children as its item has Items, child views reference the items at the same
// index, instance managers agree with their node, and the field index holds
// exactly the items reachable from the form.
func (c *Container) Verify() error {
	if len(c.roots) != len(c.form.Items) {
		return fmt.Errorf("%w: form has %d items but %d views", ErrOutOfSync, len(c.form.Items), len(c.roots))
	}
	for i, view := range c.roots {
		if err := verifyView(view, c.form.Items[i], nil); err != nil {
			return err
		}
	}

	if n := c.form.Count(); n != len(c.fields) {
		return fmt.Errorf("%w: model has %d items but %d views are indexed", ErrOutOfSync, n, len(c.fields))
	}
	var missing string
	c.form.Walk(func(item, _ *model.Item) bool {
		view, ok := c.fields[item.ID]
		if !ok || view.model != item {
			missing = item.ID
			return false
		}
		return true
	})
	if missing != "" {
		return fmt.Errorf("%w: item %q is not indexed", ErrOutOfSync, missing)
	}
	return nil
}

func verifyView(view *View, item *model.Item, parent *View) error {
	if view.model != item {
		return fmt.Errorf("%w: view %q does not reference item %q", ErrOutOfSync, view.ID(), item.ID)
	}
	if view.parent != parent {
		return fmt.Errorf("%w: view %q has the wrong parent", ErrOutOfSync, view.ID())
	}
	if len(view.children) != len(item.Items) {
		return fmt.Errorf("%w: view %q has %d children but item has %d items", ErrOutOfSync, view.ID(), len(view.children), len(item.Items))
	}
	if view.manager != nil {
		if view.manager.Count() != len(item.Items) {
			return fmt.Errorf("%w: manager %q counts %d instances but item has %d", ErrOutOfSync, view.ID(), view.manager.Count(), len(item.Items))
		}
		for i, child := range view.manager.Children() {
			if child.ID() != item.Items[i].ID {
				return fmt.Errorf("%w: manager %q instance %d is %q, model has %q", ErrOutOfSync, view.ID(), i, child.ID(), item.Items[i].ID)
			}
		}
	}
	for i, child := range view.children {
		if err := verifyView(child, item.Items[i], view); err != nil {
			return err
		}
	}
	return nil
}
