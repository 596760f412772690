package model

// WalkFunc is called for every item in depth-first order. Parent is nil for
// top-level items. Returning false stops the walk.
type WalkFunc func(item, parent *Item) bool

// Walk visits every item of the form depth-first in document order.
func (f *Form) Walk(fn WalkFunc) {
	if f == nil || fn == nil {
		return
	}
	for _, item := range f.Items {
		if !walk(item, nil, fn) {
			return
		}
	}
}

// Walk visits the item and its descendants depth-first.
func (i *Item) Walk(fn WalkFunc) {
	if i == nil || fn == nil {
		return
	}
	walk(i, nil, fn)
}

func walk(item, parent *Item, fn WalkFunc) bool {
	if item == nil {
		return true
	}
	if !fn(item, parent) {
		return false
	}
	for _, child := range item.Items {
		if !walk(child, item, fn) {
			return false
		}
	}
	return true
}

// Element returns the item with the given id, or nil.
func (f *Form) Element(id string) *Item {
	var found *Item
	f.Walk(func(item, _ *Item) bool {
		if item.ID == id {
			found = item
			return false
		}
		return true
	})
	return found
}

// Parent returns the parent of the item with the given id. The boolean is
// false when no such item exists; a nil parent with true means the item sits
// directly under the form container.
func (f *Form) Parent(id string) (*Item, bool) {
	var (
		parent *Item
		ok     bool
	)
	f.Walk(func(item, p *Item) bool {
		if item.ID == id {
			parent, ok = p, true
			return false
		}
		return true
	})
	return parent, ok
}

// Count returns the number of items in the form tree.
func (f *Form) Count() int {
	n := 0
	f.Walk(func(*Item, *Item) bool {
		n++
		return true
	})
	return n
}

// Clone returns a deep copy of the item. When ids is non-nil every copied node
// receives a fresh id; otherwise ids are preserved.
func (i *Item) Clone(ids IDGenerator) *Item {
	if i == nil {
		return nil
	}
	out := *i
	if ids != nil {
		out.ID = ids.NewID(i.FieldType)
	}
	out.Value = cloneValue(i.Value)
	if i.Number != nil {
		number := *i.Number
		out.Number = &number
	}
	if i.Image != nil {
		image := *i.Image
		out.Image = &image
	}
	if len(i.Properties) > 0 {
		out.Properties = make(map[string]string, len(i.Properties))
		for k, v := range i.Properties {
			out.Properties[k] = v
		}
	}
	if len(i.Items) > 0 {
		out.Items = make([]*Item, len(i.Items))
		for idx, child := range i.Items {
			out.Items[idx] = child.Clone(ids)
		}
	}
	out.Template = i.Template.Clone(nil)
	return &out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = cloneValue(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = cloneValue(v)
		}
		return clone
	default:
		return typed
	}
}
