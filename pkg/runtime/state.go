package runtime

import "github.com/goliatone/go-formruntime/pkg/model"

// NodeState is a serialisable snapshot of a view and its subtree.
type NodeState struct {
	ID        string          `json:"id"`
	Name      string          `json:"name,omitempty"`
	FieldType model.FieldType `json:"fieldType"`
	Component string          `json:"component"`
	Label     string          `json:"label,omitempty"`
	Visible   bool            `json:"visible"`
	Enabled   bool            `json:"enabled"`
	Value     any             `json:"value,omitempty"`
	Count     *int            `json:"count,omitempty"`
	MinOccur  *int            `json:"minOccur,omitempty"`
	MaxOccur  *int            `json:"maxOccur,omitempty"`
	Items     []NodeState     `json:"items,omitempty"`
}

// FormState is a serialisable snapshot of the whole container.
type FormState struct {
	ID       string         `json:"id"`
	Title    string         `json:"title,omitempty"`
	Metadata model.Metadata `json:"metadata"`
	Items    []NodeState    `json:"items"`
}

// State captures the current state of the runtime.
func (c *Container) State() FormState {
	out := FormState{
		ID:       c.form.ID,
		Title:    c.form.Title,
		Metadata: c.form.Metadata,
		Items:    make([]NodeState, 0, len(c.roots)),
	}
	for _, view := range c.roots {
		out.Items = append(out.Items, nodeState(view))
	}
	return out
}

func nodeState(view *View) NodeState {
	item := view.model
	state := NodeState{
		ID:        item.ID,
		Name:      item.Name,
		FieldType: item.FieldType,
		Component: view.Component(),
		Label:     item.Label,
		Visible:   item.Visible,
		Enabled:   item.Enabled,
		Value:     item.Value,
	}
	if manager := view.manager; manager != nil {
		count, minOccur, maxOccur := manager.Count(), manager.MinOccur(), manager.MaxOccur()
		state.Count, state.MinOccur, state.MaxOccur = &count, &minOccur, &maxOccur
	}
	for _, child := range view.children {
		state.Items = append(state.Items, nodeState(child))
	}
	return state
}

// Data exports the values of the form keyed by field name. Named panels nest
// their fields in a map, instance managers produce a list with one map per
// instance, unnamed panels flatten into their parent.
func (c *Container) Data() map[string]any {
	out := make(map[string]any)
	for _, view := range c.roots {
		collectData(view, out)
	}
	return out
}

func collectData(view *View, scope map[string]any) {
	item := view.model
	switch item.FieldType {
	case model.FieldTypePanel:
		target := scope
		if item.Name != "" {
			target = make(map[string]any)
		}
		for _, child := range view.children {
			collectData(child, target)
		}
		if item.Name != "" && len(target) > 0 {
			scope[item.Name] = target
		}
	case model.FieldTypeInstanceManager:
		entries := make([]any, 0, len(view.children))
		for _, instanceView := range view.children {
			values := make(map[string]any)
			for _, child := range instanceView.children {
				collectData(child, values)
			}
			entries = append(entries, values)
		}
		if item.Name != "" {
			scope[item.Name] = entries
		}
	default:
		if item.FieldType.IsInput() && item.Name != "" && item.Value != nil {
			scope[item.Name] = item.Value
		}
	}
}
