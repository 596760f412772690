// Package instance implements the instance manager of a repeatable panel: a
// bounded counter over the panel instances that keeps the instance-manager
// model node and its child views in one-to-one correspondence.
//
// The manager never touches views directly. Creating and destroying the view
// of an instance goes through the ViewFactory capability, so the counter
// logic can run without any rendering runtime.
package instance

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formruntime/pkg/events"
	"github.com/goliatone/go-formruntime/pkg/model"
)

// View is the minimal contract a child view must satisfy.
type View interface {
	ID() string
}

// ViewFactory creates and destroys the views of panel instances.
type ViewFactory interface {
	CreateChildView(item *model.Item) (View, error)
	DestroyChildView(view View) error
}

// Dispatcher receives the notifications emitted on count changes.
type Dispatcher interface {
	Dispatch(events.Event)
}

// Change is the Detail payload of PanelInstanceAdded and PanelInstanceRemoved
// events.
type Change struct {
	Manager *Manager
	View    View
	Item    *model.Item
	Index   int
	Count   int
}

// Option configures a Manager.
type Option func(*Manager)

// WithDispatcher routes notifications to d.
func WithDispatcher(d Dispatcher) Option {
	return func(m *Manager) {
		if d != nil {
			m.dispatcher = d
		}
	}
}

// WithIDGenerator sets the generator used for cloned instances.
func WithIDGenerator(ids model.IDGenerator) Option {
	return func(m *Manager) {
		if ids != nil {
			m.ids = ids
		}
	}
}

// Manager owns the instances of one repeatable panel. It is not safe for
// concurrent use; callers serialise AddInstance and RemoveInstance.
type Manager struct {
	node       *model.Item
	factory    ViewFactory
	dispatcher Dispatcher
	ids        model.IDGenerator
	counter    Counter
	children   []View
}

// NewManager wraps an instance-manager node. The views of the node's existing
// instances are created through factory before NewManager returns.
func NewManager(node *model.Item, factory ViewFactory, options ...Option) (*Manager, error) {
	if node == nil {
		return nil, errors.New("instance: model node is required")
	}
	if node.FieldType != model.FieldTypeInstanceManager {
		return nil, fmt.Errorf("instance: node %q is a %s, not an instance manager", node.ID, node.FieldType)
	}
	if node.Template == nil {
		return nil, fmt.Errorf("instance: node %q has no template", node.ID)
	}
	if factory == nil {
		return nil, errors.New("instance: view factory is required")
	}

	counter, err := NewCounter(len(node.Items), node.MinOccur, node.MaxOccur)
	if err != nil {
		return nil, fmt.Errorf("instance: node %q: %w", node.ID, err)
	}

	m := &Manager{
		node:    node,
		factory: factory,
		ids:     model.UUIDGenerator(),
		counter: counter,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(m)
	}

	for _, item := range node.Items {
		view, err := factory.CreateChildView(item)
		if err != nil {
			return nil, fmt.Errorf("instance: create view for %q: %w", item.ID, err)
		}
		m.children = append(m.children, view)
	}
	return m, nil
}

// ID returns the id of the instance-manager node.
func (m *Manager) ID() string { return m.node.ID }

// Model returns the instance-manager node.
func (m *Manager) Model() *model.Item { return m.node }

// Children returns the instance views in model order.
func (m *Manager) Children() []View {
	return append([]View(nil), m.children...)
}

// Count returns the number of instances.
func (m *Manager) Count() int { return m.counter.Count() }

// MinOccur returns the lower bound.
func (m *Manager) MinOccur() int { return m.counter.Min() }

// MaxOccur returns the upper bound, or model.Unbounded.
func (m *Manager) MaxOccur() int { return m.counter.Max() }

// CanAdd reports whether AddInstance would add an instance.
func (m *Manager) CanAdd() bool { return m.counter.CanAdd() }

// CanRemove reports whether RemoveInstance would remove an instance.
func (m *Manager) CanRemove() bool { return m.counter.CanRemove() }

// AddInstance appends a clone of the template and its view. At maxOccur it is
// a no-op and returns false without notifying. When the view cannot be
// created the model append is undone and the error returned.
func (m *Manager) AddInstance() (bool, error) {
	next, ok := m.counter.Increment()
	if !ok {
		return false, nil
	}

	item := m.node.Template.Clone(m.ids)
	m.node.Items = append(m.node.Items, item)

	view, err := m.factory.CreateChildView(item)
	if err != nil {
		m.node.Items = m.node.Items[:len(m.node.Items)-1]
		return false, fmt.Errorf("instance: create view for %q: %w", item.ID, err)
	}

	m.children = append(m.children, view)
	m.counter = next
	m.notify(events.PanelInstanceAdded, view, item, len(m.children)-1)
	return true, nil
}

// RemoveInstance removes the last instance and its view. At minOccur it is a
// no-op and returns false without notifying. When the view cannot be
// destroyed the model item is restored and the error returned.
func (m *Manager) RemoveInstance() (bool, error) {
	next, ok := m.counter.Decrement()
	if !ok {
		return false, nil
	}

	last := len(m.node.Items) - 1
	item := m.node.Items[last]
	view := m.children[last]
	m.node.Items = m.node.Items[:last]

	if err := m.factory.DestroyChildView(view); err != nil {
		m.node.Items = append(m.node.Items, item)
		return false, fmt.Errorf("instance: destroy view for %q: %w", item.ID, err)
	}

	m.children = m.children[:last]
	m.counter = next
	m.notify(events.PanelInstanceRemoved, view, item, last)
	return true, nil
}

func (m *Manager) notify(name string, view View, item *model.Item, index int) {
	if m.dispatcher == nil {
		return
	}
	m.dispatcher.Dispatch(events.Event{
		Name:   name,
		Target: m.node.ID,
		Detail: Change{
			Manager: m,
			View:    view,
			Item:    item,
			Index:   index,
			Count:   m.counter.Count(),
		},
	})
}
