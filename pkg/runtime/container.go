package runtime

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/goliatone/go-formruntime/pkg/events"
	"github.com/goliatone/go-formruntime/pkg/instance"
	"github.com/goliatone/go-formruntime/pkg/model"
	"github.com/goliatone/go-formruntime/pkg/rules"
)

// Option configures a Container.
type Option func(*Container)

// WithIDGenerator sets the generator used when instance managers clone their
// template. Use the generator the form was built with.
func WithIDGenerator(ids model.IDGenerator) Option {
	return func(c *Container) {
		if ids != nil {
			c.ids = ids
		}
	}
}

// WithDispatcher shares an existing dispatcher instead of creating one.
func WithDispatcher(d *events.Dispatcher) Option {
	return func(c *Container) {
		if d != nil {
			c.events = d
		}
	}
}

// PropertyChange is the Detail payload of ModelChanged events.
type PropertyChange struct {
	ID       string
	Property string
	Previous any
	Current  any
}

// Container is the form runtime: it owns the form model, the view tree that
// mirrors it and one instance manager per repeatable panel. A Container is not
// safe for concurrent use.
type Container struct {
	form     *model.Form
	roots    []*View
	fields   map[string]*View
	managers map[string]*instance.Manager
	events   *events.Dispatcher
	ids      model.IDGenerator

	rules         rules.Evaluator
	ruleExtras    map[string]any
	ruleErr       error
	applyingRules bool
}

// New builds the view tree for form.
func New(form *model.Form, options ...Option) (*Container, error) {
	if form == nil {
		return nil, errors.New("runtime: form is required")
	}

	c := &Container{
		form:     form,
		fields:   make(map[string]*View),
		managers: make(map[string]*instance.Manager),
		ids:      model.UUIDGenerator(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.events == nil {
		c.events = events.NewDispatcher()
	}

	for _, item := range form.Items {
		view, err := c.build(item, nil)
		if err != nil {
			return nil, err
		}
		c.roots = append(c.roots, view)
	}
	if err := c.initRules(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) build(item *model.Item, parent *View) (view *View, err error) {
	if item == nil {
		return nil, errors.New("runtime: nil item")
	}
	if item.ID == "" {
		return nil, fmt.Errorf("runtime: %s %q has no id", item.FieldType, item.Name)
	}
	if _, exists := c.fields[item.ID]; exists {
		return nil, fmt.Errorf("runtime: duplicate id %q", item.ID)
	}

	view = &View{model: item, parent: parent}
	c.fields[item.ID] = view
	defer func() {
		if err != nil {
			c.unregister(view)
			view = nil
		}
	}()

	if item.FieldType == model.FieldTypeInstanceManager {
		manager, err := instance.NewManager(item, &instanceViews{container: c, owner: view},
			instance.WithDispatcher(c.events),
			instance.WithIDGenerator(c.ids),
		)
		if err != nil {
			return view, fmt.Errorf("runtime: %w", err)
		}
		view.manager = manager
		c.managers[item.ID] = manager
		return view, nil
	}

	for _, child := range item.Items {
		childView, err := c.build(child, view)
		if err != nil {
			return view, err
		}
		view.children = append(view.children, childView)
	}
	return view, nil
}

func (c *Container) unregister(view *View) {
	for _, child := range view.children {
		c.unregister(child)
	}
	delete(c.fields, view.ID())
	delete(c.managers, view.ID())
}

// instanceViews is the ViewFactory handed to each instance manager. New views
// are attached to owner and indexed in the container.
type instanceViews struct {
	container *Container
	owner     *View
}

func (f *instanceViews) CreateChildView(item *model.Item) (instance.View, error) {
	view, err := f.container.build(item, f.owner)
	if err != nil {
		return nil, err
	}
	f.owner.children = append(f.owner.children, view)
	return view, nil
}

func (f *instanceViews) DestroyChildView(v instance.View) error {
	view, ok := v.(*View)
	if !ok || view == nil {
		return fmt.Errorf("runtime: unexpected view type %T", v)
	}
	for i, child := range f.owner.children {
		if child != view {
			continue
		}
		f.owner.children = append(f.owner.children[:i], f.owner.children[i+1:]...)
		f.container.unregister(view)
		view.parent = nil
		return nil
	}
	return fmt.Errorf("%w: %q is not a child of %q", ErrFieldNotFound, view.ID(), f.owner.ID())
}

// Model returns the form model.
func (c *Container) Model() *model.Form {
	return c.form
}

// ID returns the form id.
func (c *Container) ID() string {
	return c.form.ID
}

// Children returns the top-level views.
func (c *Container) Children() []*View {
	return append([]*View(nil), c.roots...)
}

// AllFields returns every view keyed by id. The map is a copy.
func (c *Container) AllFields() map[string]*View {
	out := make(map[string]*View, len(c.fields))
	for id, view := range c.fields {
		out[id] = view
	}
	return out
}

// Field returns the view with the given id.
func (c *Container) Field(id string) (*View, error) {
	view, ok := c.fields[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	return view, nil
}

// Element returns the model item with the given id.
func (c *Container) Element(id string) (*model.Item, error) {
	view, err := c.Field(id)
	if err != nil {
		return nil, err
	}
	return view.model, nil
}

// InstanceManager resolves the manager for an instance-manager id or for the
// id of one of its instances.
func (c *Container) InstanceManager(id string) (*instance.Manager, error) {
	if manager, ok := c.managers[id]; ok {
		return manager, nil
	}
	view, err := c.Field(id)
	if err != nil {
		return nil, err
	}
	if manager := view.InstanceManager(); manager != nil {
		return manager, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotRepeatable, id)
}

// InstanceManagers returns all managers sorted by id.
func (c *Container) InstanceManagers() []*instance.Manager {
	out := make([]*instance.Manager, 0, len(c.managers))
	for _, manager := range c.managers {
		out = append(out, manager)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// AddInstance adds an instance to the manager resolved from id.
func (c *Container) AddInstance(id string) (bool, error) {
	manager, err := c.InstanceManager(id)
	if err != nil {
		return false, err
	}
	return manager.AddInstance()
}

// RemoveInstance removes the last instance of the manager resolved from id.
func (c *Container) RemoveInstance(id string) (bool, error) {
	manager, err := c.InstanceManager(id)
	if err != nil {
		return false, err
	}
	return manager.RemoveInstance()
}

// On registers a listener; see events.Dispatcher.On.
func (c *Container) On(name string, listener events.Listener) func() {
	return c.events.On(name, listener)
}

// Events returns the dispatcher used by the container.
func (c *Container) Events() *events.Dispatcher {
	return c.events
}

// SetVisible changes the visible property of an item.
func (c *Container) SetVisible(id string, visible bool) error {
	return c.setProperty(id, "visible", func(item *model.Item) (any, any, bool) {
		previous := item.Visible
		item.Visible = visible
		return previous, visible, previous != visible
	})
}

// SetEnabled changes the enabled property of an item.
func (c *Container) SetEnabled(id string, enabled bool) error {
	return c.setProperty(id, "enabled", func(item *model.Item) (any, any, bool) {
		previous := item.Enabled
		item.Enabled = enabled
		return previous, enabled, previous != enabled
	})
}

// SetValue changes the value of an input item.
func (c *Container) SetValue(id string, value any) error {
	return c.setProperty(id, "value", func(item *model.Item) (any, any, bool) {
		previous := item.Value
		if reflect.DeepEqual(previous, value) {
			return previous, value, false
		}
		item.Value = value
		return previous, value, true
	})
}

func (c *Container) setProperty(id, property string, apply func(*model.Item) (any, any, bool)) error {
	item, err := c.Element(id)
	if err != nil {
		return err
	}
	if property == "value" && !item.FieldType.IsInput() {
		return fmt.Errorf("%w: %q is a %s", ErrNotInput, id, item.FieldType)
	}
	previous, current, changed := apply(item)
	if !changed {
		return nil
	}
	c.events.Dispatch(events.Event{
		Name:   events.ModelChanged,
		Target: id,
		Detail: PropertyChange{ID: id, Property: property, Previous: previous, Current: current},
	})
	return nil
}
