// Package events provides the synchronous dispatcher the runtime uses to
// notify listeners about instance and model changes. Listeners run on the
// caller's goroutine before the mutating call returns.
package events

import (
	"sort"
	"strings"
	"sync"
)

// Event names dispatched by the runtime.
const (
	PanelInstanceAdded   = "AF_PanelInstanceAdded"
	PanelInstanceRemoved = "AF_PanelInstanceRemoved"
	ModelChanged         = "AF_ModelChanged"
)

// Any subscribes a listener to every event name.
const Any = "*"

// Event is a single notification. Target is the id of the node that changed;
// Detail carries the event specific payload.
type Event struct {
	Name   string
	Target string
	Detail any
}

// Listener receives dispatched events.
type Listener func(Event)

type subscription struct {
	id       int
	listener Listener
	once     bool
}

// Dispatcher fans events out to registered listeners. Registration is safe for
// concurrent use; dispatch is synchronous and runs listeners in registration
// order, name-specific listeners before Any listeners.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]subscription
	next      int
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[string][]subscription)}
}

// On registers a listener for the named event (or Any) and returns a function
// that removes it. Calling the returned function more than once is harmless.
func (d *Dispatcher) On(name string, listener Listener) func() {
	return d.subscribe(name, listener, false)
}

// Once registers a listener that is removed after its first delivery.
func (d *Dispatcher) Once(name string, listener Listener) func() {
	return d.subscribe(name, listener, true)
}

func (d *Dispatcher) subscribe(name string, listener Listener, once bool) func() {
	name = strings.TrimSpace(name)
	if d == nil || listener == nil || name == "" {
		return func() {}
	}

	d.mu.Lock()
	d.next++
	id := d.next
	d.listeners[name] = append(d.listeners[name], subscription{id: id, listener: listener, once: once})
	d.mu.Unlock()

	return func() { d.remove(name, id) }
}

func (d *Dispatcher) remove(name string, id int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	subs := d.listeners[name]
	for i, sub := range subs {
		if sub.id != id {
			continue
		}
		d.listeners[name] = append(subs[:i:i], subs[i+1:]...)
		if len(d.listeners[name]) == 0 {
			delete(d.listeners, name)
		}
		return
	}
}

// Dispatch delivers the event. Listeners may register or remove listeners
// while being called; changes apply to the next dispatch.
func (d *Dispatcher) Dispatch(event Event) {
	if d == nil || event.Name == "" {
		return
	}

	d.mu.RLock()
	named := append([]subscription(nil), d.listeners[event.Name]...)
	var wildcard []subscription
	if event.Name != Any {
		wildcard = append(wildcard, d.listeners[Any]...)
	}
	d.mu.RUnlock()

	for _, group := range []struct {
		name string
		subs []subscription
	}{{event.Name, named}, {Any, wildcard}} {
		for _, sub := range group.subs {
			if sub.once {
				d.remove(group.name, sub.id)
			}
			sub.listener(event)
		}
	}
}

// Names returns the sorted event names that currently have listeners.
func (d *Dispatcher) Names() []string {
	if d == nil {
		return nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.listeners))
	for name := range d.listeners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns how many listeners are registered for name.
func (d *Dispatcher) Count(name string) int {
	if d == nil {
		return 0
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[name])
}
