package events

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDispatcherDeliversInRegistrationOrder(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	var got []string
	d.On(PanelInstanceAdded, func(e Event) { got = append(got, "first:"+e.Target) })
	d.On(PanelInstanceAdded, func(e Event) { got = append(got, "second:"+e.Target) })
	d.On(Any, func(e Event) { got = append(got, "any:"+e.Name) })
	d.On(PanelInstanceRemoved, func(Event) { got = append(got, "removed") })

	d.Dispatch(Event{Name: PanelInstanceAdded, Target: "panel-1"})

	want := []string{"first:panel-1", "second:panel-1", "any:" + PanelInstanceAdded}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("delivery mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatcherUnsubscribe(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	calls := 0
	off := d.On(ModelChanged, func(Event) { calls++ })

	d.Dispatch(Event{Name: ModelChanged})
	off()
	off()
	d.Dispatch(Event{Name: ModelChanged})

	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if n := d.Count(ModelChanged); n != 0 {
		t.Fatalf("expected no listeners left, got %d", n)
	}
}

func TestDispatcherListenerCanRemoveItself(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	calls := 0
	var off func()
	off = d.On(PanelInstanceRemoved, func(Event) {
		calls++
		off()
	})

	d.Dispatch(Event{Name: PanelInstanceRemoved})
	d.Dispatch(Event{Name: PanelInstanceRemoved})

	if calls != 1 {
		t.Fatalf("expected listener to run once, ran %d times", calls)
	}
}

func TestDispatcherOnce(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	calls := 0
	d.Once(PanelInstanceAdded, func(Event) { calls++ })

	d.Dispatch(Event{Name: PanelInstanceAdded})
	d.Dispatch(Event{Name: PanelInstanceAdded})

	if calls != 1 {
		t.Fatalf("expected once listener to run once, ran %d times", calls)
	}
	if names := d.Names(); len(names) != 0 {
		t.Fatalf("expected no registered names, got %v", names)
	}
}

func TestDispatcherIgnoresInvalidRegistrations(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	d.On("", func(Event) {})
	d.On(ModelChanged, nil)
	d.Dispatch(Event{})

	if names := d.Names(); len(names) != 0 {
		t.Fatalf("expected no registered names, got %v", names)
	}

	var nilDispatcher *Dispatcher
	nilDispatcher.Dispatch(Event{Name: ModelChanged})
	nilDispatcher.On(ModelChanged, func(Event) {})()
}
