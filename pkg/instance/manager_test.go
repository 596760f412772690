package instance

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formruntime/pkg/events"
	"github.com/goliatone/go-formruntime/pkg/model"
)

type fakeView struct {
	id string
}

func (v *fakeView) ID() string { return v.id }

type fakeFactory struct {
	created   []string
	destroyed []string
	live      []*fakeView
	failNext  error
}

func (f *fakeFactory) CreateChildView(item *model.Item) (View, error) {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return nil, err
	}
	view := &fakeView{id: item.ID}
	f.created = append(f.created, item.ID)
	f.live = append(f.live, view)
	return view, nil
}

func (f *fakeFactory) DestroyChildView(view View) error {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.destroyed = append(f.destroyed, view.ID())
	for i, v := range f.live {
		if v.ID() == view.ID() {
			f.live = append(f.live[:i], f.live[i+1:]...)
			break
		}
	}
	return nil
}

type recorder struct {
	events []events.Event
}

func (r *recorder) Dispatch(e events.Event) { r.events = append(r.events, e) }

func repeatableNode(t *testing.T, ids model.IDGenerator, count, minOccur, maxOccur int) *model.Item {
	t.Helper()

	template := &model.Item{
		FieldType: model.FieldTypePanel,
		Name:      "address",
		Visible:   true,
		Enabled:   true,
		Items: []*model.Item{
			{FieldType: model.FieldTypeTextInput, Name: "street", Visible: true, Enabled: true},
			{FieldType: model.FieldTypeNumberInput, Name: "zip", Visible: true, Enabled: true},
		},
	}
	node := &model.Item{
		ID:        "instance-manager-0",
		FieldType: model.FieldTypeInstanceManager,
		Name:      "address",
		MinOccur:  minOccur,
		MaxOccur:  maxOccur,
		Template:  template,
	}
	for i := 0; i < count; i++ {
		node.Items = append(node.Items, template.Clone(ids))
	}
	return node
}

func assertInSync(t *testing.T, m *Manager, factory *fakeFactory, count int) {
	t.Helper()

	if got := m.Count(); got != count {
		t.Fatalf("count: want %d got %d", count, got)
	}
	if got := len(m.Model().Items); got != count {
		t.Fatalf("model items: want %d got %d", count, got)
	}
	children := m.Children()
	if len(children) != len(m.Model().Items) {
		t.Fatalf("views %d != model items %d", len(children), len(m.Model().Items))
	}
	for i, child := range children {
		if child.ID() != m.Model().Items[i].ID {
			t.Fatalf("view %d id %q does not match model id %q", i, child.ID(), m.Model().Items[i].ID)
		}
	}
	if len(factory.live) != count {
		t.Fatalf("live views: want %d got %d", count, len(factory.live))
	}
}

func TestManagerAddUpToCapThenNoop(t *testing.T) {
	t.Parallel()

	ids := model.NewSequentialGenerator()
	factory := &fakeFactory{}
	rec := &recorder{}
	m, err := NewManager(repeatableNode(t, ids, 1, 0, 4), factory, WithDispatcher(rec), WithIDGenerator(ids))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	assertInSync(t, m, factory, 1)

	for want := 2; want <= 4; want++ {
		added, err := m.AddInstance()
		if err != nil {
			t.Fatalf("AddInstance: %v", err)
		}
		if !added {
			t.Fatalf("expected add to %d to succeed", want)
		}
		assertInSync(t, m, factory, want)
		if len(rec.events) != want-1 {
			t.Fatalf("expected %d events, got %d", want-1, len(rec.events))
		}
		last := rec.events[len(rec.events)-1]
		if last.Name != events.PanelInstanceAdded {
			t.Fatalf("unexpected event %q", last.Name)
		}
		change := last.Detail.(Change)
		if change.Count != want || change.Index != want-1 {
			t.Fatalf("unexpected change payload %+v", change)
		}
		if change.View.ID() != m.Model().Items[want-1].ID {
			t.Fatalf("event view %q is not the new instance", change.View.ID())
		}
	}

	added, err := m.AddInstance()
	if err != nil {
		t.Fatalf("AddInstance at cap: %v", err)
	}
	if added {
		t.Fatalf("expected add at cap to be a no-op")
	}
	assertInSync(t, m, factory, 4)
	if len(rec.events) != 3 {
		t.Fatalf("no-op add must not notify, got %d events", len(rec.events))
	}
}

func TestManagerRemoveDownToZeroThenReAdd(t *testing.T) {
	t.Parallel()

	ids := model.NewSequentialGenerator()
	factory := &fakeFactory{}
	rec := &recorder{}
	m, err := NewManager(repeatableNode(t, ids, 4, 0, 4), factory, WithDispatcher(rec), WithIDGenerator(ids))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	for want := 3; want >= 0; want-- {
		removed, err := m.RemoveInstance()
		if err != nil {
			t.Fatalf("RemoveInstance: %v", err)
		}
		if !removed {
			t.Fatalf("expected remove to %d to succeed", want)
		}
		assertInSync(t, m, factory, want)
	}

	removed, err := m.RemoveInstance()
	if err != nil {
		t.Fatalf("RemoveInstance at floor: %v", err)
	}
	if removed {
		t.Fatalf("expected remove at zero to be a no-op")
	}
	assertInSync(t, m, factory, 0)
	if len(rec.events) != 4 {
		t.Fatalf("expected 4 removal events, got %d", len(rec.events))
	}
	for _, e := range rec.events {
		if e.Name != events.PanelInstanceRemoved || e.Target != "instance-manager-0" {
			t.Fatalf("unexpected event %+v", e)
		}
	}

	added, err := m.AddInstance()
	if err != nil || !added {
		t.Fatalf("expected add from zero to succeed, added=%v err=%v", added, err)
	}
	assertInSync(t, m, factory, 1)
}

func TestManagerRemovesLastInstance(t *testing.T) {
	t.Parallel()

	ids := model.NewSequentialGenerator()
	factory := &fakeFactory{}
	m, err := NewManager(repeatableNode(t, ids, 3, 0, model.Unbounded), factory, WithIDGenerator(ids))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	lastID := m.Model().Items[2].ID

	if _, err := m.RemoveInstance(); err != nil {
		t.Fatalf("RemoveInstance: %v", err)
	}
	if diff := cmp.Diff([]string{lastID}, factory.destroyed); diff != "" {
		t.Fatalf("destroyed views mismatch (-want +got):\n%s", diff)
	}
}

func TestManagerMinOccurFloor(t *testing.T) {
	t.Parallel()

	ids := model.NewSequentialGenerator()
	factory := &fakeFactory{}
	rec := &recorder{}
	m, err := NewManager(repeatableNode(t, ids, 4, 4, model.Unbounded), factory, WithDispatcher(rec), WithIDGenerator(ids))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if added, _ := m.AddInstance(); !added {
		t.Fatalf("expected add above min to succeed")
	}
	assertInSync(t, m, factory, 5)
	if removed, _ := m.RemoveInstance(); !removed {
		t.Fatalf("expected remove to min to succeed")
	}
	assertInSync(t, m, factory, 4)
	if removed, _ := m.RemoveInstance(); removed {
		t.Fatalf("expected remove at min to be a no-op")
	}
	assertInSync(t, m, factory, 4)
	if len(rec.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(rec.events))
	}
}

func TestManagerClonesGetFreshIDs(t *testing.T) {
	t.Parallel()

	ids := model.NewSequentialGenerator()
	factory := &fakeFactory{}
	m, err := NewManager(repeatableNode(t, ids, 1, 0, model.Unbounded), factory, WithIDGenerator(ids))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if _, err := m.AddInstance(); err != nil {
		t.Fatalf("AddInstance: %v", err)
	}

	seen := map[string]bool{}
	m.Model().Walk(func(item, _ *model.Item) bool {
		if seen[item.ID] {
			t.Fatalf("duplicate id %q", item.ID)
		}
		seen[item.ID] = true
		return true
	})
	if m.Model().Template.ID != "" {
		t.Fatalf("template must stay detached from the tree, got id %q", m.Model().Template.ID)
	}
}

func TestManagerRollsBackWhenViewCreationFails(t *testing.T) {
	t.Parallel()

	ids := model.NewSequentialGenerator()
	factory := &fakeFactory{}
	rec := &recorder{}
	m, err := NewManager(repeatableNode(t, ids, 1, 0, 4), factory, WithDispatcher(rec), WithIDGenerator(ids))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	boom := errors.New("boom")
	factory.failNext = boom
	added, err := m.AddInstance()
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if added {
		t.Fatalf("failed add must report false")
	}
	assertInSync(t, m, factory, 1)

	factory.failNext = boom
	removed, err := m.RemoveInstance()
	if !errors.Is(err, boom) || removed {
		t.Fatalf("expected failed remove, removed=%v err=%v", removed, err)
	}
	assertInSync(t, m, factory, 1)
	if len(rec.events) != 0 {
		t.Fatalf("failed mutations must not notify, got %d events", len(rec.events))
	}
}

func TestNewManagerRejectsInvalidNodes(t *testing.T) {
	t.Parallel()

	ids := model.NewSequentialGenerator()
	cases := map[string]*model.Item{
		"nil":          nil,
		"not manager":  {ID: "panel-1", FieldType: model.FieldTypePanel},
		"no template":  {ID: "im-1", FieldType: model.FieldTypeInstanceManager},
		"below min":    repeatableNode(t, ids, 1, 2, 4),
		"above max":    repeatableNode(t, ids, 5, 0, 4),
		"inverted":     repeatableNode(t, ids, 0, 3, 2),
		"negative min": repeatableNode(t, ids, 0, -1, 2),
	}
	for name, node := range cases {
		if _, err := NewManager(node, &fakeFactory{}); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
