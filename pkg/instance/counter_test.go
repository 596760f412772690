package instance

import (
	"testing"

	"github.com/goliatone/go-formruntime/pkg/model"
)

func TestCounterClampsAtBounds(t *testing.T) {
	t.Parallel()

	c, err := NewCounter(1, 0, 2)
	if err != nil {
		t.Fatalf("NewCounter: %v", err)
	}

	c, ok := c.Increment()
	if !ok || c.Count() != 2 {
		t.Fatalf("expected 2 after increment, got %v ok=%v", c, ok)
	}
	c, ok = c.Increment()
	if ok || c.Count() != 2 {
		t.Fatalf("increment at cap must be a no-op, got %v ok=%v", c, ok)
	}

	for _, want := range []int{1, 0} {
		c, ok = c.Decrement()
		if !ok || c.Count() != want {
			t.Fatalf("expected %d after decrement, got %v ok=%v", want, c, ok)
		}
	}
	c, ok = c.Decrement()
	if ok || c.Count() != 0 {
		t.Fatalf("decrement at floor must be a no-op, got %v ok=%v", c, ok)
	}
}

func TestCounterUnbounded(t *testing.T) {
	t.Parallel()

	c, err := NewCounter(0, 0, model.Unbounded)
	if err != nil {
		t.Fatalf("NewCounter: %v", err)
	}
	for i := 0; i < 100; i++ {
		var ok bool
		if c, ok = c.Increment(); !ok {
			t.Fatalf("unbounded counter refused increment at %d", i)
		}
	}
	if c.Count() != 100 || !c.CanAdd() {
		t.Fatalf("unexpected counter %v", c)
	}
	if got := c.String(); got != "100 in [0, ∞]" {
		t.Fatalf("unexpected string %q", got)
	}
}

func TestCounterValueSemantics(t *testing.T) {
	t.Parallel()

	c, _ := NewCounter(1, 0, 3)
	next, _ := c.Increment()
	if c.Count() != 1 || next.Count() != 2 {
		t.Fatalf("increment must not mutate the receiver: %v -> %v", c, next)
	}
}

func TestNewCounterRejectsInvalidBounds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		count, min, max int
	}{
		{0, -1, 3},
		{0, 0, -2},
		{2, 3, 2},
		{1, 2, 4},
		{5, 0, 4},
	}
	for _, tc := range cases {
		if _, err := NewCounter(tc.count, tc.min, tc.max); err == nil {
			t.Fatalf("expected error for %+v", tc)
		}
	}
}
