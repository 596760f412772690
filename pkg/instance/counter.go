package instance

import (
	"fmt"

	"github.com/goliatone/go-formruntime/pkg/model"
)

// Counter is the bounded occurrence counter of a repeatable panel. It is a
// value type: transitions return the next Counter and whether it changed.
// Max equal to model.Unbounded removes the upper bound.
type Counter struct {
	count int
	min   int
	max   int
}

// NewCounter validates the bounds and the starting count.
func NewCounter(count, minOccur, maxOccur int) (Counter, error) {
	if minOccur < 0 {
		return Counter{}, fmt.Errorf("instance: minOccur %d must not be negative", minOccur)
	}
	if maxOccur < model.Unbounded {
		return Counter{}, fmt.Errorf("instance: maxOccur %d must be %d (unbounded) or greater", maxOccur, model.Unbounded)
	}
	if maxOccur != model.Unbounded && minOccur > maxOccur {
		return Counter{}, fmt.Errorf("instance: minOccur %d exceeds maxOccur %d", minOccur, maxOccur)
	}
	c := Counter{count: count, min: minOccur, max: maxOccur}
	if count < minOccur || (maxOccur != model.Unbounded && count > maxOccur) {
		return Counter{}, fmt.Errorf("instance: count %d outside [%d, %s]", count, minOccur, c.maxString())
	}
	return c, nil
}

// Count returns the current number of instances.
func (c Counter) Count() int { return c.count }

// Min returns the lower bound.
func (c Counter) Min() int { return c.min }

// Max returns the upper bound, or model.Unbounded.
func (c Counter) Max() int { return c.max }

// CanAdd reports whether Increment would change the count.
func (c Counter) CanAdd() bool {
	return c.max == model.Unbounded || c.count < c.max
}

// CanRemove reports whether Decrement would change the count.
func (c Counter) CanRemove() bool {
	return c.count > c.min
}

// Increment returns the counter moved up by one. At the cap it returns the
// receiver unchanged and false.
func (c Counter) Increment() (Counter, bool) {
	if !c.CanAdd() {
		return c, false
	}
	c.count++
	return c, true
}

// Decrement returns the counter moved down by one. At the floor it returns the
// receiver unchanged and false.
func (c Counter) Decrement() (Counter, bool) {
	if !c.CanRemove() {
		return c, false
	}
	c.count--
	return c, true
}

func (c Counter) String() string {
	return fmt.Sprintf("%d in [%d, %s]", c.count, c.min, c.maxString())
}

func (c Counter) maxString() string {
	if c.max == model.Unbounded {
		return "∞"
	}
	return fmt.Sprint(c.max)
}
