package timectrl

import (
	"sync"

	"github.com/signalsfoundry/epidemic-simulator/model"
)

// Listener is invoked after every advanced day with the day number and the
// population as it stands at the start of the following day.
type Listener func(day int, pop model.Population)

// DayClock counts simulated days up to a fixed bound and notifies
// registered listeners. Unlike a wall-clock ticker it only moves when the
// driver calls Advance, so runs stay deterministic.
type DayClock struct {
	mu    sync.RWMutex
	limit int
	day   int

	listeners []Listener
}

// NewDayClock constructs a clock that is exhausted after limit days. A
// non-positive limit yields a clock that is exhausted immediately.
func NewDayClock(limit int) *DayClock {
	if limit < 0 {
		limit = 0
	}
	return &DayClock{limit: limit}
}

// Day returns the number of days simulated so far.
func (c *DayClock) Day() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.day
}

// Limit returns the configured day bound.
func (c *DayClock) Limit() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.limit
}

// Exhausted reports whether the bound has been reached.
func (c *DayClock) Exhausted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.day >= c.limit
}

// AddListener registers a callback invoked on every advanced day.
func (c *DayClock) AddListener(fn Listener) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Advance moves the clock forward one day and notifies listeners with the
// resulting population. It returns false, without notifying anyone, once
// the clock is exhausted.
func (c *DayClock) Advance(pop model.Population) bool {
	c.mu.Lock()
	if c.day >= c.limit {
		c.mu.Unlock()
		return false
	}
	c.day++
	day := c.day
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(day, pop)
	}
	return true
}
