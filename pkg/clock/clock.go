// ABOUTME: Logical tick and real-millisecond clock sources
// ABOUTME: System clock for runtime use, Manual clock for deterministic tests
package clock

import (
	"sync"
	"time"
)

// TicsPerSecond is the game simulation rate.
const TicsPerSecond = 35

// Clock supplies the two time bases the sound system depends on
type Clock interface {
	// Ticks returns the current logical game tick
	Ticks() int64
	// RealMillis returns wall-clock milliseconds since an arbitrary epoch
	RealMillis() int64
}

// System derives both time bases from the monotonic wall clock
type System struct {
	start time.Time

	mu     sync.RWMutex
	paused bool
	frozen int64 // ticks while paused
	skew   int64 // ticks lost while paused
}

// NewSystem creates a clock whose tick and millisecond counters start at zero
func NewSystem() *System {
	return &System{start: time.Now()}
}

// Ticks returns elapsed game tics, excluding time spent paused
func (c *System) Ticks() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.paused {
		return c.frozen
	}
	return c.rawTicks() - c.skew
}

// RealMillis returns milliseconds since the clock was created
func (c *System) RealMillis() int64 {
	return time.Since(c.start).Milliseconds()
}

// SetPaused freezes or resumes the logical tick counter. Real time keeps running.
func (c *System) SetPaused(paused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if paused == c.paused {
		return
	}
	if paused {
		c.frozen = c.rawTicks() - c.skew
	} else {
		c.skew = c.rawTicks() - c.frozen
	}
	c.paused = paused
}

func (c *System) rawTicks() int64 {
	return int64(time.Since(c.start).Seconds() * TicsPerSecond)
}

// Manual is a clock that only moves when told to
type Manual struct {
	mu     sync.RWMutex
	ticks  int64
	millis int64
}

// NewManual creates a manual clock at tick zero
func NewManual() *Manual {
	return &Manual{}
}

// Ticks returns the current tick
func (m *Manual) Ticks() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ticks
}

// RealMillis returns the current millisecond counter
func (m *Manual) RealMillis() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.millis
}

// Set moves the clock to an absolute tick. Milliseconds follow the tick rate.
func (m *Manual) Set(ticks int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks = ticks
	m.millis = ticks * 1000 / TicsPerSecond
}

// Advance moves the clock forward by a number of tics
func (m *Manual) Advance(tics int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks += tics
	m.millis += tics * 1000 / TicsPerSecond
}

// AdvanceMillis moves only the real-time counter, leaving ticks untouched
func (m *Manual) AdvanceMillis(ms int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.millis += ms
}

// Seconds converts a duration in seconds to tics
func Seconds(s float64) int64 {
	return int64(s * TicsPerSecond)
}
