// ABOUTME: Tests for the tick and millisecond clocks
// ABOUTME: Covers manual stepping and system clock pause behaviour
package clock

import (
	"testing"
	"time"
)

func TestManualAdvance(t *testing.T) {
	m := NewManual()

	m.Advance(TicsPerSecond)
	if m.Ticks() != TicsPerSecond {
		t.Errorf("expected %d ticks, got %d", TicsPerSecond, m.Ticks())
	}
	if m.RealMillis() != 1000 {
		t.Errorf("expected 1000ms, got %d", m.RealMillis())
	}

	m.AdvanceMillis(250)
	if m.Ticks() != TicsPerSecond {
		t.Errorf("AdvanceMillis moved ticks to %d", m.Ticks())
	}
	if m.RealMillis() != 1250 {
		t.Errorf("expected 1250ms, got %d", m.RealMillis())
	}
}

func TestManualSet(t *testing.T) {
	m := NewManual()
	m.Set(70)

	if m.Ticks() != 70 {
		t.Errorf("expected 70 ticks, got %d", m.Ticks())
	}
	if m.RealMillis() != 2000 {
		t.Errorf("expected 2000ms, got %d", m.RealMillis())
	}
}

func TestSystemPauseFreezesTicks(t *testing.T) {
	c := NewSystem()
	c.SetPaused(true)
	before := c.Ticks()

	time.Sleep(60 * time.Millisecond)

	if got := c.Ticks(); got != before {
		t.Errorf("ticks moved while paused: %d -> %d", before, got)
	}
	if c.RealMillis() < 50 {
		t.Errorf("real time should keep running, got %dms", c.RealMillis())
	}

	c.SetPaused(false)
	if got := c.Ticks(); got < before {
		t.Errorf("ticks went backwards after resume: %d -> %d", before, got)
	}
}

func TestSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{1, 35},
		{5, 175},
		{0.5, 17},
	}
	for _, tt := range tests {
		if got := Seconds(tt.in); got != tt.want {
			t.Errorf("Seconds(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
