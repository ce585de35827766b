// ABOUTME: Time sources used by the sound system
// ABOUTME: Logical game tics at 35 Hz plus a real-millisecond counter
// Package clock provides the logical tick and real-time millisecond clocks
// consumed by the sound system.
//
// Game logic runs at TicsPerSecond and sound priority decays over game time,
// while driver buffers play in real time. Both are exposed through Clock:
//
//	c := clock.NewSystem()
//	now := c.Ticks()
//	ms := c.RealMillis()
//
// Tests use Manual to step time deterministically:
//
//	m := clock.NewManual()
//	m.Advance(5 * clock.TicsPerSecond)
package clock
