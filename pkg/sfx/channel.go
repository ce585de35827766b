// ABOUTME: One logical playback slot bound to a driver buffer
// ABOUTME: Tracks volume, frequency, emitter and start time and pushes them to the driver
package sfx

import (
	"math"
	"strings"

	"github.com/sfxkit/sfxkit/pkg/clock"
	"github.com/sfxkit/sfxkit/pkg/driver"
	"github.com/sfxkit/sfxkit/pkg/world"
)

// LowestPriority is the priority of a channel that is not playing
const LowestPriority = -math.MaxFloat32

// ChannelFlags are per-channel state bits
type ChannelFlags uint8

const (
	// ChannelNoOrigin marks a sound without position; it is never attenuated or panned
	ChannelNoOrigin ChannelFlags = 1 << iota
	// ChannelNoAttenuation plays at full volume at any distance
	ChannelNoAttenuation
	// ChannelNoUpdate freezes the channel's driver properties
	ChannelNoUpdate
)

func (f ChannelFlags) String() string {
	var parts []string
	if f&ChannelNoOrigin != 0 {
		parts = append(parts, "no-origin")
	}
	if f&ChannelNoAttenuation != 0 {
		parts = append(parts, "no-attenuation")
	}
	if f&ChannelNoUpdate != 0 {
		parts = append(parts, "no-update")
	}
	return strings.Join(parts, "|")
}

// ChannelState is the lifecycle state of a channel
type ChannelState int

const (
	StateIdle ChannelState = iota
	StateLoading
	StatePlaying
	StateStopped
)

func (s ChannelState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StateStopped:
		return "stopped"
	default:
		return "idle"
	}
}

// Channel is a playback slot. Its methods must be called inside the sound
// system's critical section.
type Channel struct {
	sys   *System
	index int

	buffer    *driver.Buffer
	flags     ChannelFlags
	volume    float64
	freq      float64
	emitter   world.Handle
	origin    world.Vec3
	startTime int64
	loading   bool
}

func newChannel(sys *System, index int) *Channel {
	return &Channel{sys: sys, index: index, volume: 1, freq: 1}
}

// Index returns the channel's position in its set
func (c *Channel) Index() int { return c.index }

// HasBuffer reports whether a driver buffer is attached
func (c *Channel) HasBuffer() bool {
	return c.buffer != nil
}

// Buffer returns the attached buffer. It panics with ErrMissingBuffer when
// there is none; check HasBuffer first.
func (c *Channel) Buffer() *driver.Buffer {
	if c.buffer == nil {
		panic(ErrMissingBuffer)
	}
	return c.buffer
}

// SetBuffer attaches buf, or detaches with nil
func (c *Channel) SetBuffer(buf *driver.Buffer) {
	c.buffer = buf
}

// Stop halts the buffer if there is one
func (c *Channel) Stop() {
	if c.buffer != nil {
		c.sys.driver.Stop(c.buffer)
	}
}

func (c *Channel) Flags() ChannelFlags { return c.flags }
func (c *Channel) SetFlags(f ChannelFlags) { c.flags = f }
func (c *Channel) Volume() float64 { return c.volume }
func (c *Channel) SetVolume(v float64) { c.volume = v }
func (c *Channel) Frequency() float64 { return c.freq }
func (c *Channel) SetFrequency(f float64) { c.freq = f }
func (c *Channel) Emitter() world.Handle { return c.emitter }
func (c *Channel) SetEmitter(h world.Handle) { c.emitter = h }
func (c *Channel) SetFixedOrigin(o world.Vec3) { c.origin = o }
func (c *Channel) StartTime() int64 { return c.startTime }
func (c *Channel) SetStartTime(tick int64) { c.startTime = tick }

// Origin returns where the sound is. A bound emitter is followed while it
// exists; after it is gone the last known position is kept.
func (c *Channel) Origin() world.Vec3 {
	if !c.emitter.IsZero() {
		if o, ok := c.sys.emitterOrigin(c.emitter); ok {
			c.origin = o
		}
	}
	return c.origin
}

// State derives the lifecycle state from the buffer
func (c *Channel) State() ChannelState {
	switch {
	case c.loading:
		return StateLoading
	case c.buffer == nil || c.buffer.Sample == nil:
		return StateIdle
	case c.buffer.IsPlaying():
		return StatePlaying
	default:
		return StateStopped
	}
}

// Priority rates the sound on this channel. Idle channels rate lowest.
func (c *Channel) Priority() float64 {
	if c.buffer == nil || !c.buffer.IsPlaying() {
		return LowestPriority
	}
	if c.flags&ChannelNoOrigin != 0 {
		return c.sys.priorityLocked(nil, c.volume, c.startTime)
	}
	o := c.Origin()
	return c.sys.priorityLocked(&o, c.volume, c.startTime)
}

// UpdatePriority pushes the channel's frequency, volume and position to the
// driver. Changes take effect at the next listener commit.
func (c *Channel) UpdatePriority() {
	if c.flags&ChannelNoUpdate != 0 || c.buffer == nil {
		return
	}

	s := c.sys
	drv := s.driver
	buf := c.buffer
	origin := c.Origin()
	master := float64(s.volume.Load()) / 255
	fromListener := !c.emitter.IsZero() && c.emitter == s.listener

	drv.Set(buf, driver.Frequency, c.freq)

	if buf.Is3D() {
		drv.Set(buf, driver.Volume, c.volume*master)
		if fromListener {
			drv.Set(buf, driver.Relative, 1)
			drv.SetVector(buf, driver.Position, [3]float64{})
		} else {
			drv.Set(buf, driver.Relative, 0)
			drv.SetVector(buf, driver.Position, driver.Coords(origin.X, origin.Y, origin.Z))
		}

		var vel [3]float64
		if !c.emitter.IsZero() && !fromListener {
			if obj, ok := s.world.Object(c.emitter); ok && obj.Actor {
				m := obj.Momentum.Scale(clock.TicsPerSecond)
				vel = driver.Coords(m.X, m.Y, m.Z)
			}
		}
		drv.SetVector(buf, driver.Velocity, vel)
		return
	}

	vol, pan := 1.0, 0.0
	if c.flags&ChannelNoOrigin == 0 && !fromListener {
		if listener, ok := s.listenerObject(); ok {
			if c.flags&ChannelNoAttenuation == 0 {
				vol = Attenuation(listener.Origin.Dist(origin), s.config.MinDistance, s.config.MaxDistance)
			}
			var damp float64
			pan, damp = Pan(listener, origin)
			vol *= damp
		}
	}
	drv.Set(buf, driver.Volume, vol*c.volume*master)
	drv.Set(buf, driver.Pan, pan)
}
