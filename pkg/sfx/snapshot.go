// ABOUTME: Read-only views of the sound system for monitors and tools
// ABOUTME: Snapshots are copied inside the critical section
package sfx

import (
	"github.com/sfxkit/sfxkit/pkg/cache"
)

// ChannelInfo describes one channel at snapshot time
type ChannelInfo struct {
	Index     int     `json:"index"`
	State     string  `json:"state"`
	SoundID   int     `json:"sound_id"`
	Name      string  `json:"name,omitempty"`
	Volume    float64 `json:"volume"`
	Frequency float64 `json:"frequency"`
	Priority  float64 `json:"priority"`
	Use3D     bool    `json:"use_3d"`
	Emitter   bool    `json:"emitter"`
	Flags     string  `json:"flags,omitempty"`
	Buffer    string  `json:"buffer,omitempty"`
}

// Snapshot is a consistent view of the whole system
type Snapshot struct {
	Tick       int64         `json:"tick"`
	Use3D      bool          `json:"use_3d"`
	Volume     int           `json:"volume"`
	Channels   []ChannelInfo `json:"channels"`
	Playing    int           `json:"playing"`
	CacheBytes int           `json:"cache_bytes"`
	CacheItems int           `json:"cache_items"`
	Cache      cache.Stats   `json:"cache"`
	Stats      Stats         `json:"stats"`
}

// Snapshot copies the current state of every channel
func (s *System) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Tick:     s.clock.Ticks(),
		Use3D:    s.use3D,
		Volume:   int(s.volume.Load()),
		Channels: make([]ChannelInfo, 0, s.channels.Count()),
		Stats:    s.stats,
		Cache:    s.cache.Stats(),
	}
	snap.CacheBytes, snap.CacheItems = s.cache.Info()

	for _, ch := range s.channels.channels {
		info := ChannelInfo{
			Index:     ch.index,
			State:     ch.State().String(),
			Volume:    ch.volume,
			Frequency: ch.freq,
			Priority:  ch.Priority(),
			Emitter:   !ch.emitter.IsZero(),
			Flags:     ch.flags.String(),
		}
		if buf := ch.buffer; buf != nil {
			info.SoundID = buf.SampleID()
			info.Use3D = buf.Is3D()
			info.Buffer = buf.Flags.String()
			if buf.IsPlaying() {
				snap.Playing++
			}
		}
		if def, ok := s.definition(info.SoundID); ok {
			info.Name = def.Name
		}
		snap.Channels = append(snap.Channels, info)
	}
	return snap
}

// Stats returns the cumulative counters
func (s *System) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// CountPlaying returns how many channels are playing sound id
func (s *System) CountPlaying(id int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channels.CountPlaying(id)
}

// IsPlaying reports whether sound id is playing on any channel
func (s *System) IsPlaying(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channels.IsPlaying(id)
}

// Channels returns the pool size
func (s *System) Channels() int {
	return s.channels.Count()
}

// Is3D reports whether positional buffers are in use
func (s *System) Is3D() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.use3D
}

// Config returns the configuration in effect, including format changes
func (s *System) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}
