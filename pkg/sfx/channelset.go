// ABOUTME: Fixed pool of channels with vacancy search and bulk operations
// ABOUTME: All methods expect the sound system's critical section to be held
package sfx

import "github.com/sfxkit/sfxkit/pkg/driver"

// Vacancy selectors for TryFindVacant
const (
	AnySample = -1 // any loaded sample may be replaced
	NoSample  = 0  // only buffers with nothing loaded
)

// ChannelSet is the channel pool
type ChannelSet struct {
	channels []*Channel
}

func newChannelSet(sys *System, n int) *ChannelSet {
	cs := &ChannelSet{channels: make([]*Channel, n)}
	for i := range cs.channels {
		cs.channels[i] = newChannel(sys, i)
	}
	return cs
}

// Count returns the pool size
func (cs *ChannelSet) Count() int {
	return len(cs.channels)
}

// At returns channel i
func (cs *ChannelSet) At(i int) *Channel {
	return cs.channels[i]
}

// CountPlaying returns how many channels are playing sample id
func (cs *ChannelSet) CountPlaying(id int) int {
	n := 0
	for _, ch := range cs.channels {
		if ch.buffer != nil && ch.buffer.IsPlaying() && ch.buffer.SampleID() == id {
			n++
		}
	}
	return n
}

// IsPlaying reports whether any channel is playing sample id
func (cs *ChannelSet) IsPlaying(id int) bool {
	for _, ch := range cs.channels {
		if ch.buffer != nil && ch.buffer.IsPlaying() && ch.buffer.SampleID() == id {
			return true
		}
	}
	return false
}

// TryFindVacant returns the first stopped channel whose buffer has the given
// format. sampleID selects what may already be loaded: a positive id requires
// that sample, NoSample requires an empty buffer and AnySample accepts anything.
func (cs *ChannelSet) TryFindVacant(use3D bool, bytes, rate, sampleID int) *Channel {
	for _, ch := range cs.channels {
		buf := ch.buffer
		if buf == nil || buf.IsPlaying() || !buf.Matches(use3D, bytes, rate) {
			continue
		}
		switch {
		case sampleID > 0:
			if buf.Sample == nil || buf.Sample.ID != sampleID {
				continue
			}
		case sampleID == NoSample:
			if buf.Sample != nil {
				continue
			}
		}
		return ch
	}
	return nil
}

// ForAll calls fn for each channel until fn returns true. It reports whether
// the iteration was cut short.
func (cs *ChannelSet) ForAll(fn func(ch *Channel) bool) bool {
	for _, ch := range cs.channels {
		if fn(ch) {
			return true
		}
	}
	return false
}

// RefreshAll lets the driver top up every playing buffer
func (cs *ChannelSet) RefreshAll(drv driver.Driver) {
	for _, ch := range cs.channels {
		if ch.buffer != nil && ch.buffer.IsPlaying() {
			drv.Refresh(ch.buffer)
		}
	}
}
