// ABOUTME: Stopping sounds by id, emitter, exclusion group or priority
// ABOUTME: Priority stops refuse to touch anything when a more important sound is playing
package sfx

import (
	"github.com/sfxkit/sfxkit/pkg/driver"
	"github.com/sfxkit/sfxkit/pkg/world"
)

// StopSound stops sound id on emitter. A zero id matches every sound and a
// zero emitter every emitter. It returns the number of channels stopped, or
// -1 when a DontStop sound blocked the request.
func (s *System) StopSound(id int, emitter world.Handle) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopSoundLocked(id, emitter, -1)
}

// StopEmitter stops everything emitter is playing
func (s *System) StopEmitter(emitter world.Handle) int {
	return s.StopSound(0, emitter)
}

// StopWithLowerPriority stops sound id on emitter only if every matching
// sound has a definition priority below priority. Otherwise nothing is
// stopped and -1 is returned.
func (s *System) StopWithLowerPriority(id int, emitter world.Handle, priority int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopSoundLocked(id, emitter, priority)
}

// StopGroup stops every sound of an exclusion group on emitter, or on any
// emitter when emitter is zero
func (s *System) StopGroup(group int, emitter world.Handle) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopGroupLocked(group, emitter)
}

// StopAll stops every channel, DontStop sounds included
func (s *System) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopAllLocked()
}

// stopSoundLocked checks every candidate before stopping any, so a blocked
// request leaves all sounds playing. A negative priority disables the check.
func (s *System) stopSoundLocked(id int, emitter world.Handle, priority int) int {
	match := func(ch *Channel) bool {
		buf := ch.buffer
		if buf == nil || !buf.IsPlaying() {
			return false
		}
		if id != 0 && buf.SampleID() != id {
			return false
		}
		return emitter.IsZero() || ch.emitter == emitter
	}

	blocked := s.channels.ForAll(func(ch *Channel) bool {
		if !match(ch) {
			return false
		}
		if ch.buffer.Flags.Has(driver.FlagDontStop) {
			return true
		}
		if priority >= 0 {
			def, _ := s.definition(ch.buffer.SampleID())
			return def.Priority >= priority
		}
		return false
	})
	if blocked {
		return -1
	}

	n := 0
	s.channels.ForAll(func(ch *Channel) bool {
		if match(ch) {
			ch.Stop()
			n++
		}
		return false
	})
	s.stats.Stopped += n
	return n
}

func (s *System) stopGroupLocked(group int, emitter world.Handle) int {
	n := 0
	s.channels.ForAll(func(ch *Channel) bool {
		buf := ch.buffer
		if buf == nil || !buf.IsPlaying() || buf.Sample == nil {
			return false
		}
		if s.groupOf(buf.SampleID(), buf.Sample.Group) != group {
			return false
		}
		if !emitter.IsZero() && ch.emitter != emitter {
			return false
		}
		ch.Stop()
		n++
		return false
	})
	s.stats.Stopped += n
	return n
}

func (s *System) stopAllLocked() {
	s.channels.ForAll(func(ch *Channel) bool {
		if ch.buffer != nil && ch.buffer.IsPlaying() {
			ch.Stop()
			s.stats.Stopped++
		}
		return false
	})
}

// groupOf prefers the definition's group over the sample's
func (s *System) groupOf(id, sampleGroup int) int {
	if def, ok := s.definition(id); ok && def.Group != 0 {
		return def.Group
	}
	return sampleGroup
}
