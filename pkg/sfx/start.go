// ABOUTME: Starting sounds: rejection rules, per-sample caps, channel selection and stealing
// ABOUTME: Configures the chosen buffer and starts playback inside the critical section
package sfx

import (
	"fmt"
	"log"

	"github.com/sfxkit/sfxkit/pkg/driver"
	"github.com/sfxkit/sfxkit/pkg/world"
)

// Start plays a sound. It returns ErrRejected when the sound is not worth
// playing and ErrNoChannel when every channel is busy with something more
// important.
func (s *System) Start(req Request) error {
	if !s.available.Load() {
		return ErrUnavailable
	}
	def, ok := s.definition(req.ID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidSound, req.ID)
	}
	if req.Volume <= 0 || s.volume.Load() <= 0 {
		s.reject()
		return ErrRejected
	}

	flags := req.Flags | def.Flags
	freq := req.Freq
	if freq <= 0 {
		freq = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrUnavailable
	}

	// Cache contents only change inside the critical section
	sample, err := s.cache.Fetch(req.ID)
	if err != nil {
		return fmt.Errorf("start sound %d: %w", req.ID, err)
	}

	if flags.Has(RandomShift) {
		freq += (s.rng.Float64() - s.rng.Float64()) * 7 / 255
	}
	if flags.Has(RandomShift2) {
		freq += (s.rng.Float64() - s.rng.Float64()) * 15 / 255
	}

	emitter := req.Emitter
	if flags.Has(ExcludeAll) {
		s.stopSoundLocked(req.ID, world.Handle{}, -1)
	}

	if group := s.groupOf(req.ID, sample.Group); group != 0 {
		scope := emitter
		if flags.Has(ExcludeAll) {
			scope = world.Handle{}
		}
		s.stopGroupLocked(group, scope)
	}

	if s.config.OneSoundPerEmitter && !emitter.IsZero() {
		if s.stopSoundLocked(0, emitter, def.Priority) < 0 {
			s.stats.Rejected++
			return fmt.Errorf("%w: emitter busy with a more important sound", ErrRejected)
		}
	}

	now := s.clock.Ticks()
	origin := s.requestOrigin(req)
	myPrio := s.priorityLocked(origin, req.Volume, now)

	if def.Channels > 0 {
		for s.channels.CountPlaying(req.ID) >= def.Channels {
			victim := s.lowestPlaying(myPrio, func(ch *Channel) bool {
				return ch.buffer.SampleID() == req.ID && !ch.buffer.Flags.Has(driver.FlagDontStop)
			})
			if victim == nil {
				s.stats.Rejected++
				return fmt.Errorf("%w: %d instances of sound %d playing", ErrRejected, def.Channels, req.ID)
			}
			victim.Stop()
			s.stats.Stolen++
		}
	}

	s.cache.Hit(req.ID)

	play3D := s.use3D
	bytes, rate := sample.BytesPer, sample.Rate
	ch := s.channels.TryFindVacant(play3D, bytes, rate, req.ID)
	if ch == nil {
		ch = s.channels.TryFindVacant(play3D, bytes, rate, NoSample)
	}
	if ch == nil {
		ch = s.channels.TryFindVacant(play3D, bytes, rate, AnySample)
	}
	if ch == nil {
		ch = s.stealLocked(play3D, myPrio)
	}
	if ch == nil {
		s.stats.NoChannel++
		if s.config.Verbose {
			log.Printf("[sfx] No channel for sound %d (priority %.0f)", req.ID, myPrio)
		}
		return ErrNoChannel
	}

	ch.loading = true
	defer func() { ch.loading = false }()

	if ch.buffer == nil || ch.buffer.Bytes != bytes || ch.buffer.Rate != rate {
		if ch.buffer != nil {
			s.driver.Destroy(ch.buffer)
			ch.buffer = nil
		}
		buf, err := s.createBufferLocked(play3D, bytes*8, rate)
		if err != nil {
			s.stats.NoChannel++
			return fmt.Errorf("%w: %w", ErrNoChannel, err)
		}
		ch.buffer = buf
	}
	buf := ch.buffer

	if flags.Has(Repeat) {
		buf.Flags |= driver.FlagRepeat
	} else {
		buf.Flags &^= driver.FlagRepeat
	}
	if flags.Has(DontStop) {
		buf.Flags |= driver.FlagDontStop
	} else {
		buf.Flags &^= driver.FlagDontStop
	}

	ch.flags = 0
	ch.volume = req.Volume
	ch.freq = freq
	switch {
	case !emitter.IsZero():
		ch.emitter = emitter
		ch.origin = world.Vec3{}
		if origin != nil {
			ch.origin = *origin
		}
	case req.Origin != nil:
		ch.emitter = world.Handle{}
		ch.origin = *req.Origin
	default:
		ch.emitter = world.Handle{}
		ch.origin = world.Vec3{}
		ch.flags |= ChannelNoOrigin
	}
	if flags.Has(NoAttenuation) {
		ch.flags |= ChannelNoAttenuation
	}

	if buf.Sample != sample {
		s.driver.Load(buf, sample)
	}

	ch.UpdatePriority()

	if buf.Is3D() {
		minDist, maxDist := s.config.MinDistance, s.config.MaxDistance
		if ch.flags&ChannelNoAttenuation != 0 {
			minDist *= 2
			maxDist *= 2
		}
		s.driver.Set(buf, driver.MinDistance, minDist)
		s.driver.Set(buf, driver.MaxDistance, maxDist)
	}

	s.driver.Listener(driver.ListenerUpdate, 0)
	s.driver.Play(buf)
	ch.startTime = now
	s.stats.Started++

	if s.config.Verbose {
		log.Printf("[sfx] Sound %d on channel %d: vol=%.2f freq=%.3f prio=%.0f %s",
			req.ID, ch.index, req.Volume, freq, myPrio, flags)
	}
	return nil
}

// stealLocked picks a channel to take over: a stopped one of the same
// dimensionality, or else the playing one with the lowest priority not above
// prio. DontStop sounds are never taken.
func (s *System) stealLocked(play3D bool, prio float64) *Channel {
	for _, ch := range s.channels.channels {
		if ch.buffer == nil {
			return ch
		}
		if ch.buffer.Is3D() == play3D && !ch.buffer.IsPlaying() {
			return ch
		}
	}

	victim := s.lowestPlaying(prio, func(ch *Channel) bool {
		return ch.buffer.Is3D() == play3D && !ch.buffer.Flags.Has(driver.FlagDontStop)
	})
	if victim != nil {
		victim.Stop()
		s.stats.Stolen++
	}
	return victim
}

// lowestPlaying returns the first playing channel accepted by match with the
// lowest priority not above prio
func (s *System) lowestPlaying(prio float64, match func(*Channel) bool) *Channel {
	var sel *Channel
	var low float64
	for _, ch := range s.channels.channels {
		if ch.buffer == nil || !ch.buffer.IsPlaying() || !match(ch) {
			continue
		}
		p := ch.Priority()
		if p > prio {
			continue
		}
		if sel == nil || p < low {
			sel, low = ch, p
		}
	}
	return sel
}

func (s *System) reject() {
	s.mu.Lock()
	s.stats.Rejected++
	s.mu.Unlock()
}

// Priority rates a sound that would start now
func (s *System) Priority(origin *world.Vec3, volume float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.priorityLocked(origin, volume, s.clock.Ticks())
}

func (s *System) priorityLocked(origin *world.Vec3, volume float64, startTick int64) float64 {
	now := s.clock.Ticks()
	var lp *world.Vec3
	if l, ok := s.listenerObject(); ok {
		lp = &l.Origin
	}
	return Rate(lp, origin, volume, startTick, now)
}

// requestOrigin resolves where a requested sound is, or nil
func (s *System) requestOrigin(req Request) *world.Vec3 {
	if !req.Emitter.IsZero() {
		if o, ok := s.emitterOrigin(req.Emitter); ok {
			return &o
		}
		return nil
	}
	if req.Origin != nil {
		o := *req.Origin
		return &o
	}
	return nil
}

// emitterOrigin is the emitter's position, raised to mid-height for actors
func (s *System) emitterOrigin(h world.Handle) (world.Vec3, bool) {
	obj, ok := s.world.Object(h)
	if !ok {
		return world.Vec3{}, false
	}
	o := obj.Origin
	if obj.Actor {
		o.Z += obj.Height / 2
	}
	return o, true
}

func (s *System) listenerObject() (world.Object, bool) {
	if s.listener.IsZero() {
		return world.Object{}, false
	}
	return s.world.Object(s.listener)
}
