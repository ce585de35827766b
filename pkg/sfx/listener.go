// ABOUTME: Per-frame listener update: position, orientation, velocity and reverb
// ABOUTME: Ends with the driver commit that applies every deferred change at once
package sfx

import (
	"github.com/sfxkit/sfxkit/pkg/clock"
	"github.com/sfxkit/sfxkit/pkg/driver"
	"github.com/sfxkit/sfxkit/pkg/world"
)

// eyeOffset is how far below the top of the listener object the ears are
const eyeOffset = 5

// Frame runs once per game frame with the object the player hears from.
// It purges the cache when due, refreshes every channel's properties and
// commits the listener.
func (s *System) Frame(eye world.Handle) {
	if !s.available.Load() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.listener = eye
	s.cache.MaybeRunPurge()
	s.channels.ForAll(func(ch *Channel) bool {
		ch.UpdatePriority()
		return false
	})
	s.updateListenerLocked()
}

// SetListener changes the listener object without running a frame
func (s *System) SetListener(eye world.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = eye
}

// Listener returns the current listener object
func (s *System) Listener() world.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener
}

func (s *System) updateListenerLocked() {
	obj, ok := s.listenerObject()
	if s.use3D && ok && s.volume.Load() > 0 {
		eye := obj.Origin
		eye.Z += obj.Height - eyeOffset
		pos := driver.Coords(eye.X, eye.Y, eye.Z)
		s.driver.ListenerVector(driver.ListenerPosition, pos[:])

		yaw := float64(obj.Angle) / 4294967296 * 360
		pitch := obj.LookDir * 85 / 110
		s.driver.ListenerVector(driver.ListenerOrientation, []float64{yaw, pitch})

		m := obj.Momentum.Scale(clock.TicsPerSecond)
		vel := driver.Coords(m.X, m.Y, m.Z)
		s.driver.ListenerVector(driver.ListenerVelocity, vel[:])

		if obj.Cluster != s.listenerCluster {
			s.listenerCluster = obj.Cluster
			rev, _ := s.world.Reverb(obj.Cluster)
			env := rev.Array()
			env[0] *= s.config.ReverbStrength
			s.driver.ListenerVector(driver.ListenerReverb, env)
		}
	}
	s.driver.Listener(driver.ListenerUpdate, 0)
}

// noReverbLocked switches environmental effects off
func (s *System) noReverbLocked() {
	s.driver.ListenerVector(driver.ListenerReverb, make([]float64, 4))
	s.listenerCluster = -1
}
