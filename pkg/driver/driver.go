// ABOUTME: Sound driver interface definition
// ABOUTME: Contract every playback back-end honours: buffers, 3D properties and listener
package driver

import (
	"github.com/sfxkit/sfxkit/pkg/audio"
)

// Driver is a sound effects back-end. All methods except Init, Shutdown and
// Capabilities expect the caller to serialize access; the sound system holds
// its critical section around every buffer call.
type Driver interface {
	// Init prepares the back-end. Calling it on an initialized driver is a no-op.
	Init() error

	// Shutdown releases the device and every buffer
	Shutdown()

	// Capabilities reports what the driver needs from the sound system
	Capabilities() Capabilities

	// Create allocates a playback buffer. Only Flag3D, FlagRepeat and
	// FlagStreaming are honoured. Fails when a 3D buffer is not available.
	Create(flags BufferFlags, bits, rate int) (*Buffer, error)

	// Destroy frees a buffer; it must not be used afterwards
	Destroy(buf *Buffer)

	// Load prepares the sample for playback and resets the write cursor
	Load(buf *Buffer, s *audio.Sample)

	// Reset stops the buffer and forgets its sample
	Reset(buf *Buffer)

	// Play starts playback, reloading first if the buffer needs it
	Play(buf *Buffer)

	// Stop halts playback; the next Play restarts from the beginning
	Stop(buf *Buffer)

	// Refresh tops up the buffer ring and stops finished sounds. Must not
	// block or allocate.
	Refresh(buf *Buffer)

	// Set changes a scalar buffer property
	Set(buf *Buffer, prop BufferProperty, value float64)

	// SetVector changes a vector buffer property. Coordinates are in driver space.
	SetVector(buf *Buffer, prop BufferProperty, values [3]float64)

	// Listener changes a scalar listener property. ListenerUpdate commits
	// every deferred change.
	Listener(prop ListenerProperty, value float64)

	// ListenerVector changes a vector listener property
	ListenerVector(prop ListenerProperty, values []float64)
}

// Capabilities describe a driver to the sound system. They are queried once
// after Init.
type Capabilities struct {
	// NoChannelRefresh means the driver refreshes its own buffers and the
	// background refresh goroutine is not started
	NoChannelRefresh bool

	// AnySampleRate means samples of mixed rates and widths can be played
	// without upsampling to one format
	AnySampleRate bool

	// Identity is a unique key for the driver instance
	Identity string
}

// BufferProperty selects a per-buffer setting
type BufferProperty int

const (
	// Volume is linear 0..1, or when <= 0 a logarithmic attenuation (see VolumeGain)
	Volume BufferProperty = iota
	// Frequency is a ratio applied to the buffer rate (1 = unshifted)
	Frequency
	// Pan is stereo position, -1 (left) .. 1 (right)
	Pan
	// MinDistance is the distance below which a 3D sound is not attenuated
	MinDistance
	// MaxDistance is the distance beyond which a 3D sound is silent
	MaxDistance
	// Position is a 3D location
	Position
	// Velocity is a 3D velocity in units per second
	Velocity
	// Relative makes Position relative to the listener when non-zero
	Relative
)

var bufferPropertyNames = [...]string{"volume", "frequency", "pan", "min-distance", "max-distance", "position", "velocity", "relative"}

func (p BufferProperty) String() string {
	if p < 0 || int(p) >= len(bufferPropertyNames) {
		return "unknown"
	}
	return bufferPropertyNames[p]
}

// ListenerProperty selects a listener setting
type ListenerProperty int

const (
	// ListenerUpdate commits all deferred changes
	ListenerUpdate ListenerProperty = iota
	// PrimaryFormat is {bits, rate} of the primary mix
	PrimaryFormat
	// UnitsPerMeter scales world units to meters
	UnitsPerMeter
	// Doppler is the Doppler effect factor
	Doppler
	// ListenerPosition is the listener location
	ListenerPosition
	// ListenerVelocity is the listener velocity in units per second
	ListenerVelocity
	// ListenerOrientation is {yaw, pitch} in degrees
	ListenerOrientation
	// ListenerReverb is {volume, space, decay, damping}
	ListenerReverb
)

var listenerPropertyNames = [...]string{"update", "primary-format", "units-per-meter", "doppler", "position", "velocity", "orientation", "reverb"}

func (p ListenerProperty) String() string {
	if p < 0 || int(p) >= len(listenerPropertyNames) {
		return "unknown"
	}
	return listenerPropertyNames[p]
}
