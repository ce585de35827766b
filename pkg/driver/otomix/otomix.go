// ABOUTME: Oto-based sound driver backed by the software mixer
// ABOUTME: Owns the oto context and player and maps buffer calls onto mixer voices
package otomix

import (
	"fmt"
	"log"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/google/uuid"
	"github.com/sfxkit/sfxkit/pkg/audio"
	"github.com/sfxkit/sfxkit/pkg/clock"
	"github.com/sfxkit/sfxkit/pkg/driver"
)

// Options configures the oto driver
type Options struct {
	SampleRate int         // output rate, default 44100
	Clock      clock.Clock // real-time source; defaults to a system clock
	Verbose    bool
}

// Driver plays buffers through a single oto player
type Driver struct {
	opts     Options
	identity string
	mixer    *Mixer

	mu          sync.Mutex
	otoCtx      *oto.Context
	player      *oto.Player
	initialized bool
}

// New creates an oto driver. No device is opened until Init.
func New(opts Options) *Driver {
	if opts.SampleRate <= 0 {
		opts.SampleRate = 44100
	}
	if opts.Clock == nil {
		opts.Clock = clock.NewSystem()
	}
	return &Driver{
		opts:     opts,
		identity: "oto-" + uuid.New().String(),
		mixer:    NewMixer(opts.SampleRate),
	}
}

// Init opens the audio device
func (d *Driver) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized {
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   d.opts.SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	d.otoCtx = ctx
	d.player = ctx.NewPlayer(d.mixer)
	d.player.Play()
	d.initialized = true

	log.Printf("Sound driver initialized: oto %dHz stereo", d.opts.SampleRate)
	return nil
}

// Shutdown closes the player and suspends the device. oto allows only one
// context per process so the context itself is kept.
func (d *Driver) Shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return
	}
	if d.player != nil {
		d.player.Close()
		d.player = nil
	}
	if d.otoCtx != nil {
		if err := d.otoCtx.Suspend(); err != nil {
			log.Printf("Failed to suspend oto context: %v", err)
		}
	}
	d.mixer.clear()
	d.initialized = false
}

// Capabilities reports that any sample rate is mixed directly
func (d *Driver) Capabilities() driver.Capabilities {
	return driver.Capabilities{
		AnySampleRate: true,
		Identity:      d.identity,
	}
}

// Create allocates a buffer and its mixer voice
func (d *Driver) Create(flags driver.BufferFlags, bits, rate int) (*driver.Buffer, error) {
	d.mu.Lock()
	ready := d.initialized
	d.mu.Unlock()
	if !ready {
		return nil, driver.ErrNotInitialized
	}
	if (bits != 8 && bits != 16) || rate <= 0 {
		return nil, fmt.Errorf("%w: %d bits %d Hz", driver.ErrBadFormat, bits, rate)
	}

	buf := driver.NewBuffer(flags, bits, rate)
	ring := driver.NewRing(buf.Length, buf.Bytes)
	buf.Private = ring
	d.mixer.add(buf, ring)
	return buf, nil
}

// Destroy removes the buffer's voice
func (d *Driver) Destroy(buf *driver.Buffer) {
	d.mixer.remove(buf)
	buf.Private = nil
	buf.Sample = nil
}

// Load fills the buffer ring from the sample
func (d *Driver) Load(buf *driver.Buffer, s *audio.Sample) {
	ring := ringOf(buf)
	if ring == nil || s == nil {
		return
	}
	d.mixer.stop(buf)
	if err := driver.LoadRing(buf, ring, s); err != nil {
		log.Printf("Failed to load sample %d: %v", s.ID, err)
	}
}

// Reset stops the buffer and drops its sample
func (d *Driver) Reset(buf *driver.Buffer) {
	d.mixer.stop(buf)
	driver.ResetBuffer(buf)
}

// Play starts the voice from the beginning of the ring
func (d *Driver) Play(buf *driver.Buffer) {
	ring := ringOf(buf)
	if ring == nil {
		return
	}
	err := driver.PlayBuffer(buf, d.opts.Clock.RealMillis(), func() error {
		return driver.LoadRing(buf, ring, buf.Sample)
	})
	if err != nil {
		log.Printf("Failed to play buffer: %v", err)
		return
	}
	if buf.IsPlaying() {
		d.mixer.start(buf)
	}
}

// Stop halts the voice
func (d *Driver) Stop(buf *driver.Buffer) {
	d.mixer.stop(buf)
	driver.StopBuffer(buf)
}

// Refresh refills the part of the ring the mixer has consumed
func (d *Driver) Refresh(buf *driver.Buffer) {
	ring := ringOf(buf)
	if ring == nil || !buf.IsPlaying() {
		return
	}
	finished, err := driver.RefreshRing(buf, ring, d.mixer.playCursor(buf), d.opts.Clock.RealMillis())
	if err != nil {
		if d.opts.Verbose {
			log.Printf("Refresh failed: %v", err)
		}
		return
	}
	if finished {
		d.Stop(buf)
	}
}

// Set changes a scalar property. Frequency applies immediately; the rest on
// the next ListenerUpdate.
func (d *Driver) Set(buf *driver.Buffer, prop driver.BufferProperty, value float64) {
	switch prop {
	case driver.Frequency:
		driver.SetFrequency(buf, value, d.opts.Clock.RealMillis())
		d.mixer.setFreq(buf, buf.Freq)
	case driver.Volume:
		d.mixer.setParam(buf, func(p *params) { p.volume = value })
	case driver.Pan:
		d.mixer.setParam(buf, func(p *params) { p.pan = value })
	case driver.MinDistance:
		d.mixer.setParam(buf, func(p *params) { p.minDistance = value })
	case driver.MaxDistance:
		d.mixer.setParam(buf, func(p *params) { p.maxDistance = value })
	case driver.Relative:
		d.mixer.setParam(buf, func(p *params) { p.relative = value != 0 })
	}
}

// SetVector changes a vector property
func (d *Driver) SetVector(buf *driver.Buffer, prop driver.BufferProperty, values [3]float64) {
	switch prop {
	case driver.Position:
		d.mixer.setParam(buf, func(p *params) { p.position = values })
	case driver.Velocity:
		d.mixer.setParam(buf, func(p *params) { p.velocity = values })
	}
}

// Listener changes a scalar listener property or commits pending changes
func (d *Driver) Listener(prop driver.ListenerProperty, value float64) {
	switch prop {
	case driver.ListenerUpdate:
		d.mixer.commit()
	case driver.UnitsPerMeter:
		d.mixer.setListener(func(lp *listenerParams) { lp.unitsPerMeter = value })
	case driver.Doppler:
		d.mixer.setListener(func(lp *listenerParams) { lp.doppler = value })
	}
}

// ListenerVector changes a vector listener property
func (d *Driver) ListenerVector(prop driver.ListenerProperty, values []float64) {
	switch prop {
	case driver.PrimaryFormat:
		if len(values) >= 2 && int(values[1]) != d.opts.SampleRate {
			log.Printf("Warning: primary format %dHz requested but oto runs at %dHz", int(values[1]), d.opts.SampleRate)
		}
	case driver.ListenerPosition:
		d.mixer.setListener(func(lp *listenerParams) { copy(lp.position[:], values) })
	case driver.ListenerVelocity:
		d.mixer.setListener(func(lp *listenerParams) { copy(lp.velocity[:], values) })
	case driver.ListenerOrientation:
		if len(values) >= 2 {
			front, up := driver.Orientation(values[0], values[1])
			d.mixer.setListener(func(lp *listenerParams) { lp.front, lp.up = front, up })
		}
	case driver.ListenerReverb:
		d.mixer.setListener(func(lp *listenerParams) { lp.reverb = append(lp.reverb[:0], values...) })
	}
}

// Mixer exposes the mixer, mainly for rendering without a device
func (d *Driver) Mixer() *Mixer {
	return d.mixer
}

func ringOf(buf *driver.Buffer) *driver.Ring {
	if buf == nil {
		return nil
	}
	r, _ := buf.Private.(*driver.Ring)
	return r
}
