// ABOUTME: Headless sound driver simulating playback timing without a device
// ABOUTME: Buffers advance by the real-time clock and record every property change
package dummy

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/sfxkit/sfxkit/pkg/audio"
	"github.com/sfxkit/sfxkit/pkg/clock"
	"github.com/sfxkit/sfxkit/pkg/driver"
)

// Options configures the dummy driver
type Options struct {
	Clock            clock.Clock // real-time source; defaults to a system clock
	AnySampleRate    bool        // report that mixed rates are accepted
	NoChannelRefresh bool        // report that the driver refreshes itself
	Disable3D        bool        // fail every 3D buffer request
	Verbose          bool
}

// Props are the committed properties of one buffer
type Props struct {
	Volume      float64
	FreqRatio   float64
	Pan         float64
	MinDistance float64
	MaxDistance float64
	Relative    bool
	Position    [3]float64
	Velocity    [3]float64
}

// ListenerState is the committed listener state
type ListenerState struct {
	Bits, Rate    int
	UnitsPerMeter float64
	Doppler       float64
	Position      [3]float64
	Velocity      [3]float64
	Yaw, Pitch    float64
	Reverb        []float64
	Commits       int
}

type bufferState struct {
	ring      *driver.Ring
	playStart int64
	pending   Props
	committed Props
}

// Driver is the dummy back-end
type Driver struct {
	opts     Options
	identity string

	mu          sync.Mutex
	initialized bool
	buffers     map[*driver.Buffer]*bufferState
	pending     ListenerState
	listener    ListenerState
	plays       int
}

// New creates a dummy driver
func New(opts Options) *Driver {
	if opts.Clock == nil {
		opts.Clock = clock.NewSystem()
	}
	return &Driver{
		opts:     opts,
		identity: "dummy-" + uuid.New().String(),
		buffers:  make(map[*driver.Buffer]*bufferState),
	}
}

// Init marks the driver ready
func (d *Driver) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized {
		return nil
	}
	d.initialized = true
	if d.opts.Verbose {
		log.Printf("[dummy] initialized (%s)", d.identity)
	}
	return nil
}

// Shutdown forgets every buffer
func (d *Driver) Shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.buffers = make(map[*driver.Buffer]*bufferState)
	d.initialized = false
}

// Capabilities reports the configured capabilities
func (d *Driver) Capabilities() driver.Capabilities {
	return driver.Capabilities{
		NoChannelRefresh: d.opts.NoChannelRefresh,
		AnySampleRate:    d.opts.AnySampleRate,
		Identity:         d.identity,
	}
}

// Create allocates a simulated buffer
func (d *Driver) Create(flags driver.BufferFlags, bits, rate int) (*driver.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return nil, driver.ErrNotInitialized
	}
	if flags.Has(driver.Flag3D) && d.opts.Disable3D {
		return nil, fmt.Errorf("%w: %w", driver.ErrBufferCreate, driver.ErrNo3D)
	}
	if (bits != 8 && bits != 16) || rate <= 0 {
		return nil, fmt.Errorf("%w: %d bits %d Hz", driver.ErrBadFormat, bits, rate)
	}

	buf := driver.NewBuffer(flags, bits, rate)
	st := &bufferState{ring: driver.NewRing(buf.Length, buf.Bytes)}
	st.pending = Props{Volume: 1, FreqRatio: 1}
	st.committed = st.pending
	buf.Private = st
	d.buffers[buf] = st
	return buf, nil
}

// Destroy forgets a buffer
func (d *Driver) Destroy(buf *driver.Buffer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.buffers, buf)
	buf.Private = nil
	buf.Sample = nil
}

// Load fills the buffer ring from the sample
func (d *Driver) Load(buf *driver.Buffer, s *audio.Sample) {
	st := d.state(buf)
	if st == nil || s == nil {
		return
	}
	if err := driver.LoadRing(buf, st.ring, s); err != nil {
		log.Printf("[dummy] load sample %d: %v", s.ID, err)
	}
}

// Reset stops the buffer and drops its sample
func (d *Driver) Reset(buf *driver.Buffer) {
	driver.ResetBuffer(buf)
}

// Play starts simulated playback at the current real time
func (d *Driver) Play(buf *driver.Buffer) {
	st := d.state(buf)
	if st == nil {
		return
	}
	now := d.opts.Clock.RealMillis()
	err := driver.PlayBuffer(buf, now, func() error {
		return driver.LoadRing(buf, st.ring, buf.Sample)
	})
	if err != nil {
		log.Printf("[dummy] play: %v", err)
		return
	}
	st.playStart = now

	d.mu.Lock()
	d.plays++
	d.mu.Unlock()
}

// Stop halts playback
func (d *Driver) Stop(buf *driver.Buffer) {
	driver.StopBuffer(buf)
}

// Refresh advances the simulated play cursor and stops finished buffers
func (d *Driver) Refresh(buf *driver.Buffer) {
	st := d.state(buf)
	if st == nil || !buf.IsPlaying() {
		return
	}
	now := d.opts.Clock.RealMillis()
	elapsed := now - st.playStart
	played := elapsed * int64(buf.Freq) / 1000 * int64(buf.Bytes)
	cursor := int(played % int64(buf.Length))

	finished, err := driver.RefreshRing(buf, st.ring, cursor, now)
	if err != nil {
		if d.opts.Verbose {
			log.Printf("[dummy] refresh: %v", err)
		}
		return
	}
	if finished {
		d.Stop(buf)
	}
}

// Set records a scalar property. Frequency takes effect immediately.
func (d *Driver) Set(buf *driver.Buffer, prop driver.BufferProperty, value float64) {
	st := d.state(buf)
	if st == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	switch prop {
	case driver.Volume:
		st.pending.Volume = value
	case driver.Frequency:
		st.pending.FreqRatio = value
		driver.SetFrequency(buf, value, d.opts.Clock.RealMillis())
	case driver.Pan:
		st.pending.Pan = value
	case driver.MinDistance:
		st.pending.MinDistance = value
	case driver.MaxDistance:
		st.pending.MaxDistance = value
	case driver.Relative:
		st.pending.Relative = value != 0
	}
}

// SetVector records a vector property
func (d *Driver) SetVector(buf *driver.Buffer, prop driver.BufferProperty, values [3]float64) {
	st := d.state(buf)
	if st == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	switch prop {
	case driver.Position:
		st.pending.Position = values
	case driver.Velocity:
		st.pending.Velocity = values
	}
}

// Listener records a scalar listener property. ListenerUpdate commits all
// pending buffer and listener changes.
func (d *Driver) Listener(prop driver.ListenerProperty, value float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch prop {
	case driver.ListenerUpdate:
		for _, st := range d.buffers {
			st.committed = st.pending
		}
		d.pending.Commits = d.listener.Commits + 1
		d.listener = d.pending
		d.listener.Reverb = append([]float64(nil), d.pending.Reverb...)
	case driver.UnitsPerMeter:
		d.pending.UnitsPerMeter = value
	case driver.Doppler:
		d.pending.Doppler = value
	}
}

// ListenerVector records a vector listener property
func (d *Driver) ListenerVector(prop driver.ListenerProperty, values []float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch prop {
	case driver.PrimaryFormat:
		if len(values) >= 2 {
			d.pending.Bits, d.pending.Rate = int(values[0]), int(values[1])
		}
	case driver.ListenerPosition:
		copy(d.pending.Position[:], values)
	case driver.ListenerVelocity:
		copy(d.pending.Velocity[:], values)
	case driver.ListenerOrientation:
		if len(values) >= 2 {
			d.pending.Yaw, d.pending.Pitch = values[0], values[1]
		}
	case driver.ListenerReverb:
		d.pending.Reverb = append(d.pending.Reverb[:0], values...)
	}
}

// Props returns the committed properties of a buffer
func (d *Driver) Props(buf *driver.Buffer) (Props, bool) {
	st := d.state(buf)
	if st == nil {
		return Props{}, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return st.committed, true
}

// ListenerState returns the committed listener state
func (d *Driver) ListenerState() ListenerState {
	d.mu.Lock()
	defer d.mu.Unlock()
	ls := d.listener
	ls.Reverb = append([]float64(nil), d.listener.Reverb...)
	return ls
}

// BufferCount returns the number of live buffers
func (d *Driver) BufferCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.buffers)
}

// Plays returns how many times Play started a buffer
func (d *Driver) Plays() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.plays
}

func (d *Driver) state(buf *driver.Buffer) *bufferState {
	if buf == nil {
		return nil
	}
	st, _ := buf.Private.(*bufferState)
	return st
}
