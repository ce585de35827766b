// ABOUTME: Sound system owning the driver, sample cache, channel pool and refresh thread
// ABOUTME: Every channel and buffer mutation happens inside its critical section
package sfx

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sfxkit/sfxkit/pkg/audio"
	"github.com/sfxkit/sfxkit/pkg/audio/resample"
	"github.com/sfxkit/sfxkit/pkg/cache"
	"github.com/sfxkit/sfxkit/pkg/clock"
	"github.com/sfxkit/sfxkit/pkg/driver"
	"github.com/sfxkit/sfxkit/pkg/world"
)

// Listener constants handed to the driver on init
const (
	unitsPerMeter = 30
	dopplerFactor = 1.5
)

// Options wires a System to its collaborators
type Options struct {
	Config      Config
	Driver      driver.Driver
	Loader      cache.Loader
	Definitions Definitions
	World       World       // nil when nothing can emit sounds
	Clock       clock.Clock // game tics and real time; defaults to a system clock
	Rand        *rand.Rand  // frequency shift source
}

// Stats are cumulative sound system counters
type Stats struct {
	Started   int `json:"started"`
	Rejected  int `json:"rejected"`
	Stolen    int `json:"stolen"`
	NoChannel int `json:"no_channel"`
	Stopped   int `json:"stopped"`
}

// System is the sound effects system
type System struct {
	config Config
	driver driver.Driver
	defs   Definitions
	world  World
	clock  clock.Clock
	rng    *rand.Rand
	cache  *cache.Cache

	// critical section
	mu              sync.Mutex
	initialized     bool
	caps            driver.Capabilities
	channels        *ChannelSet
	use3D           bool
	listener        world.Handle
	listenerCluster int
	stats           Stats

	volume       atomic.Int32
	available    atomic.Bool
	allowRefresh atomic.Bool
	refreshing   atomic.Bool

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a sound system. Call Init before use.
func New(opts Options) *System {
	if opts.Clock == nil {
		opts.Clock = clock.NewSystem()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.World == nil {
		opts.World = emptyWorld{}
	}
	if opts.Definitions == nil {
		opts.Definitions = DefinitionMap{}
	}
	if opts.Config.Channels <= 0 {
		opts.Config.Channels = DefaultConfig().Channels
	}

	s := &System{
		config:          opts.Config,
		driver:          opts.Driver,
		defs:            opts.Definitions,
		world:           opts.World,
		clock:           opts.Clock,
		rng:             opts.Rand,
		listenerCluster: -1,
	}
	s.volume.Store(int32(clampInt(opts.Config.Volume, 0, 255)))
	s.channels = newChannelSet(s, opts.Config.Channels)

	s.cache = cache.New(cache.Config{
		MaxBytes:      opts.Config.CacheBytes,
		PurgeInterval: opts.Config.PurgeInterval,
		MaxIdle:       opts.Config.MaxIdle,
		InUse:         s.channels.IsPlaying,
	}, opts.Loader, opts.Clock)
	s.cache.Subscribe(s.sampleRemoved)
	return s
}

// Init starts the driver, creates the channel buffers and launches the
// refresh thread unless the driver refreshes on its own
func (s *System) Init() error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return nil
	}

	if err := s.driver.Init(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: driver init: %w", ErrUnavailable, err)
	}
	s.caps = s.driver.Capabilities()
	if !s.caps.AnySampleRate {
		s.cache.SetTransform(converter(s.config.Rate, s.config.Bits))
	}

	s.driver.Listener(driver.UnitsPerMeter, unitsPerMeter)
	s.driver.Listener(driver.Doppler, dopplerFactor)
	s.driver.ListenerVector(driver.PrimaryFormat, []float64{float64(s.config.Bits), float64(s.config.Rate)})

	s.use3D = s.config.Use3D
	s.createBuffersLocked()
	if !s.use3D {
		s.noReverbLocked()
	}
	s.driver.Listener(driver.ListenerUpdate, 0)

	s.initialized = true
	s.available.Store(true)
	s.mu.Unlock()

	if !s.caps.NoChannelRefresh {
		s.startRefresh()
	}

	log.Printf("[sfx] Initialized %d channels (%s, %d Hz %d-bit) on %s",
		s.channels.Count(), s.mode(), s.config.Rate, s.config.Bits, s.caps.Identity)
	return nil
}

// Shutdown stops every sound, joins the refresh thread and releases the driver
func (s *System) Shutdown() {
	if !s.available.Swap(false) {
		return
	}

	s.AllowRefresh(false)
	s.stopRefresh()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.destroyBuffersLocked()
	s.cache.Clear()
	s.driver.Shutdown()
	s.initialized = false
	s.listener = world.Handle{}
	s.listenerCluster = -1

	log.Printf("[sfx] Shut down")
}

// Available reports whether the system is initialized and accepting sounds
func (s *System) Available() bool {
	return s.available.Load()
}

// Cache returns the sample cache. Remove samples through Unload so playing
// buffers are released first.
func (s *System) Cache() *cache.Cache {
	return s.cache
}

// SetVolume changes the master volume, 0-255
func (s *System) SetVolume(v int) {
	s.volume.Store(int32(clampInt(v, 0, 255)))
}

// Volume returns the master volume
func (s *System) Volume() int {
	return int(s.volume.Load())
}

// AllowRefresh enables or disables the refresh thread. Disabling waits for an
// in-progress pass to finish, so it must not be called inside the critical
// section.
func (s *System) AllowRefresh(allow bool) {
	s.allowRefresh.Store(allow)
	if allow {
		return
	}
	for s.refreshing.Load() {
		time.Sleep(time.Millisecond)
	}
}

func (s *System) startRefresh() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.allowRefresh.Store(true)
	go s.refreshLoop(ctx, s.done)
}

func (s *System) stopRefresh() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	select {
	case <-s.done:
	case <-time.After(s.config.ShutdownTimeout):
		log.Printf("[sfx] Refresh thread did not stop within %v", s.config.ShutdownTimeout)
	}
	s.cancel = nil
}

// refreshLoop keeps the driver's ring buffers filled. The refreshing flag is
// raised before allowRefresh is read so that AllowRefresh(false) never
// misses a pass.
func (s *System) refreshLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		wait := s.config.IdleInterval
		s.refreshing.Store(true)
		if s.allowRefresh.Load() {
			s.mu.Lock()
			s.channels.RefreshAll(s.driver)
			s.mu.Unlock()
			wait = s.config.RefreshInterval
		}
		s.refreshing.Store(false)

		timer.Reset(wait)
	}
}

// Refresh runs one refresh pass synchronously
func (s *System) Refresh() {
	if !s.available.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels.RefreshAll(s.driver)
}

// Set3D switches between positional and stereo buffers. Every sound stops.
func (s *System) Set3D(on bool) {
	if !s.available.Load() {
		return
	}

	s.AllowRefresh(false)
	defer s.AllowRefresh(true)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.use3D == on && s.config.Use3D == on {
		return
	}
	s.config.Use3D = on
	s.destroyBuffersLocked()
	s.use3D = on
	s.createBuffersLocked()
	if !s.use3D {
		s.noReverbLocked()
	}
	s.listenerCluster = -1
	s.driver.Listener(driver.ListenerUpdate, 0)

	log.Printf("[sfx] Switched to %s", s.mode())
}

// SetSampleFormat changes the primary output format. The cache is cleared
// since cached samples were converted for the old format.
func (s *System) SetSampleFormat(bits, rate int) error {
	if bits != 8 && bits != 16 {
		return fmt.Errorf("%w: %d bits", driver.ErrBadFormat, bits)
	}
	if rate <= 0 {
		return fmt.Errorf("%w: %d Hz", driver.ErrBadFormat, rate)
	}
	if !s.available.Load() {
		return ErrUnavailable
	}

	s.AllowRefresh(false)
	defer s.AllowRefresh(true)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Bits == bits && s.config.Rate == rate {
		return nil
	}
	s.config.Bits, s.config.Rate = bits, rate

	s.destroyBuffersLocked()
	s.cache.Clear()
	if !s.caps.AnySampleRate {
		s.cache.SetTransform(converter(rate, bits))
	}
	s.driver.ListenerVector(driver.PrimaryFormat, []float64{float64(bits), float64(rate)})
	s.createBuffersLocked()
	s.driver.Listener(driver.ListenerUpdate, 0)

	log.Printf("[sfx] Sample format now %d Hz %d-bit", rate, bits)
	return nil
}

// Reset stops every sound, empties the cache and forgets the listener,
// e.g. when a level changes
func (s *System) Reset() {
	if !s.available.Load() {
		return
	}

	s.AllowRefresh(false)
	defer s.AllowRefresh(true)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopAllLocked()
	s.cache.Clear()
	s.listener = world.Handle{}
	s.listenerCluster = -1
	if !s.use3D {
		s.noReverbLocked()
	}
	s.driver.Listener(driver.ListenerUpdate, 0)
}

// Purge evicts samples until the cache is within budget
func (s *System) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Purge()
}

// Unload stops every channel using sample id and drops it from the cache
func (s *System) Unload(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.channels.channels {
		if ch.buffer != nil && ch.buffer.SampleID() == id {
			s.driver.Stop(ch.buffer)
			s.driver.Reset(ch.buffer)
		}
	}
	return s.cache.Remove(id)
}

// sampleRemoved runs from the cache with its lock held. Every cache removal
// is made from inside the critical section.
func (s *System) sampleRemoved(smp *audio.Sample) {
	for _, ch := range s.channels.channels {
		if ch.buffer != nil && ch.buffer.Sample == smp {
			s.driver.Stop(ch.buffer)
			s.driver.Reset(ch.buffer)
		}
	}
	if s.config.Verbose {
		log.Printf("[sfx] Sample %d released", smp.ID)
	}
}

func (s *System) createBuffersLocked() {
	bits, rate := s.config.Bits, s.config.Rate
	for _, ch := range s.channels.channels {
		buf, err := s.createBufferLocked(s.use3D, bits, rate)
		if err != nil {
			log.Printf("[sfx] Channel %d: %v", ch.index, err)
			continue
		}
		if s.use3D && !buf.Is3D() {
			s.use3D = false
			log.Printf("[sfx] 3D buffers unavailable, using stereo")
			// earlier channels have 3D buffers; redo them
			s.destroyBuffersLocked()
			s.driver.Destroy(buf)
			s.createBuffersLocked()
			return
		}
		ch.buffer = buf
	}
}

// createBufferLocked makes a buffer, falling back to 2D when a 3D one fails
func (s *System) createBufferLocked(want3D bool, bits, rate int) (*driver.Buffer, error) {
	if want3D {
		buf, err := s.driver.Create(driver.Flag3D, bits, rate)
		if err == nil {
			return buf, nil
		}
		if s.config.Verbose {
			log.Printf("[sfx] 3D buffer: %v", err)
		}
	}
	buf, err := s.driver.Create(0, bits, rate)
	if err != nil {
		return nil, fmt.Errorf("create %d-bit %d Hz buffer: %w", bits, rate, err)
	}
	return buf, nil
}

func (s *System) destroyBuffersLocked() {
	for _, ch := range s.channels.channels {
		if ch.buffer == nil {
			continue
		}
		s.driver.Stop(ch.buffer)
		s.driver.Destroy(ch.buffer)
		ch.buffer = nil
		ch.flags = 0
		ch.emitter = world.Handle{}
	}
}

func (s *System) mode() string {
	if s.use3D {
		return "3D"
	}
	return "stereo"
}

func (s *System) definition(id int) (Definition, bool) {
	if id <= 0 {
		return Definition{}, false
	}
	return s.defs.Definition(id)
}

func converter(rate, bits int) func(*audio.Sample) (*audio.Sample, error) {
	return func(smp *audio.Sample) (*audio.Sample, error) {
		return resample.Convert(smp, rate, bits)
	}
}

type emptyWorld struct{}

func (emptyWorld) Object(world.Handle) (world.Object, bool) { return world.Object{}, false }
func (emptyWorld) Reverb(int) (world.Reverb, bool) { return world.Reverb{}, false }
