// ABOUTME: Sample cache keyed by sound id with hit-count eviction
// ABOUTME: Decodes on miss under one lock, purges over budget or idle, notifies observers before removal
package cache

import (
	"container/list"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sfxkit/sfxkit/pkg/audio"
	"github.com/sfxkit/sfxkit/pkg/clock"
)

// ErrLoad is returned when a sample cannot be produced for an id
var ErrLoad = errors.New("sample load failed")

// Loader produces the sample for a sound id
type Loader interface {
	Load(id int) (*audio.Sample, error)
}

// LoaderFunc adapts a function to Loader
type LoaderFunc func(id int) (*audio.Sample, error)

// Load calls f
func (f LoaderFunc) Load(id int) (*audio.Sample, error) {
	return f(id)
}

// Observer is told that a sample is about to be removed. It runs with the
// cache lock held and must not call back into the cache.
type Observer func(s *audio.Sample)

// Config holds cache settings
type Config struct {
	// MaxBytes is the budget; purge evicts until the total is at or below it
	MaxBytes int

	// PurgeInterval is the minimum number of tics between purges
	PurgeInterval int64

	// MaxIdle evicts samples not hit for this many tics. 0 disables it.
	MaxIdle int64

	// Transform converts freshly loaded samples, e.g. upsampling
	Transform func(*audio.Sample) (*audio.Sample, error)

	// InUse reports whether a sample id is loaded in a playing buffer.
	// Purge never evicts such samples. Runs with the cache lock held.
	InUse func(id int) bool
}

// DefaultConfig returns a 4 MiB cache purged every 2 seconds that drops
// samples idle for 20 seconds
func DefaultConfig() Config {
	return Config{
		MaxBytes:      4 << 20,
		PurgeInterval: 2 * clock.TicsPerSecond,
		MaxIdle:       20 * clock.TicsPerSecond,
	}
}

type item struct {
	sample   *audio.Sample
	hits     int
	lastUsed int64
}

// Stats are cumulative cache counters
type Stats struct {
	Hits      int `json:"hits"`
	Misses    int `json:"misses"`
	Failures  int `json:"failures"`
	Evictions int `json:"evictions"`
}

// Cache stores decoded samples
type Cache struct {
	config Config
	loader Loader
	clock  clock.Clock

	mu        sync.Mutex
	items     map[int]*list.Element
	order     *list.List // most recently inserted first
	total     int
	lastPurge int64
	observers []Observer
	stats     Stats
}

// New creates a cache that loads through loader
func New(config Config, loader Loader, clk clock.Clock) *Cache {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Cache{
		config:    config,
		loader:    loader,
		clock:     clk,
		items:     make(map[int]*list.Element),
		order:     list.New(),
		lastPurge: clk.Ticks(),
	}
}

// Subscribe registers an observer for sample removal
func (c *Cache) Subscribe(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// SetInUse replaces the in-use query
func (c *Cache) SetInUse(fn func(id int) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.InUse = fn
}

// SetTransform replaces the sample transform. Already cached samples are kept.
func (c *Cache) SetTransform(fn func(*audio.Sample) (*audio.Sample, error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.Transform = fn
}

// Cache returns the sample for id, loading it on first use. Every call after
// the first counts as a hit.
func (c *Cache) Cache(id int) (*audio.Sample, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(id, true)
}

// Fetch is Cache without recording a hit. The caller is expected to call Hit
// once the sample is actually used.
func (c *Cache) Fetch(id int) (*audio.Sample, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(id, false)
}

func (c *Cache) getLocked(id int, hit bool) (*audio.Sample, error) {
	if el, ok := c.items[id]; ok {
		if hit {
			c.hitLocked(el.Value.(*item))
		}
		c.stats.Hits++
		return el.Value.(*item).sample, nil
	}

	c.stats.Misses++
	s, err := c.loader.Load(id)
	if err == nil && !s.HasData() {
		err = audio.ErrEmptySample
	}
	if err == nil && c.config.Transform != nil {
		s, err = c.config.Transform(s)
	}
	if err != nil {
		c.stats.Failures++
		return nil, fmt.Errorf("%w: sound %d: %w", ErrLoad, id, err)
	}
	s.ID = id

	it := &item{sample: s, lastUsed: c.clock.Ticks()}
	c.items[id] = c.order.PushFront(it)
	c.total += s.Size
	return s, nil
}

// Hit records a use of id. Unknown ids are ignored.
func (c *Cache) Hit(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[id]; ok {
		c.hitLocked(el.Value.(*item))
	}
}

func (c *Cache) hitLocked(it *item) {
	it.hits++
	it.lastUsed = c.clock.Ticks()
}

// Hits returns the hit count of id
func (c *Cache) Hits(id int) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[id]
	if !ok {
		return 0, false
	}
	return el.Value.(*item).hits, true
}

// Contains reports whether id is cached
func (c *Cache) Contains(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[id]
	return ok
}

// Info returns the total cached bytes and the number of samples
func (c *Cache) Info() (totalBytes, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total, len(c.items)
}

// Stats returns the cumulative counters
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// MaybeRunPurge purges if PurgeInterval tics have passed since the last
// purge. It returns the number of evicted samples.
func (c *Cache) MaybeRunPurge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Ticks()
	if now-c.lastPurge < c.config.PurgeInterval {
		return 0
	}
	c.lastPurge = now
	return c.purgeLocked(now)
}

// Purge evicts idle samples and, while over budget, the least hit samples
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Ticks()
	c.lastPurge = now
	return c.purgeLocked(now)
}

func (c *Cache) purgeLocked(now int64) int {
	removed := 0

	var candidates []*item
	for el := c.order.Front(); el != nil; {
		it := el.Value.(*item)
		el = el.Next()
		if c.inUse(it.sample.ID) {
			continue
		}
		if c.config.MaxIdle > 0 && now-it.lastUsed > c.config.MaxIdle {
			c.removeLocked(it.sample.ID)
			removed++
			continue
		}
		candidates = append(candidates, it)
	}

	if c.config.MaxBytes <= 0 || c.total <= c.config.MaxBytes {
		return removed
	}

	// lowest hit count first, oldest use breaks ties
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].hits != candidates[j].hits {
			return candidates[i].hits < candidates[j].hits
		}
		return candidates[i].lastUsed < candidates[j].lastUsed
	})
	for _, it := range candidates {
		if c.total <= c.config.MaxBytes {
			break
		}
		c.removeLocked(it.sample.ID)
		removed++
	}
	return removed
}

func (c *Cache) inUse(id int) bool {
	return c.config.InUse != nil && c.config.InUse(id)
}

// Remove drops one sample. Observers are notified first.
func (c *Cache) Remove(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(id)
}

func (c *Cache) removeLocked(id int) bool {
	el, ok := c.items[id]
	if !ok {
		return false
	}
	it := el.Value.(*item)
	for _, o := range c.observers {
		o(it.sample)
	}
	c.order.Remove(el)
	delete(c.items, id)
	c.total -= it.sample.Size
	c.stats.Evictions++
	return true
}

// Clear drops every sample. Observers are notified for each one so buffers
// can release their references first.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for el := c.order.Front(); el != nil; {
		next := el.Next()
		c.removeLocked(el.Value.(*item).sample.ID)
		el = next
	}
	c.total = 0
}

// Entry describes one cached sample
type Entry struct {
	ID       int   `json:"id"`
	Bytes    int   `json:"bytes"`
	Rate     int   `json:"rate"`
	Bits     int   `json:"bits"`
	Millis   int64 `json:"millis"`
	Hits     int   `json:"hits"`
	LastUsed int64 `json:"last_used"`
}

// Entries lists the cached samples, most recently inserted first
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, 0, len(c.items))
	for el := c.order.Front(); el != nil; el = el.Next() {
		it := el.Value.(*item)
		out = append(out, Entry{
			ID:       it.sample.ID,
			Bytes:    it.sample.Size,
			Rate:     it.sample.Rate,
			Bits:     it.sample.Bits(),
			Millis:   it.sample.Milliseconds(),
			Hits:     it.hits,
			LastUsed: it.lastUsed,
		})
	}
	return out
}
