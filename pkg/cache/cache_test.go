// ABOUTME: Tests for the sample cache
// ABOUTME: Covers identity, hit counting, purge ordering, purge safety and observers
package cache

import (
	"errors"
	"sync"
	"testing"

	"github.com/sfxkit/sfxkit/pkg/audio"
	"github.com/sfxkit/sfxkit/pkg/clock"
)

// countingLoader makes samples of a fixed size and counts loads per id
type countingLoader struct {
	mu    sync.Mutex
	size  int
	loads map[int]int
	fail  map[int]bool
}

func newLoader(size int) *countingLoader {
	return &countingLoader{size: size, loads: make(map[int]int), fail: make(map[int]bool)}
}

func (l *countingLoader) Load(id int) (*audio.Sample, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads[id]++
	if l.fail[id] {
		return nil, errors.New("missing lump")
	}
	return audio.NewSample(id, make([]byte, l.size), 1, 11025)
}

func newCache(cfg Config, size int) (*Cache, *countingLoader, *clock.Manual) {
	clk := clock.NewManual()
	l := newLoader(size)
	return New(cfg, l, clk), l, clk
}

func TestCacheScenarioHitsAndDuration(t *testing.T) {
	c, l, _ := newCache(DefaultConfig(), 22050) // 2 s of 8-bit 11025 Hz

	var first *audio.Sample
	for i := 0; i < 3; i++ {
		s, err := c.Cache(5)
		if err != nil {
			t.Fatalf("Cache: %v", err)
		}
		if first == nil {
			first = s
		} else if s != first {
			t.Fatal("repeated Cache calls must return the same sample")
		}
	}

	if _, count := c.Info(); count != 1 {
		t.Errorf("expected one cached item, got %d", count)
	}
	if hits, _ := c.Hits(5); hits != 2 {
		t.Errorf("expected 2 hits, got %d", hits)
	}
	if first.Milliseconds() != 2000 {
		t.Errorf("expected 2000ms, got %d", first.Milliseconds())
	}
	if l.loads[5] != 1 {
		t.Errorf("expected one decode, got %d", l.loads[5])
	}
}

func TestHitIsCumulative(t *testing.T) {
	c, _, _ := newCache(DefaultConfig(), 10)
	c.Cache(1)

	for i := 0; i < 7; i++ {
		c.Hit(1)
	}
	c.Hit(99) // unknown id is a no-op

	if hits, _ := c.Hits(1); hits != 7 {
		t.Errorf("expected 7 hits, got %d", hits)
	}
	if _, ok := c.Hits(99); ok {
		t.Error("Hit must not create entries")
	}
}

func TestLoadFailure(t *testing.T) {
	c, l, _ := newCache(DefaultConfig(), 10)
	l.fail[3] = true

	if _, err := c.Cache(3); !errors.Is(err, ErrLoad) {
		t.Errorf("expected ErrLoad, got %v", err)
	}
	if c.Contains(3) {
		t.Error("failed load must not be cached")
	}
	if c.Stats().Failures != 1 {
		t.Errorf("expected one failure, got %+v", c.Stats())
	}
}

func TestConcurrentCacheDecodesOnce(t *testing.T) {
	c, l, _ := newCache(DefaultConfig(), 10)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Cache(8)
		}()
	}
	wg.Wait()

	if l.loads[8] != 1 {
		t.Errorf("expected a single decode, got %d", l.loads[8])
	}
	if hits, _ := c.Hits(8); hits != 15 {
		t.Errorf("expected 15 hits, got %d", hits)
	}
}

func TestPurgeEvictsLowestHitsFirst(t *testing.T) {
	cfg := Config{MaxBytes: 250}
	c, _, clk := newCache(cfg, 100)

	c.Cache(1) // hits 0, oldest
	clk.Advance(1)
	c.Cache(2) // hits 0, newer
	clk.Advance(1)
	c.Cache(3)
	c.Hit(3)
	c.Hit(3)

	removed := c.Purge()

	if removed != 1 {
		t.Fatalf("expected one eviction, got %d", removed)
	}
	if c.Contains(1) {
		t.Error("oldest of the least hit samples should be evicted")
	}
	if !c.Contains(2) || !c.Contains(3) {
		t.Error("wrong samples evicted")
	}
	if total, _ := c.Info(); total != 200 {
		t.Errorf("expected 200 bytes left, got %d", total)
	}
}

func TestPurgeNeverEvictsInUse(t *testing.T) {
	playing := map[int]bool{1: true, 2: true}
	cfg := Config{
		MaxBytes: 50,
		MaxIdle:  10,
		InUse:    func(id int) bool { return playing[id] },
	}
	c, _, clk := newCache(cfg, 100)
	for id := 1; id <= 4; id++ {
		c.Cache(id)
	}
	clk.Advance(100) // everything idle

	c.Purge()

	for id := range playing {
		if !c.Contains(id) {
			t.Errorf("in-use sample %d evicted", id)
		}
	}
	if c.Contains(3) || c.Contains(4) {
		t.Error("idle samples not in use should be evicted")
	}
}

func TestIdleTimeout(t *testing.T) {
	cfg := Config{MaxIdle: 10}
	c, _, clk := newCache(cfg, 10)
	c.Cache(1)
	c.Cache(2)

	clk.Advance(8)
	c.Hit(2)
	clk.Advance(5)

	c.Purge()
	if c.Contains(1) {
		t.Error("sample idle past the limit should be evicted")
	}
	if !c.Contains(2) {
		t.Error("recently hit sample should stay")
	}
}

func TestMaybeRunPurgeThrottles(t *testing.T) {
	cfg := Config{MaxBytes: 1, PurgeInterval: 35}
	c, _, clk := newCache(cfg, 10)
	c.Cache(1)

	if n := c.MaybeRunPurge(); n != 0 {
		t.Errorf("purge ran before the interval, removed %d", n)
	}
	clk.Advance(35)
	if n := c.MaybeRunPurge(); n != 1 {
		t.Errorf("expected purge after the interval, removed %d", n)
	}
}

func TestDefaultPurgeIntervalIsTwoSeconds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBytes = 1
	c, _, clk := newCache(cfg, 10)
	c.Cache(1)

	clk.Advance(2*clock.TicsPerSecond - 1)
	if n := c.MaybeRunPurge(); n != 0 {
		t.Errorf("purge ran before 2s, removed %d", n)
	}
	clk.Advance(1)
	if n := c.MaybeRunPurge(); n != 1 {
		t.Errorf("expected purge at 2s, removed %d", n)
	}
}

func TestObserversNotifiedBeforeRemoval(t *testing.T) {
	c, _, _ := newCache(DefaultConfig(), 10)
	c.Cache(1)
	c.Cache(2)

	var seen []int
	c.Subscribe(func(s *audio.Sample) {
		seen = append(seen, s.ID)
	})

	if !c.Remove(1) {
		t.Fatal("Remove reported nothing removed")
	}
	c.Clear()

	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %v", seen)
	}
	if total, count := c.Info(); total != 0 || count != 0 {
		t.Errorf("cache not empty after Clear: %d bytes %d items", total, count)
	}
}

func TestTransformApplied(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transform = func(s *audio.Sample) (*audio.Sample, error) {
		return audio.NewSample(s.ID, make([]byte, s.Size*2), 2, s.Rate)
	}
	c, _, _ := newCache(cfg, 10)

	s, err := c.Cache(4)
	if err != nil {
		t.Fatal(err)
	}
	if s.BytesPer != 2 || s.Size != 20 {
		t.Errorf("transform not applied: %+v", s)
	}
	if total, _ := c.Info(); total != 20 {
		t.Errorf("budget should count transformed size, got %d", total)
	}
}

func TestEntries(t *testing.T) {
	c, _, _ := newCache(DefaultConfig(), 11025)
	c.Cache(1)
	c.Cache(2)
	c.Cache(2)

	entries := c.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != 2 || entries[0].Hits != 1 || entries[0].Millis != 1000 {
		t.Errorf("unexpected first entry %+v", entries[0])
	}
}

func TestFetchDoesNotCountHits(t *testing.T) {
	c, l, _ := newCache(DefaultConfig(), 100)

	for i := 0; i < 3; i++ {
		if _, err := c.Fetch(4); err != nil {
			t.Fatalf("Fetch: %v", err)
		}
	}
	if hits, _ := c.Hits(4); hits != 0 {
		t.Errorf("expected 0 hits after Fetch, got %d", hits)
	}
	if l.loads[4] != 1 {
		t.Errorf("expected one decode, got %d", l.loads[4])
	}

	c.Hit(4)
	if hits, _ := c.Hits(4); hits != 1 {
		t.Errorf("expected 1 hit, got %d", hits)
	}
}
