// ABOUTME: Sample cache package
// ABOUTME: Keyed store of decoded sound samples with budgeted, in-use aware eviction
// Package cache keeps decoded sound samples in memory, keyed by sound id.
//
// The first Cache call for an id loads the sample through a Loader while the
// cache lock is held, so concurrent callers never decode the same id twice.
// Later calls return the same *audio.Sample and count a hit.
//
// MaybeRunPurge, called periodically by the owner, evicts samples idle for
// longer than MaxIdle and then, while the total exceeds MaxBytes, the samples
// with the fewest hits (oldest use first). Samples reported by InUse are
// never evicted. Observers hear about every removal before it happens.
//
//	c := cache.New(cache.DefaultConfig(), loader, clk)
//	s, err := c.Cache(id)
//	c.MaybeRunPurge()
package cache
