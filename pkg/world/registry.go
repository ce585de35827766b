// ABOUTME: Arena of world objects addressed by generation-checked handles
// ABOUTME: Stale handles resolve to "no object" instead of dangling references
package world

import (
	"errors"
	"sync"
)

// ErrStaleHandle is returned when a handle no longer names a live object
var ErrStaleHandle = errors.New("stale object handle")

// Handle is a weak reference to a world object. The zero Handle names nothing.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether the handle is the empty handle
func (h Handle) IsZero() bool {
	return h.gen == 0
}

// Object is the state the sound system reads from a world object
type Object struct {
	Origin   Vec3    // feet position
	Height   float64 // vertical extent
	Momentum Vec3    // units per tic
	Angle    uint32  // facing, binary angle (2^32 = full turn)
	LookDir  float64 // vertical look, -110..110
	Actor    bool    // dynamic actor rather than static decoration
	Cluster  int     // acoustic region, 0 = none
}

// Reverb is an acoustic environment description
type Reverb struct {
	Volume  float64
	Space   float64
	Decay   float64
	Damping float64
}

// Array returns the reverb as the four-component vector drivers consume
func (r Reverb) Array() []float64 {
	return []float64{r.Volume, r.Space, r.Decay, r.Damping}
}

type slot struct {
	gen   uint32
	alive bool
	obj   Object
}

// Registry owns world objects and hands out handles to them
type Registry struct {
	mu     sync.RWMutex
	slots  []slot
	free   []uint32
	reverb map[int]Reverb
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{reverb: make(map[int]Reverb)}
}

// Spawn stores an object and returns a handle to it
func (r *Registry) Spawn(obj Object) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, slot{})
	}

	s := &r.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.alive = true
	s.obj = obj
	return Handle{index: idx, gen: s.gen}
}

// Update replaces a live object's state
func (r *Registry) Update(h Handle, obj Object) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.lookup(h)
	if !ok {
		return ErrStaleHandle
	}
	s.obj = obj
	return nil
}

// Modify applies fn to a live object in place
func (r *Registry) Modify(h Handle, fn func(*Object)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.lookup(h)
	if !ok {
		return ErrStaleHandle
	}
	fn(&s.obj)
	return nil
}

// Despawn destroys an object. Outstanding handles become stale.
func (r *Registry) Despawn(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.lookup(h)
	if !ok {
		return
	}
	s.alive = false
	s.obj = Object{}
	r.free = append(r.free, h.index)
}

// Object returns a copy of the object named by h
func (r *Registry) Object(h Handle) (Object, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.lookup(h)
	if !ok {
		return Object{}, false
	}
	return s.obj, true
}

// Len returns the number of live objects
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.slots) - len(r.free)
}

// Clear destroys every object, invalidating all handles (map change)
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.free = r.free[:0]
	for i := range r.slots {
		r.slots[i].alive = false
		r.slots[i].obj = Object{}
		r.free = append(r.free, uint32(i))
	}
	r.reverb = make(map[int]Reverb)
}

// SetReverb assigns an acoustic environment to a cluster
func (r *Registry) SetReverb(cluster int, rev Reverb) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reverb[cluster] = rev
}

// Reverb returns the environment of a cluster
func (r *Registry) Reverb(cluster int) (Reverb, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rev, ok := r.reverb[cluster]
	return rev, ok
}

func (r *Registry) lookup(h Handle) (*slot, bool) {
	if h.IsZero() || int(h.index) >= len(r.slots) {
		return nil, false
	}
	s := &r.slots[h.index]
	if !s.alive || s.gen != h.gen {
		return nil, false
	}
	return s, true
}
