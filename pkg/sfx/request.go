// ABOUTME: Sound definitions, start requests and the world interface
// ABOUTME: What a caller hands the sound system to play a sound
package sfx

import (
	"fmt"
	"strings"

	"github.com/sfxkit/sfxkit/pkg/world"
)

// StartFlags modify a single start request
type StartFlags uint32

const (
	// RandomShift detunes the sound by up to ±7/255
	RandomShift StartFlags = 1 << iota
	// RandomShift2 detunes the sound by up to ±15/255
	RandomShift2
	// ExcludeAll stops every instance of the sound, on any emitter, first
	ExcludeAll
	// NoAttenuation plays at full volume regardless of distance
	NoAttenuation
	// Repeat loops the sound until stopped
	Repeat
	// DontStop protects the sound from stealing and priority stops
	DontStop
)

// Has reports whether every bit of f2 is set
func (f StartFlags) Has(f2 StartFlags) bool {
	return f&f2 == f2
}

var startFlagNames = []struct {
	flag StartFlags
	name string
}{
	{RandomShift, "random-shift"},
	{RandomShift2, "random-shift2"},
	{ExcludeAll, "exclude-all"},
	{NoAttenuation, "no-attenuation"},
	{Repeat, "repeat"},
	{DontStop, "dont-stop"},
}

// ParseFlags converts flag names as printed by String back to flags
func ParseFlags(names []string) (StartFlags, error) {
	var f StartFlags
next:
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		for _, n := range startFlagNames {
			if n.name == name {
				f |= n.flag
				continue next
			}
		}
		return 0, fmt.Errorf("unknown sound flag %q", name)
	}
	return f, nil
}

func (f StartFlags) String() string {
	var parts []string
	for _, n := range startFlagNames {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Definition describes a sound id
type Definition struct {
	ID       int
	Name     string
	Priority int        // higher is more important
	Channels int        // max simultaneous instances, 0 for no limit
	Group    int        // exclusion group, 0 for none
	Flags    StartFlags // applied to every start of this sound
}

// Definitions looks up sound definitions
type Definitions interface {
	Definition(id int) (Definition, bool)
}

// DefinitionMap is an in-memory Definitions
type DefinitionMap map[int]Definition

// Definition returns the definition for id
func (m DefinitionMap) Definition(id int) (Definition, bool) {
	d, ok := m[id]
	return d, ok
}

// World resolves emitters and environments. world.Registry implements it.
type World interface {
	Object(h world.Handle) (world.Object, bool)
	Reverb(cluster int) (world.Reverb, bool)
}

// Request asks for a sound to be started
type Request struct {
	ID int

	// Volume is 0..1; 0 or less rejects the start
	Volume float64

	// Freq is the playback rate multiplier, 0 means 1
	Freq float64

	// Emitter tracks a world object. Origin is used when Emitter is zero.
	// With neither the sound has no position.
	Emitter world.Handle
	Origin  *world.Vec3

	Flags StartFlags
}
