// ABOUTME: Driver-owned playback buffer and its state flags
// ABOUTME: Tracks the loaded sample, ring cursors and predicted end time
package driver

import (
	"strings"

	"github.com/sfxkit/sfxkit/pkg/audio"
)

// BufferFlags is the state bitmask of a buffer
type BufferFlags uint32

const (
	FlagPlaying BufferFlags = 1 << iota
	Flag3D
	FlagRepeat
	FlagDontStop
	FlagStreaming
	FlagNeedsReload
)

// Has reports whether every bit of f2 is set
func (f BufferFlags) Has(f2 BufferFlags) bool {
	return f&f2 == f2
}

func (f BufferFlags) String() string {
	names := []struct {
		flag BufferFlags
		name string
	}{
		{FlagPlaying, "playing"},
		{Flag3D, "3d"},
		{FlagRepeat, "repeat"},
		{FlagDontStop, "dont-stop"},
		{FlagStreaming, "streaming"},
		{FlagNeedsReload, "reload"},
	}
	var parts []string
	for _, n := range names {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "|")
}

// Buffer is a playback resource created by a Driver. Callers may read every
// field. Only the driver writes them, except FlagRepeat and FlagDontStop which
// the owner sets before Load.
type Buffer struct {
	Private any           // driver data
	Sample  *audio.Sample // loaded sample, owned by the cache
	Bytes   int           // bytes per sample
	Rate    int           // native rate in Hz
	Flags   BufferFlags
	Length  int   // ring length in bytes
	Cursor  int   // next write position in the ring
	Written int   // sample bytes written so far
	EndTime int64 // predicted real-time end in ms, 0 when unknown
	Freq    int   // effective playback rate in Hz

	drained bool // streaming source returned no more data
}

// IsPlaying reports whether the buffer is playing
func (b *Buffer) IsPlaying() bool {
	return b.Flags.Has(FlagPlaying)
}

// Is3D reports whether the buffer is positional
func (b *Buffer) Is3D() bool {
	return b.Flags.Has(Flag3D)
}

// Matches reports whether the buffer has the given format
func (b *Buffer) Matches(use3D bool, bytes, rate int) bool {
	return b.Is3D() == use3D && b.Bytes == bytes && b.Rate == rate
}

// SampleID returns the id of the loaded sample, or 0
func (b *Buffer) SampleID() int {
	if b.Sample == nil {
		return 0
	}
	return b.Sample.ID
}

// NewBuffer fills in the common fields of a freshly created buffer. The ring
// holds half a second of audio.
func NewBuffer(flags BufferFlags, bits, rate int) *Buffer {
	bytes := bits / 8
	length := rate * bytes / 2
	length -= length % bytes
	return &Buffer{
		Bytes:  bytes,
		Rate:   rate,
		Freq:   rate,
		Flags:  flags & (Flag3D | FlagRepeat | FlagStreaming),
		Length: length,
	}
}
