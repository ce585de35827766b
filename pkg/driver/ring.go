// ABOUTME: Byte ring backing software buffers and the shared refill protocol
// ABOUTME: Load, play, stop, refresh and frequency changes over a Buffer and its Ring
package driver

import (
	"fmt"
	"sync"

	"github.com/sfxkit/sfxkit/pkg/audio"
)

// Ring is the storage of a software buffer. Writers lock the stale region,
// fill it and unlock; readers hold the same lock while mixing.
type Ring struct {
	mu   sync.Mutex
	data []byte
}

// NewRing allocates a ring of n bytes filled with silence
func NewRing(n, bytesPer int) *Ring {
	r := &Ring{data: make([]byte, n)}
	audio.FillSilence(r.data, bytesPer)
	return r
}

// Len returns the ring size in bytes
func (r *Ring) Len() int {
	return len(r.data)
}

// Lock locks the ring and returns the region [offset, offset+n) as up to two
// slices, the second one non-empty when the region wraps
func (r *Ring) Lock(offset, n int) ([]byte, []byte, error) {
	if offset < 0 || offset >= len(r.data) || n < 0 || n > len(r.data) {
		return nil, nil, fmt.Errorf("%w: offset %d size %d ring %d", ErrRingLock, offset, n, len(r.data))
	}
	r.mu.Lock()
	end := offset + n
	if end <= len(r.data) {
		return r.data[offset:end], nil, nil
	}
	return r.data[offset:], r.data[:end-len(r.data)], nil
}

// Unlock releases a region returned by Lock
func (r *Ring) Unlock() {
	r.mu.Unlock()
}

// View runs fn with the ring contents locked
func (r *Ring) View(fn func(data []byte)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.data)
}

// LoadRing binds s to buf and fills the whole ring from the start of the sample
func LoadRing(buf *Buffer, ring *Ring, s *audio.Sample) error {
	buf.Sample = s
	buf.Written = 0
	buf.Cursor = 0
	buf.drained = false
	buf.Flags &^= FlagNeedsReload
	if s.IsStreaming() {
		buf.Flags |= FlagStreaming
	} else {
		buf.Flags &^= FlagStreaming
	}

	a, b, err := ring.Lock(0, ring.Len())
	if err != nil {
		return err
	}
	fillFromSample(buf, a)
	fillFromSample(buf, b)
	ring.Unlock()
	return nil
}

// PlayBuffer marks buf playing and predicts when it ends. A reload is done
// through reload when the buffer was stopped since its last load.
func PlayBuffer(buf *Buffer, now int64, reload func() error) error {
	if buf.Sample == nil {
		return nil
	}
	if buf.Flags.Has(FlagNeedsReload) {
		if err := reload(); err != nil {
			return err
		}
	}
	buf.Flags |= FlagPlaying
	buf.EndTime = predictEnd(buf, now)
	return nil
}

// StopBuffer clears the playing state and forces a reload on the next play
func StopBuffer(buf *Buffer) {
	buf.Flags &^= FlagPlaying
	buf.Flags |= FlagNeedsReload
}

// ResetBuffer stops buf and forgets its sample
func ResetBuffer(buf *Buffer) {
	StopBuffer(buf)
	buf.Sample = nil
	buf.Written = 0
	buf.Cursor = 0
	buf.EndTime = 0
}

// SetFrequency applies a frequency ratio. The remaining play time of a
// playing buffer is rescaled to the new rate.
func SetFrequency(buf *Buffer, ratio float64, now int64) {
	freq := int(float64(buf.Rate) * ratio)
	if freq < 1 {
		freq = 1
	}
	if freq == buf.Freq {
		return
	}
	if buf.IsPlaying() && buf.EndTime > now {
		remaining := buf.EndTime - now
		buf.EndTime = now + remaining*int64(buf.Freq)/int64(freq)
	}
	buf.Freq = freq
}

// RefreshRing writes the region the play cursor has passed since the last
// refresh. It reports whether the buffer reached its end and should be stopped.
func RefreshRing(buf *Buffer, ring *Ring, playCursor int, now int64) (finished bool, err error) {
	if !buf.IsPlaying() || buf.Sample == nil {
		return false, nil
	}
	if !buf.Flags.Has(FlagRepeat) && buf.EndTime > 0 && now >= buf.EndTime {
		return true, nil
	}

	n := (playCursor - buf.Cursor + buf.Length) % buf.Length
	if n == 0 {
		return false, nil
	}

	a, b, err := ring.Lock(buf.Cursor, n)
	if err != nil {
		return false, err
	}
	wasDrained := buf.drained
	fillFromSample(buf, a)
	fillFromSample(buf, b)
	ring.Unlock()

	buf.Cursor = (buf.Cursor + n) % buf.Length

	// A stream that just ran dry still has one ring of audio queued
	if buf.drained && !wasDrained && !buf.Flags.Has(FlagRepeat) {
		buf.EndTime = now + int64(buf.Length)*1000/int64(buf.Bytes*buf.Freq)
	}
	return false, nil
}

// fillFromSample copies the next len(dst) bytes of the sample into dst,
// wrapping repeating samples and padding the rest with silence
func fillFromSample(buf *Buffer, dst []byte) {
	s := buf.Sample
	if len(dst) == 0 || s == nil {
		return
	}

	if s.IsStreaming() {
		n := 0
		if !buf.drained {
			n = s.Stream(dst)
			if n <= 0 {
				buf.drained = true
				n = 0
			}
		}
		buf.Written += n
		audio.FillSilence(dst[n:], buf.Bytes)
		return
	}

	if s.Size == 0 {
		audio.FillSilence(dst, buf.Bytes)
		return
	}
	for len(dst) > 0 {
		if buf.Written >= s.Size {
			if !buf.Flags.Has(FlagRepeat) {
				audio.FillSilence(dst, buf.Bytes)
				return
			}
			buf.Written = 0
		}
		n := copy(dst, s.Data[buf.Written:])
		buf.Written += n
		dst = dst[n:]
	}
}

func predictEnd(buf *Buffer, now int64) int64 {
	s := buf.Sample
	if s.NumSamples == 0 {
		// unknown stream length
		return 0
	}
	return now + s.MillisecondsAt(buf.Freq)
}
