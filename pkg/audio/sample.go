// ABOUTME: Sample is one decoded sound effect waveform as stored in the cache
// ABOUTME: Either flat mono PCM bytes or a stream callback that refills on demand
package audio

import (
	"encoding/binary"
	"errors"
)

var (
	// ErrBadSampleWidth is returned for widths other than 8 or 16 bits
	ErrBadSampleWidth = errors.New("sample width must be 1 or 2 bytes")
	// ErrEmptySample is returned for samples with neither data nor a stream
	ErrEmptySample = errors.New("sample has no data")
)

// StreamFunc refills dst with the next chunk of a streaming sample and returns
// the number of bytes written. Returning 0 means the stream has ended. It is
// called from driver refresh and must not block.
type StreamFunc func(dst []byte) int

// Sample is mono PCM data. 8-bit samples are unsigned, 16-bit are signed LE.
type Sample struct {
	ID         int        // sound identifier
	Data       []byte     // raw sample bytes, nil when streaming
	Stream     StreamFunc // refill callback for streaming samples
	Size       int        // length of Data in bytes
	NumSamples int        // sample frames
	BytesPer   int        // 1 or 2
	Rate       int        // native rate in Hz
	Group      int        // exclusion group, 0 = none
}

// NewSample wraps PCM bytes in a Sample
func NewSample(id int, data []byte, bytesPer, rate int) (*Sample, error) {
	if bytesPer != 1 && bytesPer != 2 {
		return nil, ErrBadSampleWidth
	}
	if len(data) == 0 {
		return nil, ErrEmptySample
	}
	return &Sample{
		ID:         id,
		Data:       data,
		Size:       len(data),
		NumSamples: len(data) / bytesPer,
		BytesPer:   bytesPer,
		Rate:       rate,
	}, nil
}

// NewStreamSample creates a streaming Sample. numSamples may be 0 when the
// stream length is unknown.
func NewStreamSample(id int, fn StreamFunc, bytesPer, rate, numSamples int) (*Sample, error) {
	if bytesPer != 1 && bytesPer != 2 {
		return nil, ErrBadSampleWidth
	}
	if fn == nil {
		return nil, ErrEmptySample
	}
	return &Sample{
		ID:         id,
		Stream:     fn,
		Size:       numSamples * bytesPer,
		NumSamples: numSamples,
		BytesPer:   bytesPer,
		Rate:       rate,
	}, nil
}

// IsStreaming reports whether the sample is supplied by a callback
func (s *Sample) IsStreaming() bool {
	return s.Stream != nil
}

// HasData reports whether the sample can be played at all
func (s *Sample) HasData() bool {
	return s != nil && (len(s.Data) > 0 || s.Stream != nil)
}

// Bits returns the sample width in bits
func (s *Sample) Bits() int {
	return s.BytesPer * 8
}

// Milliseconds returns the duration at the native rate
func (s *Sample) Milliseconds() int64 {
	return s.MillisecondsAt(s.Rate)
}

// MillisecondsAt returns the duration when played at freq Hz
func (s *Sample) MillisecondsAt(freq int) int64 {
	if freq <= 0 {
		return 0
	}
	return 1000 * int64(s.NumSamples) / int64(freq)
}

// Silence returns the byte value of silence for a sample width
func Silence(bytesPer int) byte {
	if bytesPer == 1 {
		return 0x80
	}
	return 0
}

// FillSilence writes silence of the given width into dst
func FillSilence(dst []byte, bytesPer int) {
	v := Silence(bytesPer)
	for i := range dst {
		dst[i] = v
	}
}

// At returns sample frame i as int32 in the 24-bit range
func (s *Sample) At(i int) int32 {
	if s.BytesPer == 1 {
		return SampleFromUint8(s.Data[i])
	}
	return SampleFromInt16(int16(binary.LittleEndian.Uint16(s.Data[i*2:])))
}
