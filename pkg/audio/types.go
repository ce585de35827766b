// ABOUTME: Audio type definitions
// ABOUTME: Defines PCM formats, decoded buffers and sample conversions
package audio

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Format describes a PCM stream format
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Buffer represents decoded, interleaved PCM audio
type Buffer struct {
	Samples []int32 // PCM samples, left-justified in the 24-bit range
	Format  Format
}

// Frames returns the number of sample frames (samples per channel)
func (b *Buffer) Frames() int {
	if b.Format.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Format.Channels
}

// Mono returns the buffer downmixed to a single channel
func (b *Buffer) Mono() *Buffer {
	ch := b.Format.Channels
	if ch <= 1 {
		return b
	}

	frames := b.Frames()
	out := make([]int32, frames)
	for i := 0; i < frames; i++ {
		var sum int64
		for c := 0; c < ch; c++ {
			sum += int64(b.Samples[i*ch+c])
		}
		out[i] = int32(sum / int64(ch))
	}

	f := b.Format
	f.Channels = 1
	return &Buffer{Samples: out, Format: f}
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 8
}

// SampleToUint8 converts int32 sample to unsigned 8-bit (0x80 = silence)
func SampleToUint8(sample int32) uint8 {
	return uint8((sample >> 16) + 128)
}

// SampleFromUint8 converts unsigned 8-bit to int32 (left-justified in 24-bit)
func SampleFromUint8(sample uint8) int32 {
	return (int32(sample) - 128) << 16
}

// SampleFromFloat converts a [-1, 1] float to int32 in the 24-bit range
func SampleFromFloat(f float64) int32 {
	v := f * Max24Bit
	if v > Max24Bit {
		return Max24Bit
	}
	if v < Min24Bit {
		return Min24Bit
	}
	return int32(v)
}

// SampleToFloat converts an int32 24-bit sample to [-1, 1]
func SampleToFloat(sample int32) float64 {
	return float64(sample) / (Max24Bit + 1)
}
