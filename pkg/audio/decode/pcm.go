// ABOUTME: Raw PCM audio decoder
// ABOUTME: Decodes headerless 8-bit unsigned or 16-bit signed PCM to int32 samples
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sfxkit/sfxkit/pkg/audio"
)

// PCMDecoder decodes headerless PCM of a fixed format
type PCMDecoder struct {
	Format audio.Format
}

// NewPCM creates a new PCM decoder
func NewPCM(format audio.Format) (*PCMDecoder, error) {
	if format.BitDepth != 8 && format.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 8, 16)", format.BitDepth)
	}
	if format.SampleRate <= 0 || format.Channels <= 0 {
		return nil, fmt.Errorf("invalid pcm format: %d Hz, %d channels", format.SampleRate, format.Channels)
	}
	return &PCMDecoder{Format: format}, nil
}

// Decode converts PCM bytes to int32 samples
func (d PCMDecoder) Decode(r io.Reader) (*audio.Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read pcm: %w", err)
	}
	return &audio.Buffer{Samples: d.Samples(data), Format: d.Format}, nil
}

// Samples converts PCM bytes already in memory
func (d PCMDecoder) Samples(data []byte) []int32 {
	if d.Format.BitDepth == 8 {
		samples := make([]int32, len(data))
		for i, b := range data {
			samples[i] = audio.SampleFromUint8(b)
		}
		return samples
	}

	numSamples := len(data) / 2
	samples := make([]int32, numSamples)
	for i := 0; i < numSamples; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = audio.SampleFromInt16(sample16)
	}
	return samples
}
