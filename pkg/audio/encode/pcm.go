// ABOUTME: PCM sample encoder
// ABOUTME: Encodes int32 samples to 8-bit unsigned or 16-bit signed PCM bytes
package encode

import (
	"encoding/binary"
	"fmt"

	"github.com/sfxkit/sfxkit/pkg/audio"
)

// PCMEncoder encodes PCM audio
type PCMEncoder struct {
	bitDepth int
}

// NewPCM creates a new PCM encoder
func NewPCM(bitDepth int) (Encoder, error) {
	if bitDepth != 8 && bitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 8, 16)", bitDepth)
	}

	return &PCMEncoder{
		bitDepth: bitDepth,
	}, nil
}

// Encode converts int32 samples to PCM bytes
func (e *PCMEncoder) Encode(samples []int32) ([]byte, error) {
	if e.bitDepth == 8 {
		output := make([]byte, len(samples))
		for i, sample := range samples {
			output[i] = audio.SampleToUint8(sample)
		}
		return output, nil
	}

	output := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(output[i*2:], uint16(audio.SampleToInt16(sample)))
	}
	return output, nil
}

// Close releases resources
func (e *PCMEncoder) Close() error {
	return nil
}

// ToSample downmixes a decoded buffer to mono and encodes it as a Sample of
// the given width in bits
func ToSample(id int, buf *audio.Buffer, bitDepth int) (*audio.Sample, error) {
	enc, err := NewPCM(bitDepth)
	if err != nil {
		return nil, err
	}
	defer enc.Close()

	mono := buf.Mono()
	data, err := enc.Encode(mono.Samples)
	if err != nil {
		return nil, fmt.Errorf("encode sample %d: %w", id, err)
	}
	return audio.NewSample(id, data, bitDepth/8, mono.Format.SampleRate)
}
