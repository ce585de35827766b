// ABOUTME: Ogg Vorbis audio decoder
// ABOUTME: Decodes Vorbis via jfreymuth/oggvorbis to int32 samples
package decode

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
	"github.com/sfxkit/sfxkit/pkg/audio"
)

// VorbisDecoder decodes Ogg Vorbis audio
type VorbisDecoder struct{}

// Decode converts an Ogg Vorbis stream to PCM samples
func (VorbisDecoder) Decode(r io.Reader) (*audio.Buffer, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis decode error: %w", err)
	}

	samples := make([]int32, len(data))
	for i, f := range data {
		samples[i] = audio.SampleFromFloat(float64(f))
	}

	return &audio.Buffer{
		Samples: samples,
		Format: audio.Format{
			SampleRate: format.SampleRate,
			Channels:   format.Channels,
			BitDepth:   16,
		},
	}, nil
}
