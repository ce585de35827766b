//go:build opus

// ABOUTME: Ogg Opus audio decoder
// ABOUTME: Decodes .opus files through libopusfile via hraban/opus
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/sfxkit/sfxkit/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// maxOpusFrame is 120 ms at 48 kHz, the longest Opus packet
const maxOpusFrame = 5760

// OpusDecoder decodes Ogg Opus audio
type OpusDecoder struct{}

// Decode converts an Ogg Opus stream to PCM samples at 48 kHz
func (OpusDecoder) Decode(r io.Reader) (*audio.Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("opus read error: %w", err)
	}
	channels, err := opusChannels(data)
	if err != nil {
		return nil, err
	}

	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opus decode error: %w", err)
	}
	defer stream.Close()

	pcm := make([]int16, maxOpusFrame*channels)
	var samples []int32
	for {
		n, err := stream.Read(pcm)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("opus decode error: %w", err)
		}
		for _, s := range pcm[:n*channels] {
			samples = append(samples, audio.SampleFromInt16(s))
		}
	}

	return &audio.Buffer{
		Samples: samples,
		Format: audio.Format{
			SampleRate: OpusRate,
			Channels:   channels,
			BitDepth:   16,
		},
	}, nil
}
