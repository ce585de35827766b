// ABOUTME: WAV audio decoder
// ABOUTME: Decodes RIFF/WAVE PCM via go-audio/wav to int32 samples
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/wav"
	"github.com/sfxkit/sfxkit/pkg/audio"
)

// ErrNotWAV is returned for streams without a valid RIFF/WAVE header
var ErrNotWAV = errors.New("not a valid wav file")

// WAVDecoder decodes WAV files
type WAVDecoder struct{}

// Decode converts a WAV stream to PCM samples
func (WAVDecoder) Decode(r io.Reader) (*audio.Buffer, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read wav: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	d := wav.NewDecoder(rs)
	if !d.IsValidFile() {
		return nil, ErrNotWAV
	}

	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav decode error: %w", err)
	}

	bitDepth := int(d.BitDepth)
	samples := make([]int32, len(pcm.Data))
	for i, v := range pcm.Data {
		if bitDepth == 8 {
			// 8-bit WAV is unsigned
			v -= 128
		}
		samples[i] = shiftTo24(int32(v), bitDepth)
	}

	return &audio.Buffer{
		Samples: samples,
		Format: audio.Format{
			SampleRate: int(d.SampleRate),
			Channels:   int(d.NumChans),
			BitDepth:   bitDepth,
		},
	}, nil
}

// shiftTo24 left-justifies a signed sample of the given depth in the 24-bit range
func shiftTo24(v int32, bitDepth int) int32 {
	switch {
	case bitDepth < 24:
		return v << (24 - bitDepth)
	case bitDepth > 24:
		return v >> (bitDepth - 24)
	}
	return v
}
