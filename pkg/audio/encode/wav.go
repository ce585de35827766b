// ABOUTME: WAV file export of cached samples
// ABOUTME: Writes mono 16-bit RIFF/WAVE via go-audio/wav
package encode

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/sfxkit/sfxkit/pkg/audio"
)

// ErrStreaming is returned when exporting a sample that has no stored data
var ErrStreaming = errors.New("streaming samples cannot be exported")

// WriteWAV writes s as a mono 16-bit WAV file at its native rate
func WriteWAV(w io.WriteSeeker, s *audio.Sample) error {
	if s.IsStreaming() {
		return ErrStreaming
	}
	if !s.HasData() {
		return audio.ErrEmptySample
	}

	data := make([]int, s.NumSamples)
	for i := range data {
		data[i] = int(audio.SampleToInt16(s.At(i)))
	}

	enc := wav.NewEncoder(w, s.Rate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: s.Rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wav encode error: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav finalize error: %w", err)
	}
	return nil
}
