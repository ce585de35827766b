// ABOUTME: Generated tones for placeholder and streaming sounds
// ABOUTME: Sine and square waves rendered to PCM or streamed on demand
package assets

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/sfxkit/sfxkit/pkg/audio"
)

// Tone describes a generated sound
type Tone struct {
	Frequency float64 `json:"freq"`
	Seconds   float64 `json:"seconds"` // 0 streams forever
	Rate      int     `json:"rate"`
	Bits      int     `json:"bits"`
	Volume    float64 `json:"volume"`
	Shape     string  `json:"shape"` // sine or square
}

func (t Tone) withDefaults() Tone {
	if t.Frequency <= 0 {
		t.Frequency = 440
	}
	if t.Rate <= 0 {
		t.Rate = 11025
	}
	if t.Bits == 0 {
		t.Bits = 8
	}
	if t.Volume <= 0 {
		t.Volume = 0.5
	}
	if t.Shape == "" {
		t.Shape = "sine"
	}
	return t
}

func (t Tone) validate() error {
	if t.Bits != 8 && t.Bits != 16 {
		return fmt.Errorf("tone: unsupported bit depth %d", t.Bits)
	}
	if t.Shape != "sine" && t.Shape != "square" {
		return fmt.Errorf("tone: unknown shape %q", t.Shape)
	}
	return nil
}

// ToneSource generates a tone one sample at a time
type ToneSource struct {
	mu    sync.Mutex
	tone  Tone
	index uint64
	limit uint64 // 0 = endless
}

// NewToneSource creates a generator for t
func NewToneSource(t Tone) (*ToneSource, error) {
	t = t.withDefaults()
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &ToneSource{
		tone:  t,
		limit: uint64(t.Seconds * float64(t.Rate)),
	}, nil
}

// Frames returns the tone length in samples, 0 when endless
func (s *ToneSource) Frames() int {
	return int(s.limit)
}

func (s *ToneSource) at(i uint64) int32 {
	t := float64(i) / float64(s.tone.Rate)
	v := math.Sin(2 * math.Pi * s.tone.Frequency * t)
	if s.tone.Shape == "square" {
		if v >= 0 {
			v = 1
		} else {
			v = -1
		}
	}
	return audio.SampleFromFloat(v * s.tone.Volume)
}

// Read fills samples with 24-bit values and returns how many were written
func (s *ToneSource) Read(samples []int32) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(samples)
	if s.limit > 0 && s.index+uint64(n) > s.limit {
		n = int(s.limit - s.index)
	}
	for i := 0; i < n; i++ {
		samples[i] = s.at(s.index + uint64(i))
	}
	s.index += uint64(n)
	return n
}

// Stream writes PCM bytes of the tone's width into dst. At the end of a
// limited tone it returns 0 once and rewinds, so a replay starts over.
func (s *ToneSource) Stream(dst []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	bytesPer := s.tone.Bits / 8
	n := len(dst) / bytesPer
	if s.limit > 0 {
		if s.index >= s.limit {
			s.index = 0
			return 0
		}
		if s.index+uint64(n) > s.limit {
			n = int(s.limit - s.index)
		}
	}

	for i := 0; i < n; i++ {
		v := s.at(s.index + uint64(i))
		if bytesPer == 1 {
			dst[i] = audio.SampleToUint8(v)
		} else {
			binary.LittleEndian.PutUint16(dst[i*2:], uint16(audio.SampleToInt16(v)))
		}
	}
	s.index += uint64(n)
	return n * bytesPer
}

// Render produces the whole tone as a buffer. Endless tones render one second.
func (t Tone) Render() (*audio.Buffer, error) {
	src, err := NewToneSource(t)
	if err != nil {
		return nil, err
	}
	frames := src.Frames()
	if frames == 0 {
		frames = src.tone.Rate
	}
	samples := make([]int32, frames)
	src.Read(samples)
	return &audio.Buffer{
		Samples: samples,
		Format:  audio.Format{SampleRate: src.tone.Rate, Channels: 1, BitDepth: src.tone.Bits},
	}, nil
}
