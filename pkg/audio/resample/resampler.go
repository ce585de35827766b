// ABOUTME: Sample rate and width conversion for cached sound samples
// ABOUTME: Wraps beep.Resample so samples can be brought to one driver rate
package resample

import (
	"fmt"

	"github.com/gopxl/beep"
	"github.com/sfxkit/sfxkit/pkg/audio"
	"github.com/sfxkit/sfxkit/pkg/audio/encode"
)

// Quality is the beep resampling quality (1..64). 4 is beep's recommended
// default for real-time use.
const Quality = 4

// sliceStreamer feeds mono int32 PCM into beep as a stereo pair
type sliceStreamer struct {
	samples []int32
	pos     int
}

func (s *sliceStreamer) Stream(buf [][2]float64) (int, bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n := 0
	for n < len(buf) && s.pos < len(s.samples) {
		v := audio.SampleToFloat(s.samples[s.pos])
		buf[n][0], buf[n][1] = v, v
		n++
		s.pos++
	}
	return n, true
}

func (s *sliceStreamer) Err() error { return nil }

// Resample converts mono int32 samples from one rate to another
func Resample(samples []int32, from, to int) ([]int32, error) {
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("invalid sample rates %d -> %d", from, to)
	}
	if from == to || len(samples) == 0 {
		out := make([]int32, len(samples))
		copy(out, samples)
		return out, nil
	}

	r := beep.Resample(Quality, beep.SampleRate(from), beep.SampleRate(to), &sliceStreamer{samples: samples})

	expected := int(int64(len(samples)) * int64(to) / int64(from))
	out := make([]int32, 0, expected+Quality)
	buf := make([][2]float64, 512)
	for {
		n, ok := r.Stream(buf)
		for i := 0; i < n; i++ {
			out = append(out, audio.SampleFromFloat(buf[i][0]))
		}
		if !ok {
			break
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}
	if len(out) > expected {
		out = out[:expected]
	}
	return out, nil
}

// Convert returns a copy of s upsampled to rate and widened to bits. Samples
// already at or above the target rate keep their rate. Streaming samples are
// returned unchanged since their data is produced on demand.
func Convert(s *audio.Sample, rate, bits int) (*audio.Sample, error) {
	if s.IsStreaming() {
		return s, nil
	}
	if s.Rate >= rate && s.Bits() >= bits {
		return s, nil
	}

	pcm := make([]int32, s.NumSamples)
	for i := range pcm {
		pcm[i] = s.At(i)
	}

	outRate := s.Rate
	if s.Rate < rate {
		var err error
		pcm, err = Resample(pcm, s.Rate, rate)
		if err != nil {
			return nil, err
		}
		outRate = rate
	}

	outBits := s.Bits()
	if bits > outBits {
		outBits = bits
	}

	buf := &audio.Buffer{
		Samples: pcm,
		Format:  audio.Format{SampleRate: outRate, Channels: 1, BitDepth: outBits},
	}
	out, err := encode.ToSample(s.ID, buf, outBits)
	if err != nil {
		return nil, fmt.Errorf("convert sample %d: %w", s.ID, err)
	}
	out.Group = s.Group
	return out, nil
}
