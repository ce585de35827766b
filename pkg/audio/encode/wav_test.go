// ABOUTME: Tests for WAV export
// ABOUTME: Exports samples to a temp file and reads them back with the WAV decoder
package encode

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sfxkit/sfxkit/pkg/audio"
	"github.com/sfxkit/sfxkit/pkg/audio/decode"
)

func TestWriteWAV(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		bytesPer int
	}{
		{"8-bit", []byte{0x80, 0xff, 0x00, 0x40}, 1},
		{"16-bit", []byte{0x00, 0x00, 0xff, 0x7f, 0x00, 0x80}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := audio.NewSample(1, tt.data, tt.bytesPer, 11025)
			if err != nil {
				t.Fatalf("NewSample: %v", err)
			}

			path := filepath.Join(t.TempDir(), "out.wav")
			f, err := os.Create(path)
			if err != nil {
				t.Fatal(err)
			}
			if err := WriteWAV(f, s); err != nil {
				f.Close()
				t.Fatalf("WriteWAV: %v", err)
			}
			f.Close()

			buf, err := decode.Default().DecodeFile(path)
			if err != nil {
				t.Fatalf("DecodeFile: %v", err)
			}
			if buf.Format.SampleRate != 11025 || buf.Format.Channels != 1 || buf.Format.BitDepth != 16 {
				t.Errorf("unexpected format %+v", buf.Format)
			}
			if len(buf.Samples) != s.NumSamples {
				t.Fatalf("got %d samples, want %d", len(buf.Samples), s.NumSamples)
			}
			for i, v := range buf.Samples {
				if v != s.At(i) {
					t.Errorf("sample %d = %d, want %d", i, v, s.At(i))
				}
			}
		})
	}
}

func TestWriteWAVRejectsStreams(t *testing.T) {
	s, err := audio.NewStreamSample(1, func(dst []byte) int { return 0 }, 1, 11025, 0)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := WriteWAV(f, s); !errors.Is(err, ErrStreaming) {
		t.Errorf("expected ErrStreaming, got %v", err)
	}
}
