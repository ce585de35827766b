// ABOUTME: Tests for the decoder registry
// ABOUTME: Tests lookup, unknown formats and file decoding
package decode

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	reg := Default()
	for _, f := range []string{"wav", "mp3", "flac", "ogg", "opus", "raw", "WAV"} {
		if _, ok := reg.Get(f); !ok {
			t.Errorf("expected decoder for %q", f)
		}
	}
}

func TestRegistryUnknownFormat(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Decode("xm", bytes.NewReader(nil))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestRegistryEmptyStream(t *testing.T) {
	reg := Default()
	_, err := reg.Decode("raw", bytes.NewReader(nil))
	if !errors.Is(err, ErrEmptyStream) {
		t.Errorf("expected ErrEmptyStream, got %v", err)
	}
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blip.wav")
	if err := os.WriteFile(path, makeWAV(11025, 1, []int16{10, 20, 30}), 0o644); err != nil {
		t.Fatal(err)
	}

	buf, err := Default().DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if len(buf.Samples) != 3 {
		t.Errorf("expected 3 samples, got %d", len(buf.Samples))
	}
}

func TestCompressedDecodersRejectGarbage(t *testing.T) {
	tests := []struct {
		name string
		dec  Decoder
	}{
		{"mp3", MP3Decoder{}},
		{"flac", FLACDecoder{}},
		{"vorbis", VorbisDecoder{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.dec.Decode(bytes.NewReader(nil)); err == nil {
				t.Error("expected error for empty input")
			}
		})
	}
}
