// ABOUTME: Tests for PCM decoder
// ABOUTME: Tests 8-bit and 16-bit raw PCM decoding
package decode

import (
	"bytes"
	"testing"

	"github.com/sfxkit/sfxkit/pkg/audio"
)

func TestNewPCM(t *testing.T) {
	tests := []struct {
		name    string
		format  audio.Format
		wantErr bool
	}{
		{"16-bit stereo", audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 16}, false},
		{"8-bit mono", audio.Format{SampleRate: 11025, Channels: 1, BitDepth: 8}, false},
		{"24-bit", audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 24}, true},
		{"zero rate", audio.Format{SampleRate: 0, Channels: 1, BitDepth: 8}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPCM(tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPCMDecode16Bit(t *testing.T) {
	decoder, err := NewPCM(audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 16})
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	// 0x00, 0x01 -> 0x0100 = 256 (16-bit) -> 256<<8 (24-bit)
	// 0x02, 0x03 -> 0x0302 = 770 (16-bit) -> 770<<8 (24-bit)
	input := []byte{0x00, 0x01, 0x02, 0x03}
	buf, err := decoder.Decode(bytes.NewReader(input))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(buf.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(buf.Samples))
	}
	if buf.Samples[0] != 256<<8 {
		t.Errorf("expected first sample %d, got %d", 256<<8, buf.Samples[0])
	}
	if buf.Samples[1] != 770<<8 {
		t.Errorf("expected second sample %d, got %d", 770<<8, buf.Samples[1])
	}
}

func TestPCMDecode8Bit(t *testing.T) {
	decoder, _ := NewPCM(audio.Format{SampleRate: 11025, Channels: 1, BitDepth: 8})

	buf, err := decoder.Decode(bytes.NewReader([]byte{0x80, 0x00, 0xff}))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	want := []int32{0, -128 << 16, 127 << 16}
	for i, v := range want {
		if buf.Samples[i] != v {
			t.Errorf("sample %d: expected %d, got %d", i, v, buf.Samples[i])
		}
	}
}
