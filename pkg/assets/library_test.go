// ABOUTME: Tests for the manifest sound library
// ABOUTME: Covers parsing, definitions, file, URL and tone loading
package assets

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sfxkit/sfxkit/pkg/sfx"
)

const manifest = `{
  "sounds": [
    {"id": 1, "name": "Pistol", "file": "pistol.lmp", "priority": 64, "channels": 2, "flags": ["random-shift"]},
    {"id": 2, "name": "hum", "tone": {"freq": 220, "seconds": 0.5, "rate": 8000}, "priority": 10, "group": 4},
    {"id": 3, "name": "engine", "tone": {"freq": 110, "seconds": 0.1, "bits": 16}, "stream": true, "priority": 30}
  ]
}`

func writeLibrary(t *testing.T) *Library {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sounds.json"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	pcm := bytes.Repeat([]byte{0x80, 0xc0, 0x80, 0x40}, 2756) // 11024 bytes
	if err := os.WriteFile(filepath.Join(dir, "pistol.lmp"), pcm, 0o644); err != nil {
		t.Fatal(err)
	}

	lib, err := Open(filepath.Join(dir, "sounds.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return lib
}

func TestDefinitions(t *testing.T) {
	lib := writeLibrary(t)

	def, ok := lib.Definition(1)
	if !ok {
		t.Fatal("sound 1 missing")
	}
	want := sfx.Definition{ID: 1, Name: "Pistol", Priority: 64, Channels: 2, Flags: sfx.RandomShift}
	if def != want {
		t.Errorf("got %+v, want %+v", def, want)
	}
	if _, ok := lib.Definition(9); ok {
		t.Error("unknown id should not resolve")
	}
	if id, ok := lib.Lookup("PISTOL"); !ok || id != 1 {
		t.Errorf("Lookup = %d, %v", id, ok)
	}
	if ids := lib.IDs(); len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Errorf("IDs = %v", ids)
	}
}

func TestLoadFile(t *testing.T) {
	lib := writeLibrary(t)

	s, err := lib.Load(1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.ID != 1 || s.BytesPer != 1 || s.Rate != 11025 || s.Size != 11024 {
		t.Errorf("unexpected sample %+v", s)
	}
	if s.Data[1] != 0xc0 || s.Data[3] != 0x40 {
		t.Errorf("8-bit data not preserved: % x", s.Data[:4])
	}
}

func TestLoadTone(t *testing.T) {
	lib := writeLibrary(t)

	s, err := lib.Load(2)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Milliseconds() != 500 || s.BytesPer != 1 || s.Group != 4 {
		t.Errorf("unexpected tone sample: %dms, %d bytes, group %d", s.Milliseconds(), s.BytesPer, s.Group)
	}
	if s.IsStreaming() {
		t.Error("rendered tone should not stream")
	}
}

func TestLoadStreamingTone(t *testing.T) {
	lib := writeLibrary(t)

	s, err := lib.Load(3)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !s.IsStreaming() || s.BytesPer != 2 || s.NumSamples != 1102 {
		t.Fatalf("unexpected stream sample %+v", s)
	}

	dst := make([]byte, 4096)
	total := 0
	for {
		n := s.Stream(dst)
		if n == 0 {
			break
		}
		total += n
	}
	if total != 1102*2 {
		t.Errorf("streamed %d bytes, want %d", total, 1102*2)
	}
	if n := s.Stream(dst); n == 0 {
		t.Error("stream should rewind after reporting its end")
	}
}

func TestLoadURL(t *testing.T) {
	pcm := bytes.Repeat([]byte{0x90}, 512)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/door.raw" {
			http.NotFound(w, r)
			return
		}
		w.Write(pcm)
	}))
	defer srv.Close()

	m := Manifest{Sounds: []Entry{
		{ID: 1, Name: "door", File: srv.URL + "/door.raw"},
		{ID: 2, Name: "gone", File: srv.URL + "/gone.raw"},
	}}
	lib, err := New(m, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s, err := lib.Load(1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Size != 512 {
		t.Errorf("expected 512 bytes, got %d", s.Size)
	}
	if _, err := lib.Load(2); err == nil {
		t.Error("missing URL should fail")
	}
}

func TestLoadErrors(t *testing.T) {
	lib := writeLibrary(t)
	if _, err := lib.Load(42); !errors.Is(err, ErrUnknownSound) {
		t.Errorf("expected ErrUnknownSound, got %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"bad json", `{"sounds": [`},
		{"zero id", `{"sounds": [{"id": 0, "tone": {}}]}`},
		{"duplicate", `{"sounds": [{"id": 1, "tone": {}}, {"id": 1, "tone": {}}]}`},
		{"no source", `{"sounds": [{"id": 1}]}`},
		{"bad bits", `{"sounds": [{"id": 1, "tone": {}, "bits": 24}]}`},
		{"bad flag", `{"sounds": [{"id": 1, "tone": {}, "flags": ["loud"]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.json), ""); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestToneShapes(t *testing.T) {
	src, err := NewToneSource(Tone{Frequency: 100, Seconds: 0.01, Rate: 8000, Shape: "square", Volume: 1})
	if err != nil {
		t.Fatalf("NewToneSource: %v", err)
	}
	samples := make([]int32, 100)
	if n := src.Read(samples); n != 80 {
		t.Fatalf("read %d samples, want 80", n)
	}
	for i, v := range samples[:80] {
		if v != 8388607 && v != -8388607 {
			t.Fatalf("sample %d = %d is not a square wave level", i, v)
		}
	}

	if _, err := NewToneSource(Tone{Shape: "saw"}); err == nil {
		t.Error("unknown shape should fail")
	}
}

func TestBuiltinLibrary(t *testing.T) {
	lib := Builtin()

	ids := lib.IDs()
	if len(ids) != 6 {
		t.Fatalf("expected 6 builtin sounds, got %d", len(ids))
	}
	for _, id := range ids {
		s, err := lib.Load(id)
		if err != nil {
			t.Fatalf("Load(%d): %v", id, err)
		}
		if s.ID != id {
			t.Errorf("sample id %d, want %d", s.ID, id)
		}
	}

	def, ok := lib.Definition(2)
	if !ok || def.Channels != 2 || !def.Flags.Has(sfx.RandomShift) {
		t.Errorf("unexpected shot definition %+v", def)
	}
	if id, ok := lib.Lookup("DOOR-OPEN"); !ok || id != 3 {
		t.Errorf("Lookup = %d, %v", id, ok)
	}
}
