//go:build !opus

// ABOUTME: Tests .opus assets in builds without libopusfile
// ABOUTME: The library routes them to the Opus decoder, which reports it is missing
package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sfxkit/sfxkit/pkg/audio/decode"
)

func TestLoadOpusWithoutSupport(t *testing.T) {
	dir := t.TempDir()
	doc := `{"sounds": [{"id": 1, "name": "chime", "file": "chime.opus", "priority": 50}]}`
	if err := os.WriteFile(filepath.Join(dir, "sounds.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "chime.opus"), []byte("OggS"), 0o644); err != nil {
		t.Fatal(err)
	}

	lib, err := Open(filepath.Join(dir, "sounds.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := lib.Load(1); !errors.Is(err, decode.ErrOpusUnavailable) {
		t.Errorf("expected ErrOpusUnavailable, got %v", err)
	}
}
