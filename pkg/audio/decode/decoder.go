// ABOUTME: Decoder interface and format registry
// ABOUTME: Maps file extensions to decoders that produce PCM buffers
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sfxkit/sfxkit/pkg/audio"
)

var (
	// ErrUnknownFormat is returned when no decoder is registered for a format
	ErrUnknownFormat = errors.New("no decoder registered for format")
	// ErrEmptyStream is returned when a decoder produces no samples
	ErrEmptyStream = errors.New("decoded stream is empty")
)

// Decoder decodes an encoded asset to interleaved PCM
type Decoder interface {
	// Decode reads the whole stream and returns its PCM content
	Decode(r io.Reader) (*audio.Buffer, error)
}

// Registry maps format keys (file extensions without the dot) to decoders
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Decoder
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Decoder)}
}

// Default returns a registry with every built-in decoder registered
func Default() *Registry {
	r := NewRegistry()
	r.Register("wav", WAVDecoder{})
	r.Register("mp3", MP3Decoder{})
	r.Register("flac", FLACDecoder{})
	r.Register("ogg", VorbisDecoder{})
	r.Register("opus", OpusDecoder{})
	r.Register("raw", PCMDecoder{Format: audio.Format{SampleRate: 11025, Channels: 1, BitDepth: 8}})
	r.Register("lmp", PCMDecoder{Format: audio.Format{SampleRate: 11025, Channels: 1, BitDepth: 8}})
	return r
}

// Register adds or replaces the decoder for a format
func (r *Registry) Register(format string, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[strings.ToLower(format)] = d
}

// Get looks up the decoder for a format
func (r *Registry) Get(format string) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.codecs[strings.ToLower(format)]
	return d, ok
}

// Formats returns the registered format keys
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		out = append(out, k)
	}
	return out
}

// Decode decodes r with the decoder registered for format
func (r *Registry) Decode(format string, src io.Reader) (*audio.Buffer, error) {
	d, ok := r.Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	buf, err := d.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	if len(buf.Samples) == 0 {
		return nil, ErrEmptyStream
	}
	return buf, nil
}

// DecodeFile picks a decoder from the file extension and decodes the file
func (r *Registry) DecodeFile(path string) (*audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return r.Decode(ext, f)
}
