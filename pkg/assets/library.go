// ABOUTME: Sound library loaded from a JSON manifest
// ABOUTME: Supplies sound definitions and decodes or generates samples on demand
package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sfxkit/sfxkit/pkg/audio"
	"github.com/sfxkit/sfxkit/pkg/audio/decode"
	"github.com/sfxkit/sfxkit/pkg/audio/encode"
	"github.com/sfxkit/sfxkit/pkg/sfx"
)

var (
	// ErrUnknownSound is returned for ids missing from the manifest
	ErrUnknownSound = errors.New("sound not in manifest")
	// ErrNoSource is returned for entries with neither a file nor a tone
	ErrNoSource = errors.New("sound has no file or tone")
)

// Entry is one sound in the manifest
type Entry struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	File     string   `json:"file,omitempty"`   // path relative to the manifest, or an http(s) URL
	Format   string   `json:"format,omitempty"` // decoder key, defaults to the file extension
	Tone     *Tone    `json:"tone,omitempty"`
	Stream   bool     `json:"stream,omitempty"` // stream the tone instead of rendering it
	Bits     int      `json:"bits,omitempty"`   // stored width, 8 or 16; defaults from the source
	Priority int      `json:"priority"`
	Channels int      `json:"channels,omitempty"`
	Group    int      `json:"group,omitempty"`
	Flags    []string `json:"flags,omitempty"`

	flags sfx.StartFlags
}

// Manifest is the on-disk library description
type Manifest struct {
	Sounds []Entry `json:"sounds"`
}

// Library resolves sound ids to definitions and samples
type Library struct {
	dir      string
	entries  map[int]*Entry
	byName   map[string]int
	decoders *decode.Registry
	client   *http.Client
}

// Open reads a manifest file. Relative sound paths resolve against its directory.
func Open(manifestPath string) (*Library, error) {
	f, err := os.Open(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()
	return Parse(f, filepath.Dir(manifestPath))
}

// Parse reads a manifest from r
func Parse(r io.Reader, dir string) (*Library, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return New(m, dir)
}

// New builds a library from a manifest value
func New(m Manifest, dir string) (*Library, error) {
	l := &Library{
		dir:      dir,
		entries:  make(map[int]*Entry, len(m.Sounds)),
		byName:   make(map[string]int, len(m.Sounds)),
		decoders: decode.Default(),
		client:   &http.Client{Timeout: 30 * time.Second},
	}

	for i := range m.Sounds {
		e := m.Sounds[i]
		if e.ID <= 0 {
			return nil, fmt.Errorf("sound %q: id must be positive", e.Name)
		}
		if _, dup := l.entries[e.ID]; dup {
			return nil, fmt.Errorf("sound %d: duplicate id", e.ID)
		}
		if e.File == "" && e.Tone == nil {
			return nil, fmt.Errorf("sound %d: %w", e.ID, ErrNoSource)
		}
		if e.Bits != 0 && e.Bits != 8 && e.Bits != 16 {
			return nil, fmt.Errorf("sound %d: unsupported bit depth %d", e.ID, e.Bits)
		}
		flags, err := sfx.ParseFlags(e.Flags)
		if err != nil {
			return nil, fmt.Errorf("sound %d: %w", e.ID, err)
		}
		e.flags = flags

		l.entries[e.ID] = &e
		if e.Name != "" {
			l.byName[strings.ToLower(e.Name)] = e.ID
		}
	}
	return l, nil
}

// Decoders returns the decoder registry so callers can add formats
func (l *Library) Decoders() *decode.Registry {
	return l.decoders
}

// Definition implements sfx.Definitions
func (l *Library) Definition(id int) (sfx.Definition, bool) {
	e, ok := l.entries[id]
	if !ok {
		return sfx.Definition{}, false
	}
	return sfx.Definition{
		ID:       e.ID,
		Name:     e.Name,
		Priority: e.Priority,
		Channels: e.Channels,
		Group:    e.Group,
		Flags:    e.flags,
	}, true
}

// Lookup finds a sound id by name, case-insensitively
func (l *Library) Lookup(name string) (int, bool) {
	id, ok := l.byName[strings.ToLower(name)]
	return id, ok
}

// IDs returns every sound id in ascending order
func (l *Library) IDs() []int {
	ids := make([]int, 0, len(l.entries))
	for id := range l.entries {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Entry returns a copy of the manifest entry for id
func (l *Library) Entry(id int) (Entry, bool) {
	e, ok := l.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Load implements cache.Loader: it decodes or generates the sample for id
func (l *Library) Load(id int) (*audio.Sample, error) {
	e, ok := l.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSound, id)
	}

	var s *audio.Sample
	var err error
	switch {
	case e.Tone != nil && e.Stream:
		s, err = l.streamTone(e)
	case e.Tone != nil:
		s, err = l.renderTone(e)
	default:
		s, err = l.decodeFile(e)
	}
	if err != nil {
		return nil, err
	}
	s.Group = e.Group
	return s, nil
}

func (l *Library) streamTone(e *Entry) (*audio.Sample, error) {
	t := *e.Tone
	if e.Bits != 0 {
		t.Bits = e.Bits
	}
	src, err := NewToneSource(t)
	if err != nil {
		return nil, fmt.Errorf("sound %d: %w", e.ID, err)
	}
	t = src.tone
	return audio.NewStreamSample(e.ID, src.Stream, t.Bits/8, t.Rate, src.Frames())
}

func (l *Library) renderTone(e *Entry) (*audio.Sample, error) {
	buf, err := e.Tone.Render()
	if err != nil {
		return nil, fmt.Errorf("sound %d: %w", e.ID, err)
	}
	return encode.ToSample(e.ID, buf, l.bits(e, buf))
}

func (l *Library) decodeFile(e *Entry) (*audio.Sample, error) {
	format := e.Format
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(path.Ext(e.File)), ".")
	}

	rc, err := l.open(e.File)
	if err != nil {
		return nil, fmt.Errorf("sound %d: %w", e.ID, err)
	}
	defer rc.Close()

	buf, err := l.decoders.Decode(format, rc)
	if err != nil {
		return nil, fmt.Errorf("sound %d (%s): %w", e.ID, e.File, err)
	}
	s, err := encode.ToSample(e.ID, buf, l.bits(e, buf))
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded sound %d %q: %d Hz, %d-bit, %dms", e.ID, e.Name, s.Rate, s.Bits(), s.Milliseconds())
	return s, nil
}

// open returns the file or the HTTP response body behind name
func (l *Library) open(name string) (io.ReadCloser, error) {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		resp, err := l.client.Get(name)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", name, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to fetch %s: %s", name, resp.Status)
		}
		return resp.Body, nil
	}

	p := name
	if !filepath.IsAbs(p) {
		p = filepath.Join(l.dir, p)
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", p, err)
	}
	return f, nil
}

// bits picks the stored width: the entry's, else 8 for 8-bit sources and 16
// for anything wider
func (l *Library) bits(e *Entry, buf *audio.Buffer) int {
	if e.Bits != 0 {
		return e.Bits
	}
	if buf.Format.BitDepth > 0 && buf.Format.BitDepth <= 8 {
		return 8
	}
	return 16
}
