// ABOUTME: Inspects a sound manifest and the samples it produces
// ABOUTME: Lists definitions, loads samples through the cache and optionally exports WAV files
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sfxkit/sfxkit/internal/version"
	"github.com/sfxkit/sfxkit/pkg/assets"
	"github.com/sfxkit/sfxkit/pkg/audio"
	"github.com/sfxkit/sfxkit/pkg/audio/encode"
	"github.com/sfxkit/sfxkit/pkg/audio/resample"
	"github.com/sfxkit/sfxkit/pkg/cache"
	"github.com/sfxkit/sfxkit/pkg/clock"
	"github.com/sfxkit/sfxkit/pkg/discovery"
)

var (
	manifest = flag.String("manifest", "", "Sound manifest (default: built-in tones)")
	load     = flag.Bool("load", false, "Load every sound through the cache and report sizes")
	rate     = flag.Int("rate", 0, "Upsample loaded sounds to this rate, as a fixed-format driver would")
	bits     = flag.Int("bits", 8, "Sample width used with -rate")
	export   = flag.String("export", "", "Write every loaded sound as WAV into this directory")
	asJSON   = flag.Bool("json", false, "Print JSON instead of tables")
	monitors = flag.Bool("discover", false, "List sound monitors on the local network and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	if *monitors {
		discover()
		return
	}

	lib, err := openLibrary()
	if err != nil {
		log.Fatalf("Failed to open library: %v", err)
	}

	if !*load && *export == "" {
		listDefinitions(lib)
		return
	}

	cfg := cache.Config{MaxBytes: 1 << 30}
	if *rate > 0 {
		r, b := *rate, *bits
		cfg.Transform = func(s *audio.Sample) (*audio.Sample, error) {
			return resample.Convert(s, r, b)
		}
	}
	c := cache.New(cfg, lib, clock.NewSystem())

	for _, id := range lib.IDs() {
		s, err := c.Cache(id)
		if err != nil {
			log.Printf("sound %d: %v", id, err)
			continue
		}
		if *export != "" {
			if err := exportWAV(lib, s); err != nil {
				log.Printf("sound %d: %v", id, err)
			}
		}
	}

	listEntries(lib, c)
}

func openLibrary() (*assets.Library, error) {
	if *manifest == "" {
		return assets.Builtin(), nil
	}
	return assets.Open(*manifest)
}

// listDefinitions prints the manifest
func listDefinitions(lib *assets.Library) {
	var entries []assets.Entry
	for _, id := range lib.IDs() {
		e, _ := lib.Entry(id)
		entries = append(entries, e)
	}

	if *asJSON {
		printJSON(entries)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSOURCE\tPRIO\tCAP\tGROUP\tFLAGS")
	for _, e := range entries {
		source := e.File
		if e.Tone != nil {
			source = fmt.Sprintf("tone %.0fHz", e.Tone.Frequency)
			if e.Stream {
				source += " (stream)"
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%s\n",
			e.ID, e.Name, source, e.Priority, e.Channels, e.Group, strings.Join(e.Flags, ","))
	}
	w.Flush()
}

// listEntries prints what the cache holds after loading
func listEntries(lib *assets.Library, c *cache.Cache) {
	entries := c.Entries()
	total, count := c.Info()

	if *asJSON {
		printJSON(struct {
			Entries    []cache.Entry `json:"entries"`
			TotalBytes int           `json:"total_bytes"`
			Count      int           `json:"count"`
			Stats      cache.Stats   `json:"stats"`
		}{entries, total, count, c.Stats()})
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tBYTES\tRATE\tBITS\tLENGTH")
	for _, e := range entries {
		name := ""
		if def, ok := lib.Definition(e.ID); ok {
			name = def.Name
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%s\n",
			e.ID, name, e.Bytes, e.Rate, e.Bits, time.Duration(e.Millis)*time.Millisecond)
	}
	w.Flush()
	fmt.Printf("\n%d samples, %d bytes\n", count, total)
}

// exportWAV writes s next to the other exports, named after the sound
func exportWAV(lib *assets.Library, s *audio.Sample) error {
	if err := os.MkdirAll(*export, 0755); err != nil {
		return err
	}

	name := fmt.Sprintf("%03d", s.ID)
	if def, ok := lib.Definition(s.ID); ok && def.Name != "" {
		name += "-" + def.Name
	}

	f, err := os.Create(filepath.Join(*export, name+".wav"))
	if err != nil {
		return err
	}
	defer f.Close()
	return encode.WriteWAV(f, s)
}

func discover() {
	log.Printf("%s: browsing for sound monitors...", version.String())
	found, err := discovery.Discover(3 * time.Second)
	if err != nil {
		log.Fatalf("Discovery failed: %v", err)
	}
	if len(found) == 0 {
		log.Printf("No monitors found")
		return
	}

	if *asJSON {
		printJSON(found)
		return
	}
	for _, m := range found {
		fmt.Printf("%s\t%s%s\t%s\n", m.Name, m.Addr(), m.Path, m.TXT["driver"])
	}
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatalf("Failed to encode JSON: %v", err)
	}
}
