// ABOUTME: Sound system configuration with defaults and environment overrides
// ABOUTME: Covers channel count, volume, 3D mode, sample format, distances and cache budget
package sfx

import (
	"os"
	"strconv"
	"time"

	"github.com/sfxkit/sfxkit/pkg/clock"
)

// Config holds sound system settings
type Config struct {
	// Channels is the size of the channel pool
	Channels int

	// Use3D requests positional buffers. Falls back to 2D when the driver
	// cannot create them.
	Use3D bool

	// Volume is the master effects volume, 0-255. 0 silences every start.
	Volume int

	// ReverbStrength scales the volume component of environmental reverb
	ReverbStrength float64

	// OneSoundPerEmitter stops an emitter's current sound before it starts
	// another one of higher priority
	OneSoundPerEmitter bool

	// MinDistance and MaxDistance bound attenuation, in world units
	MinDistance float64
	MaxDistance float64

	// Rate and Bits are the primary output format. Samples below it are
	// converted on cache when the driver needs uniform formats.
	Rate int
	Bits int

	// RefreshInterval is the refresh thread period while refresh is allowed,
	// IdleInterval the wait while it is disallowed
	RefreshInterval time.Duration
	IdleInterval    time.Duration

	// ShutdownTimeout bounds the wait for the refresh thread on Shutdown
	ShutdownTimeout time.Duration

	// CacheBytes is the sample cache budget
	CacheBytes int

	// PurgeInterval and MaxIdle are cache purge settings, in tics
	PurgeInterval int64
	MaxIdle       int64

	Verbose bool
}

// DefaultConfig returns the default sound configuration
func DefaultConfig() Config {
	return Config{
		Channels:        16,
		Use3D:           false,
		Volume:          255,
		ReverbStrength:  0.5,
		MinDistance:     256,
		MaxDistance:     2025,
		Rate:            11025,
		Bits:            8,
		RefreshInterval: 200 * time.Millisecond,
		IdleInterval:    150 * time.Millisecond,
		ShutdownTimeout: 2 * time.Second,
		CacheBytes:      4 << 20,
		PurgeInterval:   2 * clock.TicsPerSecond,
		MaxIdle:         20 * clock.TicsPerSecond,
	}
}

// LoadConfig returns the defaults overridden by SFXKIT_* environment variables
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("SFXKIT_CHANNELS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Channels = n
		}
	}

	// Master volume 0-255
	if v := os.Getenv("SFXKIT_VOLUME"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Volume = clampInt(n, 0, 255)
		}
	}

	if v := os.Getenv("SFXKIT_3D"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Use3D = b
		}
	}

	if v := os.Getenv("SFXKIT_RATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Rate = n
		}
	}

	if v := os.Getenv("SFXKIT_BITS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && (n == 8 || n == 16) {
			cfg.Bits = n
		}
	}

	if v := os.Getenv("SFXKIT_REVERB"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.ReverbStrength = f
		}
	}

	if v := os.Getenv("SFXKIT_ONE_PER_EMITTER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.OneSoundPerEmitter = b
		}
	}

	// Cache budget in KiB
	if v := os.Getenv("SFXKIT_CACHE_KB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheBytes = n << 10
		}
	}

	if v := os.Getenv("SFXKIT_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Verbose = b
		}
	}

	return cfg
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
