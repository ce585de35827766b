//go:build !opus

// ABOUTME: Opus decoder stub when libopusfile is not available
// ABOUTME: Build with -tags opus to decode .opus assets
package decode

import (
	"fmt"
	"io"

	"github.com/sfxkit/sfxkit/pkg/audio"
)

// OpusDecoder decodes Ogg Opus audio (stub)
type OpusDecoder struct{}

// Decode reports that Opus support is missing
func (OpusDecoder) Decode(r io.Reader) (*audio.Buffer, error) {
	return nil, fmt.Errorf("%w: rebuild with -tags opus", ErrOpusUnavailable)
}
