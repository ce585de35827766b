// ABOUTME: Ogg Opus identification header parsing
// ABOUTME: Shared by the libopusfile decoder and its stub
package decode

import (
	"bytes"
	"errors"
	"fmt"
)

// OpusRate is the rate libopusfile always decodes to
const OpusRate = 48000

// ErrOpusUnavailable is returned when the binary was built without Opus support
var ErrOpusUnavailable = errors.New("opus support not compiled in")

var opusMagic = []byte("OpusHead")

// opusChannels reads the channel count from the OpusHead packet at the start
// of an Ogg Opus file
func opusChannels(data []byte) (int, error) {
	i := bytes.Index(data, opusMagic)
	if i < 0 {
		return 0, errors.New("opus: missing OpusHead")
	}
	head := data[i:]
	if len(head) < 19 {
		return 0, errors.New("opus: truncated OpusHead")
	}
	if v := head[8]; v>>4 != 0 {
		return 0, fmt.Errorf("opus: unsupported header version %d", v)
	}
	ch := int(head[9])
	if ch == 0 {
		return 0, errors.New("opus: zero channels")
	}
	return ch, nil
}
