// ABOUTME: Sentinel errors returned by the sound system
// ABOUTME: Callers match them with errors.Is
package sfx

import "errors"

var (
	// ErrUnavailable is returned when the sound system is not initialized
	ErrUnavailable = errors.New("sound system unavailable")

	// ErrInvalidSound is returned for ids without a definition
	ErrInvalidSound = errors.New("invalid sound id")

	// ErrRejected is returned when a start is refused: silent volume, a
	// more important sound on the same emitter, or a saturated per-sample cap
	ErrRejected = errors.New("sound rejected")

	// ErrNoChannel is returned when no channel could be allocated
	ErrNoChannel = errors.New("no channel available")

	// ErrMissingBuffer is the panic value when a channel without a buffer
	// is asked for one
	ErrMissingBuffer = errors.New("channel has no buffer")
)
