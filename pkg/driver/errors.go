// ABOUTME: Sentinel errors shared by driver implementations
// ABOUTME: Wrapped with context by each back-end
package driver

import "errors"

var (
	// ErrNotInitialized is returned when a driver is used before Init
	ErrNotInitialized = errors.New("driver not initialized")
	// ErrBufferCreate is returned when a buffer cannot be created
	ErrBufferCreate = errors.New("buffer creation failed")
	// ErrNo3D is returned when a positional buffer is requested but unavailable
	ErrNo3D = errors.New("3D buffers not available")
	// ErrBadFormat is returned for unsupported bit depths or rates
	ErrBadFormat = errors.New("unsupported buffer format")
	// ErrRingLock is returned when a ring region cannot be locked
	ErrRingLock = errors.New("ring lock failed")
)
