// ABOUTME: Sample encoder package turning decoded PCM into cache-ready bytes
// ABOUTME: Provides Encoder interface and the 8/16-bit PCM implementation
// Package encode converts decoded int32 PCM into the byte layouts drivers
// consume: 8-bit unsigned or 16-bit signed little-endian mono.
//
// Example:
//
//	s, err := encode.ToSample(id, decoded, 16)
package encode
