// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Sample, Format, Buffer types and sample conversion functions
// Package audio provides the fundamental audio types shared by the sound system.
//
// This package defines:
//   - Sample: a mono sound effect waveform (8-bit unsigned or 16-bit signed)
//     or a streaming callback, as stored in the sample cache
//   - Format: Describes a PCM stream format (sample rate, channels, bit depth)
//   - Buffer: Decoded interleaved PCM audio, the common output of decoders
//
// It also provides utilities for converting between sample formats:
//   - 8-bit, 16-bit and float ↔ int32 (24-bit range) conversions
//   - silence values per sample width
//
// Example:
//
//	s, err := audio.NewSample(5, data, 1, 11025)
//	ms := s.Milliseconds()
package audio
