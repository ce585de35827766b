// ABOUTME: Audio decoder package turning sound assets into PCM
// ABOUTME: Provides the Decoder interface, a format registry and WAV/MP3/FLAC/Vorbis/PCM decoders
// Package decode turns encoded sound assets into interleaved int32 PCM.
//
// Supports: WAV (8/16/24-bit PCM), MP3, FLAC, Ogg Vorbis, raw PCM
//
// All decoders output samples left-justified in the 24-bit range so that
// downstream code handles one representation.
//
// Example:
//
//	reg := decode.Default()
//	buf, err := reg.DecodeFile("sounds/pistol.wav")
//	sample, err := encode.ToSample(id, buf, 16)
package decode
