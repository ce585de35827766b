// ABOUTME: Sound asset library package
// ABOUTME: JSON manifests mapping sound ids to files, URLs or generated tones
// Package assets describes a game's sounds in a JSON manifest and loads them.
//
// A Library implements both sfx.Definitions and cache.Loader, so one value
// wires a manifest into the sound system:
//
//	{
//	  "sounds": [
//	    {"id": 1, "name": "pistol", "file": "pistol.wav", "priority": 64, "channels": 2},
//	    {"id": 2, "name": "door", "file": "https://example.com/door.ogg", "priority": 40, "group": 1},
//	    {"id": 3, "name": "alarm", "tone": {"freq": 880, "seconds": 0.5}, "flags": ["repeat"]},
//	    {"id": 4, "name": "engine", "tone": {"freq": 55, "shape": "square"}, "stream": true}
//	  ]
//	}
//
// Files are decoded by extension (wav, mp3, flac, ogg, raw, lmp) and stored as
// 8-bit samples when the source is 8-bit and 16-bit otherwise. Tones are
// rendered once, or streamed when "stream" is set.
//
//	lib, err := assets.Open("sounds/sounds.json")
//	sys := sfx.New(sfx.Options{Loader: lib, Definitions: lib, ...})
package assets
