// ABOUTME: Built-in placeholder sound set made of generated tones
// ABOUTME: Lets the demo and tests run without any sound files on disk
package assets

// BuiltinManifest returns a small set of tone sounds covering the common
// definition features: priorities, a per-sound channel cap, an exclusion
// group and a looping stream.
func BuiltinManifest() Manifest {
	return Manifest{Sounds: []Entry{
		{ID: 1, Name: "blip", Priority: 32, Tone: &Tone{Frequency: 880, Seconds: 0.15}},
		{ID: 2, Name: "shot", Priority: 64, Channels: 2, Flags: []string{"random-shift"},
			Tone: &Tone{Frequency: 220, Seconds: 0.3, Shape: "square"}},
		{ID: 3, Name: "door-open", Priority: 100, Group: 1, Tone: &Tone{Frequency: 330, Seconds: 0.8}},
		{ID: 4, Name: "door-close", Priority: 100, Group: 1, Tone: &Tone{Frequency: 262, Seconds: 0.8}},
		{ID: 5, Name: "alarm", Priority: 128, Flags: []string{"no-attenuation"},
			Tone: &Tone{Frequency: 660, Seconds: 1.2, Shape: "square", Volume: 0.3}},
		{ID: 6, Name: "hum", Priority: 16, Stream: true, Bits: 16,
			Tone: &Tone{Frequency: 110, Seconds: 2, Bits: 16, Volume: 0.25}},
	}}
}

// Builtin returns a library over BuiltinManifest
func Builtin() *Library {
	l, err := New(BuiltinManifest(), ".")
	if err != nil {
		panic(err)
	}
	return l
}
