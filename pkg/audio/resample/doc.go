// ABOUTME: Audio resampling package built on beep
// ABOUTME: Upsamples and widens sound samples for drivers that need one format
// Package resample provides sample rate conversion for cached sound samples.
//
// Some drivers cannot mix samples of differing rates. For those, samples are
// converted once when they enter the cache:
//
//	up, err := resample.Convert(sample, 44100, 16)
//
// Resampling uses beep's windowed interpolation at Quality.
package resample
