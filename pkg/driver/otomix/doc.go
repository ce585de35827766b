// ABOUTME: Software mixing driver package on ebitengine/oto
// ABOUTME: Mixes every buffer into one stereo stream with 2D and 3D positioning
// Package otomix implements a driver.Driver that mixes all buffers in software
// and plays the result through a single oto player.
//
// Buffers of any rate and width are mixed directly, so samples never need
// upsampling. 3D buffers are attenuated by distance (inverse rolloff between
// the min and max distance), panned against the listener's right vector and
// pitch shifted by the Doppler factor. Volume, pan and position changes are
// deferred until ListenerUpdate.
//
// Example:
//
//	drv := otomix.New(otomix.Options{SampleRate: 44100})
//	if err := drv.Init(); err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Shutdown()
package otomix
