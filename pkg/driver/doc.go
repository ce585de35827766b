// ABOUTME: Sound driver package defining the back-end contract
// ABOUTME: Provides Driver, Buffer, property enums and the shared ring refill protocol
// Package driver defines the interface between the sound system and its
// playback back-ends.
//
// A back-end creates Buffers, loads Samples into them, plays and stops them,
// and positions them in 3D. Software back-ends back each buffer with a Ring of
// half a second of audio that the refresh goroutine tops up as the play
// cursor advances:
//
//	buf, err := drv.Create(driver.Flag3D, 16, 44100)
//	drv.Load(buf, sample)
//	drv.Set(buf, driver.Volume, 0.8)
//	drv.Listener(driver.ListenerUpdate, 0)
//	drv.Play(buf)
//	drv.Refresh(buf) // periodically
//
// Positions handed to a driver are in driver space, which swaps the Y and Z
// axes of the Z-up world (see Coords). Buffer and listener property changes
// are deferred until ListenerUpdate commits them.
//
// Implementations: dummy (headless timing simulation) and otomix (software
// mixer on oto).
package driver
