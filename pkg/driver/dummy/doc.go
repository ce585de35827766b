// ABOUTME: Headless driver package for tests and machines without audio
// ABOUTME: Simulates buffer timing from the clock and records all properties
// Package dummy implements a driver.Driver that produces no sound.
//
// Buffers play against the real-time clock so that sounds end, loop and
// refresh exactly as they would on a device. Committed buffer and listener
// properties can be inspected:
//
//	d := dummy.New(dummy.Options{})
//	props, ok := d.Props(buf)
//	ls := d.ListenerState()
package dummy
