// ABOUTME: mDNS service discovery package
// ABOUTME: Discover and advertise sound monitors on the local network
// Package discovery provides mDNS service discovery for sound monitors.
//
// A running game advertises its monitor as _sfxmon._tcp with the WebSocket
// path in a TXT record; tools find it without being told an address.
//
// Example:
//
//	monitors, err := discovery.Discover(3 * time.Second)
//	for _, m := range monitors {
//	    fmt.Printf("Found: %s at %s%s\n", m.Name, m.Addr(), m.Path)
//	}
package discovery
