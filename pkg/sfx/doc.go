// ABOUTME: Sound effects system package
// ABOUTME: Channel allocation by priority over a pluggable driver with a shared sample cache
// Package sfx plays positional sound effects for a game world.
//
// A System owns a fixed pool of channels, each bound to one driver buffer.
// Start picks a channel for a sound: a stopped buffer that already holds the
// sample, then an empty one, then any stopped one of the right format, and
// finally the playing channel with the lowest priority not above the new
// sound's. Priority favours loud, close and recent sounds:
//
//	1000*volume - distance/2 - 1000*age/(5 s)
//
// Sound definitions may cap simultaneous instances and place sounds in
// exclusion groups. With OneSoundPerEmitter an emitter only ever plays one
// sound, and a new sound is refused when the current one is more important.
//
// Unless the driver refreshes itself, a background goroutine tops up every
// playing buffer every 200 ms. All channel and buffer state is guarded by a
// single critical section; the sample cache has its own lock, always taken
// second.
//
// Frame must be called once per game frame. It moves the listener, follows
// moving emitters and commits all deferred driver changes at once.
//
//	sys := sfx.New(sfx.Options{
//		Config:      sfx.LoadConfig(),
//		Driver:      dummy.New(dummy.Options{}),
//		Loader:      library,
//		Definitions: library,
//		World:       registry,
//	})
//	if err := sys.Init(); err != nil {
//		log.Fatal(err)
//	}
//	defer sys.Shutdown()
//
//	err := sys.Start(sfx.Request{ID: pistol, Volume: 1, Emitter: player})
//	sys.Frame(player)
package sfx
