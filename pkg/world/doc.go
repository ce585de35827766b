// ABOUTME: World object arena consumed by the sound system
// ABOUTME: Provides Vec3, weak Handles, Objects and reverb clusters
// Package world holds the minimal world model the sound system needs:
// positions, heights, momentum and facing of sound emitters and the listener.
//
// Objects live in a Registry and are referenced through Handles that carry a
// generation number. Once an object is despawned, or the registry is cleared
// on a map change, its handles resolve to nothing:
//
//	reg := world.NewRegistry()
//	h := reg.Spawn(world.Object{Origin: world.Vec3{X: 64}, Height: 56, Actor: true})
//	reg.Despawn(h)
//	_, ok := reg.Object(h) // ok == false
package world
