// ABOUTME: Sound monitor wire protocol package
// ABOUTME: Defines protocol messages and a WebSocket client
// Package protocol implements the sound monitor protocol.
//
// A monitor serves JSON messages over a WebSocket at Path. After a
// client/hello and server/hello exchange the server pushes server/snapshot
// messages with the state of every channel, and accepts client/command
// messages to play or stop sounds.
//
// Example:
//
//	client := protocol.NewClient(protocol.Config{ServerAddr: "localhost:8930", Name: "watch"})
//	if err := client.Connect(); err != nil {
//		log.Fatal(err)
//	}
//	for snap := range client.Snapshots {
//		fmt.Println(snap.Playing, "playing")
//	}
package protocol
