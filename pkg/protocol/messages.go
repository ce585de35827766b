// ABOUTME: Sound monitor protocol message type definitions
// ABOUTME: JSON envelopes for the handshake, channel snapshots and control commands
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/sfxkit/sfxkit/pkg/sfx"
)

// Version is the protocol version spoken by this package
const Version = 1

// Path is the WebSocket endpoint served by the monitor
const Path = "/sfxmon"

// Message types
const (
	TypeClientHello   = "client/hello"
	TypeClientCommand = "client/command"
	TypeClientGoodbye = "client/goodbye"
	TypeServerHello   = "server/hello"
	TypeSnapshot      = "server/snapshot"
	TypeResult        = "server/result"
)

// Commands accepted in client/command
const (
	CommandPlay    = "play"
	CommandStop    = "stop"
	CommandStopAll = "stop_all"
	CommandVolume  = "volume"
)

// Message is the top-level wrapper for all protocol messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ClientHello is sent by clients to initiate the handshake
type ClientHello struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
}

// ServerHello is the monitor's response to client/hello
type ServerHello struct {
	ServerID string `json:"server_id"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
	Driver   string `json:"driver"`
	Channels int    `json:"channels"`
	Use3D    bool   `json:"use_3d"`
	RateHz   int    `json:"rate_hz"`
}

// Command asks the sound system to do something. Name may replace SoundID
// and Master is the 0-255 level for the volume command. ID is echoed in the
// result.
type Command struct {
	ID      string   `json:"id,omitempty"`
	Command string   `json:"command"`
	SoundID int      `json:"sound_id,omitempty"`
	Name    string   `json:"name,omitempty"`
	Volume  float64  `json:"volume,omitempty"`
	Freq    float64  `json:"freq,omitempty"`
	Flags   []string `json:"flags,omitempty"`
	Master  int      `json:"master"`
}

// Result reports the outcome of a command
type Result struct {
	ID      string `json:"id,omitempty"`
	Command string `json:"command"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Stopped int    `json:"stopped,omitempty"`
}

// Snapshot is a periodic view of the sound system
type Snapshot struct {
	Seq int64 `json:"seq"`
	sfx.Snapshot
}

// ClientGoodbye is sent before a client disconnects
type ClientGoodbye struct {
	Reason string `json:"reason"`
}

// envelope is Message with the payload left raw for two-step decoding
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decode parses a message and returns its typed payload
func Decode(data []byte) (string, interface{}, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("failed to parse message: %w", err)
	}

	var payload interface{}
	switch env.Type {
	case TypeClientHello:
		payload = &ClientHello{}
	case TypeClientCommand:
		payload = &Command{}
	case TypeClientGoodbye:
		payload = &ClientGoodbye{}
	case TypeServerHello:
		payload = &ServerHello{}
	case TypeSnapshot:
		payload = &Snapshot{}
	case TypeResult:
		payload = &Result{}
	default:
		return env.Type, nil, fmt.Errorf("unknown message type: %s", env.Type)
	}

	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, payload); err != nil {
			return env.Type, nil, fmt.Errorf("failed to parse %s: %w", env.Type, err)
		}
	}
	return env.Type, payload, nil
}
