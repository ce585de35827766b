// ABOUTME: WebSocket client for the sound monitor protocol
// ABOUTME: Handles connection, handshake, snapshot delivery and commands
package protocol

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Config holds client configuration
type Config struct {
	ServerAddr string
	ClientID   string
	Name       string
}

// Client is a monitor client
type Client struct {
	config Config
	conn   *websocket.Conn
	mu     sync.RWMutex

	// Message channels
	Snapshots chan Snapshot
	Results   chan Result

	server    ServerHello
	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config:    config,
		Snapshots: make(chan Snapshot, 4),
		Results:   make(chan Result, 10),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Connect establishes the WebSocket connection and performs the handshake
func (c *Client) Connect() error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: Path}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()

	return nil
}

// handshake sends client/hello and waits for server/hello
func (c *Client) handshake() error {
	hello := Message{
		Type: TypeClientHello,
		Payload: ClientHello{
			ClientID: c.config.ClientID,
			Name:     c.config.Name,
			Version:  Version,
		},
	}
	if err := c.sendJSON(hello); err != nil {
		return fmt.Errorf("failed to send client/hello: %w", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read server/hello: %w", err)
	}
	c.conn.SetReadDeadline(time.Time{})

	typ, payload, err := Decode(data)
	if err != nil {
		return err
	}
	if typ != TypeServerHello {
		return fmt.Errorf("expected server/hello, got %s", typ)
	}

	c.mu.Lock()
	c.server = *payload.(*ServerHello)
	c.mu.Unlock()

	log.Printf("Handshake complete with %s (%s)", c.server.Name, c.server.Driver)
	return nil
}

// Server returns the server/hello received during the handshake
func (c *Client) Server() ServerHello {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.server
}

// sendJSON sends a JSON message
func (c *Client) sendJSON(msg Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return fmt.Errorf("not connected")
	}

	return c.conn.WriteJSON(msg)
}

// readMessages reads and routes incoming messages
func (c *Client) readMessages() {
	defer c.Close()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Printf("Read error: %v", err)
			return
		}
		if messageType != websocket.TextMessage {
			log.Printf("Unexpected WebSocket message type: %d", messageType)
			continue
		}
		c.handleJSONMessage(data)
	}
}

// handleJSONMessage routes JSON messages
func (c *Client) handleJSONMessage(data []byte) {
	typ, payload, err := Decode(data)
	if err != nil {
		log.Printf("Failed to parse message: %v", err)
		return
	}

	switch typ {
	case TypeSnapshot:
		snap := *payload.(*Snapshot)
		// Drop the oldest snapshot rather than block the reader
		select {
		case c.Snapshots <- snap:
		default:
			select {
			case <-c.Snapshots:
			default:
			}
			select {
			case c.Snapshots <- snap:
			default:
			}
		}

	case TypeResult:
		select {
		case c.Results <- *payload.(*Result):
		case <-time.After(100 * time.Millisecond):
			log.Printf("Result channel full, dropping message")
		case <-c.ctx.Done():
		}

	default:
		log.Printf("Unexpected message type: %s", typ)
	}
}

// SendCommand sends a client/command message
func (c *Client) SendCommand(cmd Command) error {
	return c.sendJSON(Message{Type: TypeClientCommand, Payload: cmd})
}

// Play asks the monitor to start a sound
func (c *Client) Play(soundID int, volume float64) error {
	return c.SendCommand(Command{Command: CommandPlay, SoundID: soundID, Volume: volume})
}

// StopAll asks the monitor to stop every sound
func (c *Client) StopAll() error {
	return c.SendCommand(Command{Command: CommandStopAll})
}

// SendGoodbye sends a client/goodbye message before disconnecting
func (c *Client) SendGoodbye(reason string) error {
	return c.sendJSON(Message{Type: TypeClientGoodbye, Payload: ClientGoodbye{Reason: reason}})
}

// Done is closed when the connection ends
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.Close()
		log.Printf("Connection closed")
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
