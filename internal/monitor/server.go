// ABOUTME: WebSocket monitor exposing a running sound system
// ABOUTME: Pushes channel snapshots to connected tools and executes their commands
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sfxkit/sfxkit/pkg/discovery"
	"github.com/sfxkit/sfxkit/pkg/protocol"
	"github.com/sfxkit/sfxkit/pkg/sfx"
	"github.com/sfxkit/sfxkit/pkg/world"
)

// Config holds monitor configuration
type Config struct {
	Port             int
	Name             string
	Driver           string // reported in server/hello
	EnableMDNS       bool
	Debug            bool
	SnapshotInterval time.Duration
}

// Names resolves sound names for play and stop commands
type Names interface {
	Lookup(name string) (int, bool)
}

// Server is the monitor
type Server struct {
	config   Config
	serverID string
	sys      *sfx.System
	names    Names

	upgrader websocket.Upgrader

	httpServer *http.Server
	mux        *http.ServeMux

	clients   map[string]*Client
	clientsMu sync.RWMutex
	seq       atomic.Int64

	mdnsManager *discovery.Manager

	stopChan   chan struct{}
	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

// Client is a connected monitor tool
type Client struct {
	ID        string
	Name      string
	Conn      *websocket.Conn
	Connected time.Time

	sendChan chan interface{}
}

// ClientInfo describes a client for display
type ClientInfo struct {
	Name      string
	ID        string
	Connected time.Time
}

// New creates a monitor for sys. names may be nil.
func New(config Config, sys *sfx.System, names Names) *Server {
	if config.SnapshotInterval <= 0 {
		config.SnapshotInterval = 250 * time.Millisecond
	}
	if config.Name == "" {
		config.Name = "sfxkit"
	}

	s := &Server{
		config:   config,
		serverID: uuid.New().String(),
		sys:      sys,
		names:    names,
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Monitors are tools on a trusted local network
				return true
			},
		},
		clients:  make(map[string]*Client),
		stopChan: make(chan struct{}),
	}
	s.mux.HandleFunc(protocol.Path, s.handleWebSocket)
	return s
}

// Handler returns the HTTP handler serving the monitor endpoint
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until Stop is called or the listener fails
func (s *Server) Start() error {
	log.Printf("Monitor starting: %s (ID: %s)", s.config.Name, s.serverID)

	if s.config.EnableMDNS {
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        s.config.Port,
			Path:        protocol.Path,
			Info:        []string{"driver=" + s.config.Driver},
		})

		if err := s.mdnsManager.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		} else {
			log.Printf("mDNS advertisement started")
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.broadcastLoop()
	}()

	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Printf("Monitor listening on %s%s", addr, protocol.Path)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case <-s.stopChan:
		log.Printf("Monitor shutting down...")
	case err := <-errChan:
		log.Printf("HTTP server error: %v", err)
		serverErr = err
	}

	s.shutdownMu.Lock()
	s.isShutdown = true
	s.shutdownMu.Unlock()

	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	s.closeClients()
	s.wg.Wait()
	log.Printf("Monitor stopped cleanly")

	if serverErr != nil {
		return fmt.Errorf("HTTP server failed: %w", serverErr)
	}
	return nil
}

// Stop stops the monitor
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// Clients returns the connected clients sorted by name
func (s *Server) Clients() []ClientInfo {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	out := make([]ClientInfo, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, ClientInfo{Name: c.Name, ID: c.ID, Connected: c.Connected})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// closeClients drops every connection so their readers return
func (s *Server) closeClients() {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		c.Conn.Close()
	}
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	if s.config.Debug {
		log.Printf("[DEBUG] New WebSocket connection from %s", r.RemoteAddr)
	}

	s.handleConnection(conn)
}

// handleConnection manages a client connection
func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	s.shutdownMu.RLock()
	if s.isShutdown {
		s.shutdownMu.RUnlock()
		log.Printf("Rejecting connection during shutdown")
		return
	}
	s.shutdownMu.RUnlock()

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		log.Printf("Error reading hello: %v", err)
		return
	}
	conn.SetReadDeadline(time.Time{})

	typ, payload, err := protocol.Decode(data)
	if err != nil {
		log.Printf("Error decoding hello: %v", err)
		return
	}
	if typ != protocol.TypeClientHello {
		log.Printf("Expected client/hello, got %s", typ)
		return
	}

	hello := payload.(*protocol.ClientHello)
	if hello.ClientID == "" {
		hello.ClientID = uuid.New().String()
	}
	if hello.Name == "" {
		hello.Name = hello.ClientID
	}

	client := &Client{
		ID:        hello.ClientID,
		Name:      hello.Name,
		Conn:      conn,
		Connected: time.Now(),
		sendChan:  make(chan interface{}, 16),
	}

	s.clientsMu.Lock()
	if _, exists := s.clients[client.ID]; exists {
		s.clientsMu.Unlock()
		log.Printf("Client ID %s already connected, rejecting duplicate", client.ID)
		return
	}
	s.clients[client.ID] = client
	s.clientsMu.Unlock()

	log.Printf("Monitor client connected: %s (ID: %s)", client.Name, client.ID)

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, client.ID)
		close(client.sendChan)
		s.clientsMu.Unlock()
		log.Printf("Monitor client disconnected: %s", client.Name)
	}()

	if err := s.sendMessage(client, protocol.TypeServerHello, s.hello()); err != nil {
		log.Printf("Error sending server hello: %v", err)
		return
	}
	s.sendSnapshot(client)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(client)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		if !s.handleClientMessage(client, data) {
			return
		}
	}
}

// hello builds server/hello from the live system
func (s *Server) hello() protocol.ServerHello {
	cfg := s.sys.Config()
	return protocol.ServerHello{
		ServerID: s.serverID,
		Name:     s.config.Name,
		Version:  protocol.Version,
		Driver:   s.config.Driver,
		Channels: s.sys.Channels(),
		Use3D:    s.sys.Is3D(),
		RateHz:   cfg.Rate,
	}
}

// clientWriter sends queued messages to the client
func (s *Server) clientWriter(client *Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	const writeDeadline = 10 * time.Second

	for {
		select {
		case msg, ok := <-client.sendChan:
			if !ok {
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Error marshaling message: %v", err)
				continue
			}
			client.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("Error writing message: %v", err)
				return
			}

		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}

// handleClientMessage processes one message. It returns false when the
// client said goodbye.
func (s *Server) handleClientMessage(client *Client, data []byte) bool {
	typ, payload, err := protocol.Decode(data)
	if err != nil {
		log.Printf("Error decoding message from %s: %v", client.Name, err)
		return true
	}

	switch typ {
	case protocol.TypeClientCommand:
		cmd := payload.(*protocol.Command)
		result := Execute(s.sys, s.names, *cmd)
		if s.config.Debug {
			log.Printf("[DEBUG] %s: %s -> ok=%v %s", client.Name, cmd.Command, result.OK, result.Error)
		}
		if err := s.sendMessage(client, protocol.TypeResult, result); err != nil {
			log.Printf("Error sending result to %s: %v", client.Name, err)
		}
	case protocol.TypeClientGoodbye:
		log.Printf("Client %s said goodbye: %s", client.Name, payload.(*protocol.ClientGoodbye).Reason)
		return false
	default:
		log.Printf("Unexpected message type from %s: %s", client.Name, typ)
	}
	return true
}

// Execute runs a command against a sound system. names may be nil.
func Execute(sys *sfx.System, names Names, cmd protocol.Command) protocol.Result {
	result := protocol.Result{ID: cmd.ID, Command: cmd.Command}

	fail := func(err error) protocol.Result {
		result.Error = err.Error()
		return result
	}

	switch cmd.Command {
	case protocol.CommandPlay:
		id, err := resolve(names, cmd)
		if err != nil {
			return fail(err)
		}
		flags, err := sfx.ParseFlags(cmd.Flags)
		if err != nil {
			return fail(err)
		}
		volume := cmd.Volume
		if volume == 0 {
			volume = 1
		}
		if err := sys.Start(sfx.Request{ID: id, Volume: volume, Freq: cmd.Freq, Flags: flags}); err != nil {
			return fail(err)
		}

	case protocol.CommandStop:
		id, err := resolve(names, cmd)
		if err != nil {
			return fail(err)
		}
		result.Stopped = sys.StopSound(id, world.Handle{})
		if result.Stopped < 0 {
			return fail(errors.New("sound cannot be stopped"))
		}

	case protocol.CommandStopAll:
		result.Stopped = sys.Snapshot().Playing
		sys.StopAll()

	case protocol.CommandVolume:
		if cmd.Master < 0 || cmd.Master > 255 {
			return fail(fmt.Errorf("master volume %d out of range 0-255", cmd.Master))
		}
		sys.SetVolume(cmd.Master)

	default:
		return fail(fmt.Errorf("unknown command: %s", cmd.Command))
	}

	result.OK = true
	return result
}

// resolve finds the sound a command refers to
func resolve(names Names, cmd protocol.Command) (int, error) {
	if cmd.SoundID > 0 {
		return cmd.SoundID, nil
	}
	if cmd.Name != "" && names != nil {
		if id, ok := names.Lookup(cmd.Name); ok {
			return id, nil
		}
		return 0, fmt.Errorf("unknown sound: %s", cmd.Name)
	}
	return 0, errors.New("command needs sound_id or name")
}

// broadcastLoop pushes snapshots until Stop
func (s *Server) broadcastLoop() {
	ticker := time.NewTicker(s.config.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.Broadcast()
		}
	}
}

// Broadcast sends one snapshot to every client
func (s *Server) Broadcast() {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	if len(s.clients) == 0 {
		return
	}
	snap := s.snapshot()
	for _, c := range s.clients {
		if err := s.sendMessage(c, protocol.TypeSnapshot, snap); err != nil && s.config.Debug {
			log.Printf("[DEBUG] Dropping snapshot for %s: %v", c.Name, err)
		}
	}
}

// sendSnapshot sends one snapshot to a single client
func (s *Server) sendSnapshot(client *Client) {
	if err := s.sendMessage(client, protocol.TypeSnapshot, s.snapshot()); err != nil {
		log.Printf("Error sending snapshot: %v", err)
	}
}

// snapshot numbers a fresh snapshot
func (s *Server) snapshot() protocol.Snapshot {
	return protocol.Snapshot{Seq: s.seq.Add(1), Snapshot: s.sys.Snapshot()}
}

// sendMessage queues a JSON message for a client
func (s *Server) sendMessage(client *Client, msgType string, payload interface{}) error {
	msg := protocol.Message{
		Type:    msgType,
		Payload: payload,
	}

	select {
	case client.sendChan <- msg:
		return nil
	default:
		return fmt.Errorf("client send buffer full")
	}
}
