// ABOUTME: Remote monitor application
// ABOUTME: Finds a running game over mDNS, streams its snapshots into the TUI and relays commands
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/sfxkit/sfxkit/internal/ui"
	"github.com/sfxkit/sfxkit/pkg/discovery"
	"github.com/sfxkit/sfxkit/pkg/protocol"
)

// WatchConfig holds watcher configuration
type WatchConfig struct {
	ServerAddr       string // empty browses with mDNS
	Name             string
	DiscoveryTimeout time.Duration
}

// Watcher represents the remote monitor application
type Watcher struct {
	config    WatchConfig
	client    *protocol.Client
	discovery *discovery.Manager
	tuiProg   *tea.Program
	ctrl      *ui.Control
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewWatcher creates a new watcher
func NewWatcher(config WatchConfig) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())

	if config.DiscoveryTimeout <= 0 {
		config.DiscoveryTimeout = 10 * time.Second
	}

	return &Watcher{
		config: config,
		ctrl:   ui.NewControl(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start runs the watcher until the TUI quits or Stop is called
func (w *Watcher) Start() error {
	w.tuiProg = ui.Run(w.ctrl)

	go func() {
		if _, err := w.tuiProg.Run(); err != nil {
			log.Printf("TUI error: %v", err)
		}
		w.cancel()
	}()

	addr := w.config.ServerAddr
	if addr == "" {
		found, err := w.discover()
		if err != nil {
			w.Stop()
			return err
		}
		addr = found
	}

	if err := w.connect(addr); err != nil {
		w.Stop()
		return fmt.Errorf("connection failed: %w", err)
	}

	go w.handleSnapshots()
	go w.handleResults()
	go w.handleCommands()

	select {
	case <-w.ctx.Done():
	case <-w.ctrl.Quit:
		log.Printf("Received quit signal from TUI")
	case <-w.client.Done():
		log.Printf("Monitor connection lost")
		disconnected := false
		w.tuiProg.Send(ui.StatusMsg{Connected: &disconnected})
		<-w.ctx.Done()
	}

	w.Stop()
	return nil
}

// discover waits for the first monitor to answer mDNS
func (w *Watcher) discover() (string, error) {
	log.Printf("Starting monitor discovery...")
	w.discovery = discovery.NewManager(discovery.Config{ServiceName: w.config.Name})
	w.discovery.Browse()

	select {
	case m := <-w.discovery.Monitors():
		log.Printf("Discovered monitor %s at %s", m.Name, m.Addr())
		return m.Addr(), nil
	case <-time.After(w.config.DiscoveryTimeout):
		return "", fmt.Errorf("no monitor found after %s", w.config.DiscoveryTimeout)
	case <-w.ctx.Done():
		return "", w.ctx.Err()
	}
}

// connect establishes the monitor connection
func (w *Watcher) connect(addr string) error {
	w.client = protocol.NewClient(protocol.Config{
		ServerAddr: addr,
		ClientID:   uuid.New().String(),
		Name:       w.config.Name,
	})

	if err := w.client.Connect(); err != nil {
		return err
	}

	hello := w.client.Server()
	log.Printf("Connected to monitor: %s (%s, %d channels)", hello.Name, hello.Driver, hello.Channels)

	connected := true
	w.tuiProg.Send(ui.StatusMsg{Connected: &connected, ServerName: hello.Name, Driver: hello.Driver})
	return nil
}

// handleSnapshots forwards snapshots to the TUI
func (w *Watcher) handleSnapshots() {
	for {
		select {
		case snap := <-w.client.Snapshots:
			w.tuiProg.Send(ui.SnapshotMsg{Seq: snap.Seq, Snapshot: snap.Snapshot})
		case <-w.ctx.Done():
			return
		}
	}
}

// handleResults forwards command results to the TUI
func (w *Watcher) handleResults() {
	for {
		select {
		case res := <-w.client.Results:
			w.tuiProg.Send(ui.ResultMsg(res))
		case <-w.ctx.Done():
			return
		}
	}
}

// handleCommands relays TUI actions to the monitor
func (w *Watcher) handleCommands() {
	for {
		select {
		case cmd := <-w.ctrl.Commands:
			cmd.ID = uuid.New().String()
			if err := w.client.SendCommand(cmd); err != nil {
				log.Printf("Failed to send %s: %v", cmd.Command, err)
			}
		case <-w.ctx.Done():
			return
		}
	}
}

// Stop stops the watcher
func (w *Watcher) Stop() {
	w.cancel()

	if w.client != nil {
		if w.client.IsConnected() {
			w.client.SendGoodbye("quit")
		}
		w.client.Close()
	}

	if w.discovery != nil {
		w.discovery.Stop()
	}

	if w.tuiProg != nil {
		w.tuiProg.Quit()
	}
}
