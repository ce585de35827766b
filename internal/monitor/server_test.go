// ABOUTME: Tests for the monitor server over a real WebSocket connection
// ABOUTME: Drives a dummy-backed sound system through the protocol client
package monitor

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sfxkit/sfxkit/pkg/audio"
	"github.com/sfxkit/sfxkit/pkg/cache"
	"github.com/sfxkit/sfxkit/pkg/clock"
	"github.com/sfxkit/sfxkit/pkg/driver/dummy"
	"github.com/sfxkit/sfxkit/pkg/protocol"
	"github.com/sfxkit/sfxkit/pkg/sfx"
)

type nameMap map[string]int

func (m nameMap) Lookup(name string) (int, bool) {
	id, ok := m[name]
	return id, ok
}

func newSystem(t *testing.T) *sfx.System {
	t.Helper()

	clk := clock.NewManual()
	cfg := sfx.DefaultConfig()
	cfg.Channels = 4

	sys := sfx.New(sfx.Options{
		Config: cfg,
		Driver: dummy.New(dummy.Options{Clock: clk, AnySampleRate: true, NoChannelRefresh: true}),
		Loader: cache.LoaderFunc(func(id int) (*audio.Sample, error) {
			return audio.NewSample(id, make([]byte, 11025), 1, 11025)
		}),
		Definitions: sfx.DefinitionMap{
			1: {ID: 1, Name: "boom", Priority: 50},
			2: {ID: 2, Name: "door", Priority: 50, Flags: sfx.DontStop},
		},
		Clock: clk,
	})
	if err := sys.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(sys.Shutdown)
	return sys
}

// connect starts a monitor for sys behind httptest and returns a client
func connect(t *testing.T, sys *sfx.System) (*Server, *protocol.Client) {
	t.Helper()

	srv := New(Config{Name: "test", Driver: "dummy"}, sys, nameMap{"boom": 1, "door": 2})
	ts := httptest.NewServer(srv.Handler())

	client := protocol.NewClient(protocol.Config{
		ServerAddr: strings.TrimPrefix(ts.URL, "http://"),
		ClientID:   "client-1",
		Name:       "tester",
	})
	if err := client.Connect(); err != nil {
		ts.Close()
		t.Fatalf("Connect: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		ts.Close()
	})
	return srv, client
}

func result(t *testing.T, c *protocol.Client) protocol.Result {
	t.Helper()
	select {
	case r := <-c.Results:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for result")
	}
	return protocol.Result{}
}

func snapshot(t *testing.T, c *protocol.Client) protocol.Snapshot {
	t.Helper()
	select {
	case s := <-c.Snapshots:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return protocol.Snapshot{}
}

func TestHandshake(t *testing.T) {
	sys := newSystem(t)
	_, client := connect(t, sys)

	hello := client.Server()
	if hello.Name != "test" || hello.Driver != "dummy" {
		t.Errorf("unexpected hello %+v", hello)
	}
	if hello.Channels != 4 || hello.Version != protocol.Version || hello.RateHz != 11025 {
		t.Errorf("unexpected hello %+v", hello)
	}
	if hello.ServerID == "" {
		t.Error("server id should be set")
	}

	snap := snapshot(t, client)
	if len(snap.Channels) != 4 || snap.Seq < 1 {
		t.Errorf("unexpected initial snapshot %+v", snap)
	}
}

func TestCommands(t *testing.T) {
	sys := newSystem(t)
	_, client := connect(t, sys)

	tests := []struct {
		name    string
		cmd     protocol.Command
		ok      bool
		stopped int
	}{
		{"play by id", protocol.Command{ID: "a", Command: protocol.CommandPlay, SoundID: 1}, true, 0},
		{"play by name", protocol.Command{ID: "b", Command: protocol.CommandPlay, Name: "door", Flags: []string{"dont-stop"}}, true, 0},
		{"unknown name", protocol.Command{ID: "c", Command: protocol.CommandPlay, Name: "nope"}, false, 0},
		{"bad flag", protocol.Command{ID: "d", Command: protocol.CommandPlay, SoundID: 1, Flags: []string{"loud"}}, false, 0},
		{"missing sound", protocol.Command{ID: "e", Command: protocol.CommandStop}, false, 0},
		{"stop blocked", protocol.Command{ID: "f", Command: protocol.CommandStop, SoundID: 2}, false, -1},
		{"stop", protocol.Command{ID: "g", Command: protocol.CommandStop, SoundID: 1}, true, 1},
		{"volume", protocol.Command{ID: "h", Command: protocol.CommandVolume, Master: 128}, true, 0},
		{"volume range", protocol.Command{ID: "i", Command: protocol.CommandVolume, Master: 300}, false, 0},
		{"stop all", protocol.Command{ID: "j", Command: protocol.CommandStopAll}, true, 1},
		{"unknown", protocol.Command{ID: "k", Command: "dance"}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := client.SendCommand(tt.cmd); err != nil {
				t.Fatalf("SendCommand: %v", err)
			}
			r := result(t, client)
			if r.ID != tt.cmd.ID || r.Command != tt.cmd.Command {
				t.Errorf("result %+v does not echo command", r)
			}
			if r.OK != tt.ok {
				t.Errorf("ok = %v (%s), want %v", r.OK, r.Error, tt.ok)
			}
			if !r.OK && r.Error == "" {
				t.Error("failed result should carry an error")
			}
			if r.Stopped != tt.stopped {
				t.Errorf("stopped = %d, want %d", r.Stopped, tt.stopped)
			}
		})
	}

	if sys.Volume() != 128 {
		t.Errorf("master volume = %d, want 128", sys.Volume())
	}
	if sys.Snapshot().Playing != 0 {
		t.Error("stop_all should leave nothing playing")
	}
}

func TestBroadcast(t *testing.T) {
	sys := newSystem(t)
	srv, client := connect(t, sys)

	first := snapshot(t, client)

	if err := sys.Start(sfx.Request{ID: 1, Volume: 1}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	srv.Broadcast()

	snap := snapshot(t, client)
	if snap.Seq <= first.Seq {
		t.Errorf("seq %d should follow %d", snap.Seq, first.Seq)
	}
	if snap.Playing != 1 {
		t.Errorf("playing = %d, want 1", snap.Playing)
	}

	var found bool
	for _, ch := range snap.Channels {
		if ch.SoundID == 1 && ch.Name == "boom" {
			found = true
		}
	}
	if !found {
		t.Error("snapshot should name the playing sound")
	}
}

func TestClients(t *testing.T) {
	sys := newSystem(t)
	srv, client := connect(t, sys)

	// The client is registered before server/hello is sent
	snapshot(t, client)

	clients := srv.Clients()
	if len(clients) != 1 || clients[0].Name != "tester" || clients[0].ID != "client-1" {
		t.Errorf("unexpected clients %+v", clients)
	}
}

func TestGoodbyeDisconnects(t *testing.T) {
	sys := newSystem(t)
	srv, client := connect(t, sys)
	snapshot(t, client)

	if err := client.SendGoodbye("done"); err != nil {
		t.Fatalf("SendGoodbye: %v", err)
	}

	select {
	case <-client.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("server should close the connection after goodbye")
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(srv.Clients()) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client should be unregistered")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
