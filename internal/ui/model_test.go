// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests snapshot application, key handling and rendering helpers
package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sfxkit/sfxkit/pkg/protocol"
	"github.com/sfxkit/sfxkit/pkg/sfx"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, s string) Model {
	t.Helper()
	next, _ := m.Update(key(s))
	return next.(Model)
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil) // Control is optional for testing

	if model.connected {
		t.Error("expected connected to be false initially")
	}
	if model.volume != 255 {
		t.Errorf("expected default volume 255, got %d", model.volume)
	}
	if model.showCache {
		t.Error("expected showCache to be false initially")
	}
}

func TestStatusMsg(t *testing.T) {
	model := NewModel(nil)

	connected := true
	model.applyStatus(StatusMsg{Connected: &connected, ServerName: "game", Driver: "oto"})
	if !model.connected || model.serverName != "game" || model.driver != "oto" {
		t.Errorf("unexpected model after connect: %+v", model)
	}

	disconnected := false
	model.applyStatus(StatusMsg{Connected: &disconnected})
	if model.connected {
		t.Error("expected connected to be false after disconnect")
	}
	if model.serverName != "game" {
		t.Error("empty fields should not clear the server name")
	}
}

func TestSnapshotOrdering(t *testing.T) {
	model := NewModel(nil)

	model.applySnapshot(SnapshotMsg{Seq: 2, Snapshot: sfx.Snapshot{Tick: 20, Volume: 100}})
	model.applySnapshot(SnapshotMsg{Seq: 1, Snapshot: sfx.Snapshot{Tick: 10, Volume: 50}})

	if model.snap.Tick != 20 || model.volume != 100 {
		t.Errorf("stale snapshot applied: tick %d volume %d", model.snap.Tick, model.volume)
	}

	model.applySnapshot(SnapshotMsg{Snapshot: sfx.Snapshot{Tick: 5}})
	if model.snap.Tick != 5 {
		t.Error("unnumbered snapshots should always apply")
	}
}

func TestKeysSendCommands(t *testing.T) {
	ctrl := NewControl()
	model := NewModel(ctrl)

	tests := []struct {
		key  string
		want protocol.Command
	}{
		{"3", protocol.Command{Command: protocol.CommandPlay, SoundID: 3, Volume: 1}},
		{"s", protocol.Command{Command: protocol.CommandStopAll}},
		{"down", protocol.Command{Command: protocol.CommandVolume, Master: 255 - volumeStep}},
		{"up", protocol.Command{Command: protocol.CommandVolume, Master: 255}},
	}

	for _, tt := range tests {
		model = press(t, model, tt.key)
		select {
		case got := <-ctrl.Commands:
			if got.Command != tt.want.Command || got.SoundID != tt.want.SoundID || got.Master != tt.want.Master || got.Volume != tt.want.Volume {
				t.Errorf("key %q sent %+v, want %+v", tt.key, got, tt.want)
			}
		default:
			t.Errorf("key %q sent nothing", tt.key)
		}
	}
}

func TestVolumeClamps(t *testing.T) {
	model := NewModel(nil)
	model = press(t, model, "up")
	if model.volume != 255 {
		t.Errorf("volume should stay at 255, got %d", model.volume)
	}

	for i := 0; i < 20; i++ {
		model = press(t, model, "down")
	}
	if model.volume != 0 {
		t.Errorf("volume should bottom out at 0, got %d", model.volume)
	}
}

func TestQuitSignalsControl(t *testing.T) {
	ctrl := NewControl()
	model := NewModel(ctrl)

	_, cmd := model.Update(key("q"))
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	select {
	case <-ctrl.Quit:
	default:
		t.Error("quit should be signalled on the control")
	}
}

func TestToggleCache(t *testing.T) {
	model := press(t, NewModel(nil), "c")
	if !model.showCache {
		t.Error("c should show the cache panel")
	}
}

func TestResultMsg(t *testing.T) {
	model := NewModel(nil)

	model.applyResult(ResultMsg{Command: "stop_all", OK: true, Stopped: 3})
	if model.lastResult != "stop_all ok (3 stopped)" {
		t.Errorf("unexpected result line %q", model.lastResult)
	}

	model.applyResult(ResultMsg{Command: "play", Error: "no free channel"})
	if model.lastResult != "play failed: no free channel" {
		t.Errorf("unexpected result line %q", model.lastResult)
	}
}

func TestViewRendersChannels(t *testing.T) {
	model := NewModel(nil)
	if model.View() != "Loading..." {
		t.Error("view should wait for the window size")
	}

	next, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model = next.(Model)
	model.applySnapshot(SnapshotMsg{Seq: 1, Snapshot: sfx.Snapshot{
		Playing: 1,
		Channels: []sfx.ChannelInfo{
			{Index: 0, State: "playing", SoundID: 7, Name: "pistol", Volume: 1, Priority: 950, Flags: "none"},
			{Index: 1, State: "idle"},
		},
	}})

	view := model.View()
	for _, want := range []string{"Channels (1/2 playing)", "7 pistol", "950", "idle"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "Cache:") {
		t.Error("cache panel should be hidden by default")
	}
}

func TestRenderChannelFlags(t *testing.T) {
	row := renderChannel(sfx.ChannelInfo{State: "playing", SoundID: 1, Flags: "none", Use3D: true})
	if !strings.Contains(row, "3d") || strings.Contains(row, "none") {
		t.Errorf("unexpected flags in row %q", row)
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value, limit, width int
		want                string
	}{
		{0, 255, 4, "░░░░"},
		{255, 255, 4, "████"},
		{128, 255, 4, "██░░"},
		{300, 255, 4, "████"},
		{10, 0, 2, "░░"},
	}
	for _, tt := range tests {
		if got := renderBar(tt.value, tt.limit, tt.width); got != tt.want {
			t.Errorf("renderBar(%d, %d, %d) = %q, want %q", tt.value, tt.limit, tt.width, got, tt.want)
		}
	}
}

func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input  string
		length int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.input, tt.length); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{3 << 20, "3.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
