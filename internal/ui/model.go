// ABOUTME: Bubbletea model for the channel monitor TUI
// ABOUTME: Defines display state, key handling and rendering of channel snapshots
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sfxkit/sfxkit/pkg/protocol"
	"github.com/sfxkit/sfxkit/pkg/sfx"
)

// volumeStep is how far one key press moves the master volume
const volumeStep = 16

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	tableStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	playStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	idleStyle   = lipgloss.NewStyle().Faint(true)
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// Model represents the TUI state
type Model struct {
	// Connection
	connected  bool
	serverName string
	driver     string

	// Latest snapshot
	snap sfx.Snapshot
	seq  int64

	// Master volume 0-255 as last set from the keyboard or a snapshot
	volume int

	lastResult string
	showCache  bool

	ctrl *Control

	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	case SnapshotMsg:
		m.applySnapshot(msg)
	case ResultMsg:
		m.applyResult(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString(m.renderChannels())
	if m.showCache {
		b.WriteString(m.renderCache())
	}
	b.WriteString(m.renderStats())
	b.WriteString(m.renderHelp())
	return b.String()
}

// renderHeader renders connection, mode and master volume
func (m Model) renderHeader() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("sfxkit monitor"))
	b.WriteString("\n\n")

	status := "Disconnected"
	if m.connected {
		status = m.serverName
		if m.driver != "" {
			status += " (" + m.driver + ")"
		}
	}
	b.WriteString(headerStyle.Render("Source: "))
	b.WriteString(valueStyle.Render(status))
	b.WriteString("\n")

	mode := "stereo"
	if m.snap.Use3D {
		mode = "3D"
	}
	b.WriteString(headerStyle.Render("Mode:   "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%s, tick %d", mode, m.snap.Tick)))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Volume: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("[%s] %d", renderBar(m.volume, 255, 16), m.volume)))
	b.WriteString("\n\n")

	return b.String()
}

// renderChannels renders one row per channel
func (m Model) renderChannels() string {
	var b strings.Builder

	b.WriteString(tableStyle.Render(fmt.Sprintf("Channels (%d/%d playing)", m.snap.Playing, len(m.snap.Channels))))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%3s  %-8s %-16s %5s %9s  %s", "#", "STATE", "SOUND", "VOL", "PRIO", "FLAGS")))
	b.WriteString("\n")

	if len(m.snap.Channels) == 0 {
		b.WriteString(idleStyle.Render("  No channels"))
		b.WriteString("\n")
	}

	for _, ch := range m.snap.Channels {
		b.WriteString(renderChannel(ch))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// renderChannel formats a single channel row
func renderChannel(ch sfx.ChannelInfo) string {
	sound := "-"
	if ch.SoundID > 0 {
		sound = fmt.Sprintf("%d", ch.SoundID)
		if ch.Name != "" {
			sound = fmt.Sprintf("%d %s", ch.SoundID, ch.Name)
		}
	}

	prio := "-"
	if ch.State == sfx.StatePlaying.String() {
		prio = fmt.Sprintf("%.0f", ch.Priority)
	}

	flags := ch.Flags
	if flags == "none" {
		flags = ""
	}
	if ch.Use3D {
		flags = strings.TrimPrefix(flags+"|3d", "|")
	}

	row := fmt.Sprintf("%3d  %-8s %-16s %5.2f %9s  %s",
		ch.Index, ch.State, truncate(sound, 16), ch.Volume, prio, flags)

	if ch.State == sfx.StatePlaying.String() {
		return playStyle.Render(row)
	}
	return idleStyle.Render(row)
}

// renderCache renders sample cache occupancy
func (m Model) renderCache() string {
	c := m.snap.Cache
	return headerStyle.Render("Cache: ") + valueStyle.Render(fmt.Sprintf(
		"%s in %d samples (hits %d, misses %d, failures %d, evictions %d)",
		formatBytes(m.snap.CacheBytes), m.snap.CacheItems, c.Hits, c.Misses, c.Failures, c.Evictions)) + "\n"
}

// renderStats renders cumulative counters and the last command result
func (m Model) renderStats() string {
	st := m.snap.Stats
	s := headerStyle.Render("Stats: ") + valueStyle.Render(fmt.Sprintf(
		"started %d  rejected %d  stolen %d  no channel %d  stopped %d",
		st.Started, st.Rejected, st.Stolen, st.NoChannel, st.Stopped)) + "\n"
	if m.lastResult != "" {
		s += headerStyle.Render("Last:  ") + valueStyle.Render(m.lastResult) + "\n"
	}
	return s
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return "\n" + helpStyle.Render("1-9:Play  s:Stop all  ↑/↓:Volume  c:Cache  q:Quit") + "\n"
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		if m.ctrl != nil {
			select {
			case m.ctrl.Quit <- QuitMsg{}:
			default:
			}
		}
		return m, tea.Quit
	case "up":
		m.volume = clamp(m.volume+volumeStep, 0, 255)
		m.send(protocol.Command{Command: protocol.CommandVolume, Master: m.volume})
	case "down":
		m.volume = clamp(m.volume-volumeStep, 0, 255)
		m.send(protocol.Command{Command: protocol.CommandVolume, Master: m.volume})
	case "s":
		m.send(protocol.Command{Command: protocol.CommandStopAll})
	case "c":
		m.showCache = !m.showCache
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.send(protocol.Command{Command: protocol.CommandPlay, SoundID: int(key[0] - '0'), Volume: 1})
	}

	return m, nil
}

// send hands a command to whoever drives the sound system
func (m Model) send(cmd protocol.Command) {
	if m.ctrl == nil {
		return
	}
	select {
	case m.ctrl.Commands <- cmd:
	default:
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Connected != nil {
		m.connected = *msg.Connected
	}
	if msg.ServerName != "" {
		m.serverName = msg.ServerName
	}
	if msg.Driver != "" {
		m.driver = msg.Driver
	}
}

// applySnapshot replaces the displayed state. Older snapshots are ignored.
func (m *Model) applySnapshot(msg SnapshotMsg) {
	if msg.Seq != 0 && msg.Seq <= m.seq {
		return
	}
	m.seq = msg.Seq
	m.snap = msg.Snapshot
	m.volume = msg.Snapshot.Volume
}

// applyResult records the outcome of the last command
func (m *Model) applyResult(msg ResultMsg) {
	if msg.OK {
		m.lastResult = msg.Command + " ok"
		if msg.Stopped > 0 {
			m.lastResult += fmt.Sprintf(" (%d stopped)", msg.Stopped)
		}
		return
	}
	m.lastResult = msg.Command + " failed: " + msg.Error
}

// StatusMsg updates connection state
type StatusMsg struct {
	Connected  *bool
	ServerName string
	Driver     string
}

// SnapshotMsg carries a new system snapshot. Seq 0 always applies.
type SnapshotMsg struct {
	Seq      int64
	Snapshot sfx.Snapshot
}

// ResultMsg reports a command outcome
type ResultMsg protocol.Result

// Utility functions
func renderBar(value, limit, width int) string {
	if limit <= 0 {
		return strings.Repeat("░", width)
	}
	filled := clamp((value*width)/limit, 0, width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
