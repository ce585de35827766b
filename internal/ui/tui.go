// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and the channels it reports through
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sfxkit/sfxkit/pkg/protocol"
)

// QuitMsg is sent when the user quits the TUI
type QuitMsg struct{}

// Control carries user actions out of the TUI
type Control struct {
	Commands chan protocol.Command
	Quit     chan QuitMsg
}

// NewControl creates a new control handler
func NewControl() *Control {
	return &Control{
		Commands: make(chan protocol.Command, 10),
		Quit:     make(chan QuitMsg, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(ctrl *Control) Model {
	return Model{
		volume: 255,
		ctrl:   ctrl,
	}
}

// Run creates the TUI program. The caller runs it and feeds it with Send.
func Run(ctrl *Control) *tea.Program {
	return tea.NewProgram(NewModel(ctrl), tea.WithAltScreen())
}
