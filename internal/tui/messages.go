package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const statusTimeout = 3 * time.Second

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusSuccess
	statusError
)

// clearStatusMsg clears the status line if it still shows message seq.
type clearStatusMsg struct {
	seq int
}

func clearStatusAfter(seq int) tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}
