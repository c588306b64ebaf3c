// Package ui provides the lever terminal user interface.
// This file contains tea.Cmd factories for work that leaves the process:
// the clipboard and desktop notifications. State mutations and saves stay
// on the loop.
package ui

import (
	"time"

	"lever/internal/notify"

	tea "github.com/charmbracelet/bubbletea"
)

// tickCmd returns a command that sends a tick every second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// copyExportCmd writes an already rendered export to the clipboard.
func copyExportCmd(copyFn func(string) error, markdown string) tea.Cmd {
	return func() tea.Msg {
		return exportedMsg{err: copyFn(markdown)}
	}
}

// notifyFocusCompleteCmd announces a finished focus session. Returns nil
// when alerts are disabled.
func notifyFocusCompleteCmd(alerts *notify.Alerts, seconds float64) tea.Cmd {
	if !alerts.Enabled() {
		return nil
	}
	return func() tea.Msg {
		return notifiedMsg{err: alerts.FocusComplete(seconds)}
	}
}
