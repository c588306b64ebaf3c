// Package ui provides the lever terminal user interface.
// This file defines key bindings using the Bubble Tea key package for
// type-safe key matching, help text generation, and user customization.
package ui

import (
	"strings"

	"lever/internal/config"

	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// Helpers
// =============================================================================

// parseKeys splits a comma-separated string into individual keys.
// If the input is empty, returns the default keys.
func parseKeys(customKeys string, defaultKeys ...string) []string {
	if customKeys == "" {
		return defaultKeys
	}
	keys := strings.Split(customKeys, ",")
	result := make([]string, 0, len(keys))
	for _, k := range keys {
		trimmed := strings.TrimSpace(k)
		if trimmed == "space" {
			trimmed = " "
		}
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultKeys
	}
	return result
}

// newBinding builds a binding from a configured key list. Custom keys replace
// the default help label so the help screens show what was configured.
func newBinding(custom, helpKey, desc string, defaults ...string) key.Binding {
	keys := parseKeys(custom, defaults...)
	if custom != "" {
		labels := make([]string, len(keys))
		for i, k := range keys {
			if k == " " {
				k = "space"
			}
			labels[i] = k
		}
		helpKey = strings.Join(labels, "/")
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc))
}

// =============================================================================
// Global Keys (available whenever no input is open)
// =============================================================================

// GlobalKeyMap defines keys available throughout the main screen.
type GlobalKeyMap struct {
	Quit             key.Binding
	Help             key.Binding
	NewTask          key.Binding
	CompleteDay      key.Binding
	ToggleAntiVision key.Binding
	EditVision       key.Binding
	EditAntiVision   key.Binding
	Export           key.Binding
}

// DefaultGlobalKeyMap returns the default global key bindings.
func DefaultGlobalKeyMap() GlobalKeyMap {
	return NewGlobalKeyMap(&config.KeysConfig{})
}

// NewGlobalKeyMap creates global key bindings from config.
func NewGlobalKeyMap(cfg *config.KeysConfig) GlobalKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return GlobalKeyMap{
		Quit:             newBinding(cfg.Quit, "q", "quit", "q", "ctrl+c"),
		Help:             newBinding(cfg.Help, "?", "help", "?"),
		NewTask:          newBinding(cfg.NewTask, "ctrl+n", "new lever", "ctrl+n"),
		CompleteDay:      newBinding(cfg.CompleteDay, "c", "complete day", "c"),
		ToggleAntiVision: newBinding(cfg.ToggleAntiVision, "v", "anti-vision", "v"),
		EditVision:       newBinding(cfg.EditVision, "V", "edit vision", "V"),
		EditAntiVision:   newBinding(cfg.EditAntiVision, "A", "edit anti-vision", "A"),
		Export:           newBinding(cfg.Export, "e", "copy markdown", "e"),
	}
}

// =============================================================================
// Navigation Keys
// =============================================================================

// NavigationKeyMap defines keys for list navigation.
type NavigationKeyMap struct {
	Up   key.Binding
	Down key.Binding
}

// NewNavigationKeyMap creates navigation key bindings from config.
func NewNavigationKeyMap(cfg *config.KeysConfig) NavigationKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return NavigationKeyMap{
		Up:   newBinding(cfg.Up, "k/↑", "up", "k", "up"),
		Down: newBinding(cfg.Down, "j/↓", "down", "j", "down"),
	}
}

// =============================================================================
// Input Keys (shared by text input fields)
// =============================================================================

// InputKeyMap defines keys for text input mode.
type InputKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultInputKeyMap returns the default input key bindings.
func DefaultInputKeyMap() InputKeyMap {
	return NewInputKeyMap(&config.KeysConfig{})
}

// NewInputKeyMap creates input key bindings from config.
func NewInputKeyMap(cfg *config.KeysConfig) InputKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return InputKeyMap{
		Confirm: newBinding(cfg.Confirm, "enter", "confirm", "enter"),
		Cancel:  newBinding(cfg.Cancel, "esc", "cancel", "esc"),
	}
}

// =============================================================================
// Lever Pane Keys
// =============================================================================

// LeverKeyMap defines keys for the lever task pane.
type LeverKeyMap struct {
	Add    key.Binding
	Toggle key.Binding
	Delete key.Binding
	NavigationKeyMap
}

// DefaultLeverKeyMap returns the default lever pane key bindings.
func DefaultLeverKeyMap() LeverKeyMap {
	return NewLeverKeyMap(&config.KeysConfig{})
}

// NewLeverKeyMap creates lever key bindings from config.
func NewLeverKeyMap(cfg *config.KeysConfig) LeverKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return LeverKeyMap{
		Add:              newBinding(cfg.AddTask, "a", "add lever", "a"),
		Toggle:           newBinding(cfg.ToggleTask, "d", "toggle done", "d", "enter"),
		Delete:           newBinding(cfg.DeleteTask, "x", "delete", "x"),
		NavigationKeyMap: NewNavigationKeyMap(cfg),
	}
}

// ShortHelp returns the short help for the lever pane (implements help.KeyMap).
func (k LeverKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Delete, k.Down}
}

// FullHelp returns the full help for the lever pane (implements help.KeyMap).
func (k LeverKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Add, k.Toggle, k.Delete},
		{k.Up, k.Down},
	}
}

// =============================================================================
// Timer Pane Keys
// =============================================================================

// TimerKeyMap defines keys for the focus timer.
type TimerKeyMap struct {
	Toggle key.Binding
	Reset  key.Binding
}

// DefaultTimerKeyMap returns the default timer key bindings.
func DefaultTimerKeyMap() TimerKeyMap {
	return NewTimerKeyMap(&config.KeysConfig{})
}

// NewTimerKeyMap creates timer key bindings from config.
func NewTimerKeyMap(cfg *config.KeysConfig) TimerKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return TimerKeyMap{
		Toggle: newBinding(cfg.ToggleTimer, "space", "start/pause", " "),
		Reset:  newBinding(cfg.ResetTimer, "r", "reset", "r"),
	}
}

// ShortHelp returns the short help for the timer (implements help.KeyMap).
func (k TimerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Reset}
}

// FullHelp returns the full help for the timer (implements help.KeyMap).
func (k TimerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Reset},
	}
}

// =============================================================================
// Help Overlay Keys
// =============================================================================

// HelpKeyMap defines keys for the help overlay.
type HelpKeyMap struct {
	Close key.Binding
}

// DefaultHelpKeyMap returns the default help overlay key bindings.
func DefaultHelpKeyMap() HelpKeyMap {
	return HelpKeyMap{
		Close: key.NewBinding(
			key.WithKeys("?", "esc", "q", "enter", " "),
			key.WithHelp("any key", "close"),
		),
	}
}
