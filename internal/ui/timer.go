package ui

import (
	"strings"

	"lever/internal/config"
	"lever/internal/state"
	"lever/internal/timer"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// TimerPane shows the focus countdown and starts, pauses and resets it
// through the driver.
type TimerPane struct {
	st     *state.State
	driver *timer.Driver
	width  int
	height int
	styles *Styles

	// Key bindings
	keys TimerKeyMap
}

// NewTimerPane creates a timer pane with default key bindings.
func NewTimerPane(st *state.State, drv *timer.Driver, styles *Styles) *TimerPane {
	return NewTimerPaneWithKeys(st, drv, styles, &config.KeysConfig{})
}

// NewTimerPaneWithKeys creates a timer pane with custom key bindings.
func NewTimerPaneWithKeys(st *state.State, drv *timer.Driver, styles *Styles, keyCfg *config.KeysConfig) *TimerPane {
	if keyCfg == nil {
		keyCfg = &config.KeysConfig{}
	}
	return &TimerPane{
		st:     st,
		driver: drv,
		styles: styles,
		keys:   NewTimerKeyMap(keyCfg),
	}
}

// SetSize sets the pane dimensions.
func (p *TimerPane) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// IsRunning returns whether a session is in progress.
func (p *TimerPane) IsRunning() bool {
	return p.st.Timer().IsRunning
}

// Update handles the timer keys. Other messages are ignored.
func (p *TimerPane) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch {
	case key.Matches(keyMsg, p.keys.Toggle):
		p.driver.Toggle()

	case key.Matches(keyMsg, p.keys.Reset):
		if p.st.Timer().Elapsed > 0 {
			p.driver.Reset()
		}
	}
	return nil
}

// View renders the timer pane.
func (p *TimerPane) View() string {
	var b strings.Builder
	ts := p.st.Timer()

	b.WriteString(p.styles.PaneTitleStyle.Render("Focus"))
	b.WriteString("\n\n")

	clock := ts.FormattedRemaining()
	switch {
	case ts.IsComplete():
		clock = p.styles.TimerCompleteStyle.Render(clock)
	case ts.IsRunning:
		clock = p.styles.TimerRunningStyle.Render(clock)
	default:
		clock = p.styles.TimerStoppedStyle.Render(clock)
	}
	b.WriteString("  " + clock)
	if ts.IsComplete() {
		b.WriteString("  " + p.styles.TimerCompleteStyle.Render("Complete!"))
	}
	b.WriteString("\n")

	barWidth := p.width - 8
	if barWidth < 10 {
		barWidth = 20
	}
	b.WriteString("  " + p.renderProgressBar(ts.Progress(), barWidth))
	b.WriteString("\n\n")

	action := "Start"
	if ts.IsRunning {
		action = "Pause"
	}
	hints := []string{p.keys.Toggle.Help().Key, action}
	if ts.Elapsed > 0 {
		hints = append(hints, p.keys.Reset.Help().Key, "Reset")
	}
	b.WriteString("  " + p.styles.RenderHelp(hints...))
	b.WriteString("\n")

	style := p.styles.PaneStyle.Width(p.width)
	if p.height > 0 {
		style = style.Height(p.height)
	}
	return style.Render(b.String())
}

// renderProgressBar draws progress in [0, 1] as a bar of width cells.
func (p *TimerPane) renderProgressBar(progress float64, width int) string {
	filled := int(progress * float64(width))
	filled = min(max(filled, 0), width)
	return p.styles.ProgressFilled.Render(strings.Repeat("█", filled)) +
		p.styles.ProgressEmpty.Render(strings.Repeat("░", width-filled))
}

// StatusLine summarizes the timer for the title bar. Empty when idle.
func (p *TimerPane) StatusLine() string {
	ts := p.st.Timer()
	switch {
	case ts.IsRunning:
		return p.styles.TimerRunningStyle.Render("▶ " + ts.FormattedRemaining())
	case ts.Elapsed > 0 && !ts.IsComplete():
		return p.styles.StatLabelStyle.Render("❚❚ " + ts.FormattedRemaining())
	}
	return ""
}

