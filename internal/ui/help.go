package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// HelpOverlay renders a help screen listing the active key bindings.
type HelpOverlay struct {
	width  int
	height int
	styles *Styles

	global GlobalKeyMap
	levers LeverKeyMap
	timer  TimerKeyMap
	input  InputKeyMap
}

// NewHelpOverlay creates a help overlay for the default bindings.
func NewHelpOverlay(styles *Styles) *HelpOverlay {
	return &HelpOverlay{
		styles: styles,
		global: DefaultGlobalKeyMap(),
		levers: DefaultLeverKeyMap(),
		timer:  DefaultTimerKeyMap(),
		input:  DefaultInputKeyMap(),
	}
}

// SetKeys replaces the bindings shown.
func (h *HelpOverlay) SetKeys(global GlobalKeyMap, levers LeverKeyMap, timer TimerKeyMap, input InputKeyMap) {
	h.global = global
	h.levers = levers
	h.timer = timer
	h.input = input
}

// SetSize sets the overlay dimensions
func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// View renders the help overlay
func (h *HelpOverlay) View() string {
	overlayWidth := 60
	if h.width > 0 {
		overlayWidth = min(60, max(20, h.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(h.styles.ColorPrimary).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorPrimary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorAccent).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorWarning).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorText)

	mutedStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorTextMuted).
		Italic(true)

	var b strings.Builder
	row := func(k, desc string) {
		b.WriteString(keyStyle.Render(k) + descStyle.Render(desc) + "\n")
	}
	binding := func(kb key.Binding, desc string) {
		row(kb.Help().Key, desc)
	}

	b.WriteString(titleStyle.Render("lever - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Levers"))
	b.WriteString("\n")
	binding(h.levers.Add, "Add lever (up to 3)")
	binding(h.global.NewTask, "Add lever from anywhere")
	binding(h.levers.Toggle, "Toggle done")
	binding(h.levers.Delete, "Delete lever")
	row(h.levers.Up.Help().Key+" / "+h.levers.Down.Help().Key, "Navigate up/down")
	binding(h.global.CompleteDay, "Complete the day")

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Focus Timer"))
	b.WriteString("\n")
	binding(h.timer.Toggle, "Start/pause")
	binding(h.timer.Reset, "Reset session")

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Vision"))
	b.WriteString("\n")
	binding(h.global.EditVision, "Edit vision")
	binding(h.global.ToggleAntiVision, "Show/hide anti-vision")
	binding(h.global.EditAntiVision, "Edit anti-vision")

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("General"))
	b.WriteString("\n")
	binding(h.global.Export, "Copy Markdown to clipboard")
	binding(h.global.Help, "Toggle help")
	binding(h.global.Quit, "Quit")

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Input Mode"))
	b.WriteString("\n")
	binding(h.input.Confirm, "Save")
	binding(h.input.Cancel, "Cancel")

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Press ? or Esc to close"))

	content := overlayStyle.Render(b.String())

	return lipgloss.Place(
		h.width,
		h.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}
