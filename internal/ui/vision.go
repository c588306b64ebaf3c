package ui

import (
	"strings"

	"lever/internal/config"
	"lever/internal/state"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type editTarget int

const (
	editNone editTarget = iota
	editVision
	editAntiVision
)

// VisionPane shows the vision above the day's work and the anti-vision,
// collapsed by default, below it. Both can be edited in place.
type VisionPane struct {
	st       *state.State
	styles   *Styles
	width    int
	showAnti bool
	editing  editTarget
	input    textinput.Model

	inputKeys InputKeyMap
}

// NewVisionPane creates a vision pane.
func NewVisionPane(st *state.State, styles *Styles, keyCfg *config.KeysConfig) *VisionPane {
	ti := textinput.New()
	ti.CharLimit = 280
	ti.Width = 50

	return &VisionPane{
		st:        st,
		styles:    styles,
		input:     ti,
		inputKeys: NewInputKeyMap(keyCfg),
	}
}

// SetSize sets the pane width.
func (p *VisionPane) SetSize(width int) {
	p.width = width
	p.input.Width = max(10, width-16)
}

// IsEditing reports whether an edit input is open.
func (p *VisionPane) IsEditing() bool {
	return p.editing != editNone
}

// AntiVisionVisible reports whether the anti-vision is expanded.
func (p *VisionPane) AntiVisionVisible() bool {
	return p.showAnti
}

// ToggleAntiVision expands or collapses the anti-vision.
func (p *VisionPane) ToggleAntiVision() {
	p.showAnti = !p.showAnti
}

// EditVision opens the vision for editing, prefilled with the current text.
func (p *VisionPane) EditVision() tea.Cmd {
	return p.startEdit(editVision, p.st.Vision(), "Your vision...")
}

// EditAntiVision expands the anti-vision and opens it for editing.
func (p *VisionPane) EditAntiVision() tea.Cmd {
	p.showAnti = true
	return p.startEdit(editAntiVision, p.st.AntiVision(), "What you want to avoid...")
}

func (p *VisionPane) startEdit(target editTarget, value, placeholder string) tea.Cmd {
	p.editing = target
	p.input.Placeholder = placeholder
	p.input.SetValue(value)
	p.input.CursorEnd()
	p.input.Focus()
	return textinput.Blink
}

func (p *VisionPane) stopEdit() {
	p.editing = editNone
	p.input.Reset()
	p.input.Blur()
}

// Update handles input while editing. The text is stored as typed.
func (p *VisionPane) Update(msg tea.Msg) tea.Cmd {
	if p.editing == editNone {
		return nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, p.inputKeys.Confirm):
			switch p.editing {
			case editVision:
				p.st.UpdateVision(p.input.Value())
			case editAntiVision:
				p.st.UpdateAntiVision(p.input.Value())
			}
			p.stopEdit()
			return nil

		case key.Matches(msg, p.inputKeys.Cancel):
			p.stopEdit()
			return nil
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// VisionView renders the quoted vision, or its edit input.
func (p *VisionPane) VisionView() string {
	if p.editing == editVision {
		return p.styles.InputPromptStyle.Render("Vision: ") + p.input.View()
	}

	vision := strings.TrimSpace(p.st.Vision())
	if vision == "" {
		return p.styles.StatLabelStyle.Render("No vision yet.")
	}
	style := p.styles.VisionStyle
	if p.width > 0 {
		style = style.Width(p.width).Align(lipgloss.Center)
	}
	return style.Render("\"" + vision + "\"")
}

// AntiVisionView renders the anti-vision header and, when expanded, its
// text or edit input.
func (p *VisionPane) AntiVisionView() string {
	arrow := "▸"
	if p.showAnti {
		arrow = "▾"
	}
	header := p.styles.AntiVisionStyle.Render("⚠ Anti-Vision") + " " + p.styles.StatLabelStyle.Render(arrow)
	if !p.showAnti {
		return header
	}

	var body string
	switch {
	case p.editing == editAntiVision:
		body = p.styles.InputPromptStyle.Render("Anti-Vision: ") + p.input.View()
	case strings.TrimSpace(p.st.AntiVision()) == "":
		body = p.styles.StatLabelStyle.Render("Nothing written yet.")
	default:
		style := p.styles.StatLabelStyle
		if p.width > 4 {
			style = style.Width(p.width - 2)
		}
		body = style.Render(p.st.AntiVision())
	}
	return header + "\n  " + strings.ReplaceAll(body, "\n", "\n  ")
}
