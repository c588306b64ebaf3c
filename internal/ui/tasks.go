package ui

import (
	"fmt"
	"strings"

	"lever/internal/config"
	"lever/internal/signal"
	"lever/internal/state"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// LeverPane lists the day's lever tasks and handles adding, toggling and
// deleting them.
type LeverPane struct {
	st      *state.State
	cursor  int
	width   int
	height  int
	adding  bool
	input   textinput.Model
	styles  *Styles
	cancels []func()

	// completeKey is shown next to the Complete Day prompt.
	completeKey string

	// Key bindings
	keys      LeverKeyMap
	inputKeys InputKeyMap
}

// NewLeverPane creates a lever pane with default key bindings.
func NewLeverPane(st *state.State, styles *Styles) *LeverPane {
	return NewLeverPaneWithKeys(st, styles, &config.KeysConfig{})
}

// NewLeverPaneWithKeys creates a lever pane with custom key bindings.
func NewLeverPaneWithKeys(st *state.State, styles *Styles, keyCfg *config.KeysConfig) *LeverPane {
	if keyCfg == nil {
		keyCfg = &config.KeysConfig{}
	}
	ti := textinput.New()
	ti.Placeholder = "What's your lever?"
	ti.CharLimit = 100
	ti.Width = 40

	p := &LeverPane{
		st:          st,
		input:       ti,
		styles:      styles,
		completeKey: "c",
		keys:        NewLeverKeyMap(keyCfg),
		inputKeys:   NewInputKeyMap(keyCfg),
	}
	p.cancels = append(p.cancels, st.Subscribe(func(c state.Change) {
		if c == state.ChangeTasks || c == state.ChangeRestored {
			p.clampCursor()
		}
	}))
	return p
}

// Listen opens the input whenever sig is broadcast and a slot is free.
func (p *LeverPane) Listen(sig *signal.Signal) {
	p.cancels = append(p.cancels, sig.Subscribe(func() {
		p.OpenInput()
	}))
}

// Close drops the pane's subscriptions.
func (p *LeverPane) Close() {
	for _, cancel := range p.cancels {
		cancel()
	}
	p.cancels = nil
}

// SetSize sets the pane dimensions.
func (p *LeverPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = max(10, width-8)
}

// IsAdding returns whether the add input is open.
func (p *LeverPane) IsAdding() bool {
	return p.adding
}

// OpenInput starts adding a lever. It reports false when the list is full
// or the input is already open.
func (p *LeverPane) OpenInput() bool {
	if p.adding || !p.st.CanAddTask() {
		return false
	}
	p.adding = true
	p.input.Focus()
	return true
}

func (p *LeverPane) closeInput() {
	p.adding = false
	p.input.Reset()
	p.input.Blur()
}

// Selected returns the task under the cursor.
func (p *LeverPane) Selected() (state.Task, bool) {
	tasks := p.st.Tasks()
	if p.cursor < 0 || p.cursor >= len(tasks) {
		return state.Task{}, false
	}
	return tasks[p.cursor], true
}

func (p *LeverPane) clampCursor() {
	n := p.st.TaskCount()
	if p.cursor >= n {
		p.cursor = max(0, n-1)
	}
}

// Update handles messages for the lever pane.
func (p *LeverPane) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	if p.adding {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(msg, p.inputKeys.Confirm):
				title := strings.TrimSpace(p.input.Value())
				p.closeInput()
				if title != "" {
					p.st.AddTask(title)
					p.cursor = max(0, p.st.TaskCount()-1)
				}
				return nil

			case key.Matches(msg, p.inputKeys.Cancel):
				p.closeInput()
				return nil
			}
		}

		p.input, cmd = p.input.Update(msg)
		return cmd
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch {
	case key.Matches(keyMsg, p.keys.Down):
		if n := p.st.TaskCount(); n > 0 {
			p.cursor = min(p.cursor+1, n-1)
		}

	case key.Matches(keyMsg, p.keys.Up):
		p.cursor = max(p.cursor-1, 0)

	case key.Matches(keyMsg, p.keys.Add):
		if p.OpenInput() {
			return textinput.Blink
		}

	case key.Matches(keyMsg, p.keys.Toggle):
		if task, ok := p.Selected(); ok {
			p.st.ToggleTask(task.ID)
		}

	case key.Matches(keyMsg, p.keys.Delete):
		if task, ok := p.Selected(); ok {
			p.st.DeleteTask(task.ID)
		}
	}

	return nil
}

// View renders the lever pane.
func (p *LeverPane) View() string {
	var b strings.Builder
	tasks := p.st.Tasks()

	title := p.styles.PaneTitleStyle.Render("Today's Levers")
	count := p.styles.StatLabelStyle.Render(fmt.Sprintf("%d/%d", len(tasks), state.MaxTasks))
	b.WriteString(title + "  " + count)
	b.WriteString("\n")

	sepWidth := p.width - 4
	if sepWidth < 10 {
		sepWidth = 30
	}
	b.WriteString(lipgloss.NewStyle().Foreground(p.styles.ColorMuted).Render(strings.Repeat("─", sepWidth)))
	b.WriteString("\n")

	if len(tasks) == 0 && !p.adding {
		hint := fmt.Sprintf("  No lever tasks yet. Press '%s' to add one.", p.keys.Add.Help().Key)
		b.WriteString(lipgloss.NewStyle().Foreground(p.styles.ColorTextMuted).Italic(true).Render(hint))
		b.WriteString("\n")
	}

	// Layout: [space][checkbox][space][text]
	textWidth := max(5, p.width-4-5)

	for i, task := range tasks {
		checkbox := p.styles.TaskCheckboxPending
		if task.IsCompleted {
			checkbox = p.styles.TaskCheckboxDone
		}
		text := truncateText(task.Title, textWidth)

		var line string
		if i == p.cursor && !p.adding {
			line = p.styles.TaskSelectedStyle.Render(" " + checkbox + " " + text + " ")
		} else {
			styled := p.styles.TaskPendingStyle.Render(text)
			if task.IsCompleted {
				styled = p.styles.TaskDoneStyle.Render(text)
			}
			line = " " + checkbox + " " + styled
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if p.adding {
		b.WriteString("\n")
		b.WriteString(p.styles.InputPromptStyle.Render("+ ") + p.input.View())
		b.WriteString("\n")
	}

	day := p.st.CurrentDay()
	switch {
	case p.st.IsTodayCompleted():
		b.WriteString("\n")
		b.WriteString("  " + p.styles.DayDoneStyle.Render(fmt.Sprintf("✓ Day %d completed!", day)))
		b.WriteString("\n")
	case p.st.AllTasksCompleted():
		b.WriteString("\n")
		b.WriteString("  " + p.styles.CompleteDayStyle.Render(fmt.Sprintf("✓ Complete Day %d", day)))
		b.WriteString(" " + p.styles.HelpStyle.Render("press "+p.completeKey))
		b.WriteString("\n")
	}

	style := p.styles.PaneStyle.Width(p.width)
	if p.height > 0 {
		style = style.Height(p.height)
	}
	return style.Render(b.String())
}

// Stats returns how many levers are done out of the total.
func (p *LeverPane) Stats() (done, total int) {
	tasks := p.st.Tasks()
	for _, task := range tasks {
		if task.IsCompleted {
			done++
		}
	}
	return done, len(tasks)
}

// truncateText shortens text to maxLen display cells.
func truncateText(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	return runewidth.Truncate(text, maxLen, "..")
}
