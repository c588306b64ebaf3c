package ui

import (
	"fmt"
	"strings"

	"lever/internal/config"
	"lever/internal/state"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type onboardingStep int

const (
	stepWelcome onboardingStep = iota
	stepVision
	stepAntiVision
	stepStartDate

	onboardingSteps
)

// Onboarding walks a new user through their vision, anti-vision and
// Day 1, then stores the answers with State.CompleteOnboarding.
type Onboarding struct {
	st     *state.State
	styles *Styles
	width  int
	height int
	step   onboardingStep
	err    string

	vision     textinput.Model
	antiVision textinput.Model
	startDate  textinput.Model

	inputKeys InputKeyMap
}

// NewOnboarding creates the onboarding flow. Previous answers, if any, are
// offered as the starting values.
func NewOnboarding(st *state.State, styles *Styles, keyCfg *config.KeysConfig) *Onboarding {
	newInput := func(placeholder, value string, limit int) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = limit
		ti.Width = 50
		ti.SetValue(value)
		return ti
	}

	start := st.Now()
	if st.HasCompletedOnboarding() {
		start = st.StartDate()
	}

	return &Onboarding{
		st:         st,
		styles:     styles,
		vision:     newInput("e.g., Build something meaningful that helps others", st.Vision(), 280),
		antiVision: newInput("e.g., Stuck in the same place, never growing or improving", st.AntiVision(), 280),
		startDate:  newInput(state.DateKeyLayout, state.DateKey(start), len(state.DateKeyLayout)),
		inputKeys:  NewInputKeyMap(keyCfg),
	}
}

// SetSize sets the screen dimensions.
func (o *Onboarding) SetSize(width, height int) {
	o.width = width
	o.height = height
	w := min(50, max(10, width-16))
	o.vision.Width = w
	o.antiVision.Width = w
}

// Step returns the current step, starting at zero.
func (o *Onboarding) Step() int {
	return int(o.step)
}

func (o *Onboarding) input() *textinput.Model {
	switch o.step {
	case stepVision:
		return &o.vision
	case stepAntiVision:
		return &o.antiVision
	case stepStartDate:
		return &o.startDate
	}
	return nil
}

func (o *Onboarding) setStep(step onboardingStep) tea.Cmd {
	if in := o.input(); in != nil {
		in.Blur()
	}
	o.step = step
	o.err = ""
	if in := o.input(); in != nil {
		in.CursorEnd()
		in.Focus()
		return textinput.Blink
	}
	return nil
}

// Update handles keys for the current step.
func (o *Onboarding) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, o.inputKeys.Confirm):
			return o.next()
		case key.Matches(msg, o.inputKeys.Cancel):
			if o.step > stepWelcome {
				return o.setStep(o.step - 1)
			}
			return nil
		}
	}

	in := o.input()
	if in == nil {
		return nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return cmd
}

func (o *Onboarding) next() tea.Cmd {
	switch o.step {
	case stepVision:
		if strings.TrimSpace(o.vision.Value()) == "" {
			o.err = "Write a vision to continue"
			return nil
		}
	case stepAntiVision:
		if strings.TrimSpace(o.antiVision.Value()) == "" {
			o.err = "Write an anti-vision to continue"
			return nil
		}
	case stepStartDate:
		o.finish()
		return nil
	}
	return o.setStep(o.step + 1)
}

func (o *Onboarding) finish() {
	day := strings.TrimSpace(o.startDate.Value())
	start, err := state.ParseDateKey(day)
	if err != nil {
		o.err = "Enter a date as " + state.DateKeyLayout
		return
	}
	if day > o.st.TodayKey() {
		o.err = "Day 1 can't be in the future"
		return
	}
	o.startDate.Blur()
	o.st.CompleteOnboarding(strings.TrimSpace(o.vision.Value()), strings.TrimSpace(o.antiVision.Value()), start)
}

// View renders the current step centered on screen.
func (o *Onboarding) View() string {
	overlayWidth := 64
	if o.width > 0 {
		overlayWidth = min(64, max(24, o.width-4))
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(o.styles.ColorPrimary).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(o.styles.ColorPrimary)

	bodyStyle := lipgloss.NewStyle().
		Foreground(o.styles.ColorText)

	var b strings.Builder
	b.WriteString(o.renderDots())
	b.WriteString("\n\n")

	switch o.step {
	case stepWelcome:
		b.WriteString(titleStyle.Render("Welcome to Lever"))
		b.WriteString("\n\n")
		b.WriteString(bodyStyle.Render("Focus on what moves the needle.\nOne hour. Three tasks. Every day."))
		b.WriteString("\n\n")
		b.WriteString(o.styles.RenderHelp("enter", "get started"))

	case stepVision:
		b.WriteString(titleStyle.Render("What's your vision?"))
		b.WriteString("\n\n")
		b.WriteString(bodyStyle.Render("What are you working towards?\nThis will keep you motivated every day."))
		b.WriteString("\n\n")
		b.WriteString(o.vision.View())
		b.WriteString("\n\n")
		b.WriteString(o.styles.RenderHelp("enter", "continue", "esc", "back"))

	case stepAntiVision:
		b.WriteString(titleStyle.Render("What's your anti-vision?"))
		b.WriteString("\n\n")
		b.WriteString(bodyStyle.Render("What do you want to avoid?\nThis is what happens if you don't take action."))
		b.WriteString("\n\n")
		b.WriteString(o.antiVision.View())
		b.WriteString("\n\n")
		b.WriteString(o.styles.RenderHelp("enter", "continue", "esc", "back"))

	case stepStartDate:
		b.WriteString(titleStyle.Render("When did you start?"))
		b.WriteString("\n\n")
		b.WriteString(bodyStyle.Render("Set your Day 1. This tracks your 365-day journey."))
		b.WriteString("\n\n")
		b.WriteString(o.startDate.View())
		b.WriteString("\n\n")
		b.WriteString(o.styles.RenderHelp("enter", "start journey", "esc", "back"))
	}

	if o.err != "" {
		b.WriteString("\n\n")
		b.WriteString(o.styles.ErrorStyle.Render(o.err))
	}

	content := boxStyle.Render(b.String())
	if o.width <= 0 || o.height <= 0 {
		return content
	}
	return lipgloss.Place(o.width, o.height, lipgloss.Center, lipgloss.Center, content)
}

func (o *Onboarding) renderDots() string {
	dots := make([]string, onboardingSteps)
	for i := range dots {
		if onboardingStep(i) <= o.step {
			dots[i] = o.styles.StreakDoneIcon
		} else {
			dots[i] = o.styles.StatLabelStyle.Render("○")
		}
	}
	return strings.Join(dots, " ") + "  " + o.styles.StatLabelStyle.Render(fmt.Sprintf("%d/%d", o.step+1, onboardingSteps))
}
