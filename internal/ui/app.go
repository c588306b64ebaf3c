// Package ui provides the lever terminal user interface.
// This file contains the main App model which composes the panes, owns the
// add-lever signal, and routes messages using the Bubble Tea architecture.
package ui

import (
	"fmt"
	"strings"
	"time"

	"lever/internal/config"
	"lever/internal/notify"
	"lever/internal/signal"
	"lever/internal/state"
	"lever/internal/storage"
	"lever/internal/timer"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// LayoutMode determines how panes are arranged based on terminal width.
type LayoutMode int

const (
	// LayoutWide shows the timer and the levers side-by-side.
	LayoutWide LayoutMode = iota
	// LayoutNarrow stacks them.
	LayoutNarrow
)

// AppConfig holds user configuration for the app behavior.
type AppConfig struct {
	Keys                  *config.KeysConfig
	ConfirmDeletions      bool
	ShowOnboarding        bool
	NarrowLayoutThreshold int

	// ForceOnboarding shows the onboarding flow even if it was completed.
	ForceOnboarding bool

	Alerts    *notify.Alerts
	Clipboard func(string) error
	Logger    *zap.SugaredLogger
}

// App is the main application model that coordinates all panes.
type App struct {
	st          *state.State
	driver      *timer.Driver
	styles      *Styles
	config      *AppConfig
	log         *zap.SugaredLogger
	header      *ProgressHeader
	visionPane  *VisionPane
	timerPane   *TimerPane
	leverPane   *LeverPane
	onboarding  *Onboarding
	helpOverlay *HelpOverlay
	newTask     *signal.Signal
	confirmDel  *confirmDeleteState
	layoutMode  LayoutMode
	showHelp    bool
	width       int
	height      int
	status      string
	statusErr   bool
	statusUntil time.Time
	quitting    bool
	today       string
	pending     []tea.Cmd
	unsubscribe func()

	// Key bindings
	keys     GlobalKeyMap
	helpKeys HelpKeyMap
}

type confirmDeleteState struct {
	title  string
	body   string
	taskID string
}

// NewApp creates the application over st. The driver must deliver its ticks
// through the program (see Run); tests pass one that never ticks.
func NewApp(st *state.State, drv *timer.Driver, styles *Styles, cfg *AppConfig) *App {
	if cfg == nil {
		cfg = &AppConfig{
			ConfirmDeletions:      true,
			ShowOnboarding:        true,
			NarrowLayoutThreshold: 80,
		}
	}
	if cfg.Keys == nil {
		cfg.Keys = &config.KeysConfig{}
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = clipboard.WriteAll
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if drv == nil {
		drv = timer.New(nil)
	}

	app := &App{
		st:          st,
		driver:      drv,
		styles:      styles,
		config:      cfg,
		log:         log.With("component", "ui"),
		header:      NewProgressHeader(st, styles),
		visionPane:  NewVisionPane(st, styles, cfg.Keys),
		timerPane:   NewTimerPaneWithKeys(st, drv, styles, cfg.Keys),
		leverPane:   NewLeverPaneWithKeys(st, styles, cfg.Keys),
		helpOverlay: NewHelpOverlay(styles),
		newTask:     &signal.Signal{},
		today:       st.TodayKey(),
		keys:        NewGlobalKeyMap(cfg.Keys),
		helpKeys:    DefaultHelpKeyMap(),
	}

	app.leverPane.Listen(app.newTask)
	app.leverPane.completeKey = app.keys.CompleteDay.Help().Key
	app.helpOverlay.SetKeys(app.keys, app.leverPane.keys, app.timerPane.keys, app.leverPane.inputKeys)
	app.unsubscribe = st.Subscribe(app.onChange)

	if cfg.ForceOnboarding || (cfg.ShowOnboarding && !st.HasCompletedOnboarding()) {
		app.onboarding = NewOnboarding(st, styles, cfg.Keys)
	}

	return app
}

// Close drops the App's subscriptions.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	a.leverPane.Close()
}

// onChange reacts to state mutations that deserve a status line.
func (a *App) onChange(c state.Change) {
	switch c {
	case state.ChangeProgress:
		a.SetStatus(fmt.Sprintf("Day %d complete. Streak: %d", a.st.CurrentDay(), a.st.CurrentStreak()), false)
	case state.ChangeOnboarding:
		if a.onboarding != nil {
			a.onboarding = nil
			a.SetStatus("Your journey starts today", false)
		}
	}
}

// focusComplete runs on the loop when a focus session reaches its duration.
func (a *App) focusComplete() {
	a.SetStatus("Focus session complete. Time for a break.", false)
	if cmd := notifyFocusCompleteCmd(a.config.Alerts, a.st.Timer().Duration); cmd != nil {
		a.pending = append(a.pending, cmd)
	}
}

func (a *App) takePending() tea.Cmd {
	cmds := a.pending
	a.pending = nil
	return tea.Batch(cmds...)
}

// Init resumes a session that was running at the last exit and starts the
// status ticker.
func (a *App) Init() tea.Cmd {
	a.driver.Resume()
	return tickCmd()
}

// Update handles all messages and routes them appropriately.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dispatchMsg:
		msg()
		return a, a.takePending()

	case exportedMsg:
		if msg.err != nil {
			a.log.Warnw("clipboard export failed", "error", msg.err)
			a.SetStatus("Export: "+msg.err.Error(), true)
		} else {
			a.SetStatus("Copied today's levers to the clipboard", false)
		}
		return a, nil

	case notifiedMsg:
		if msg.err != nil {
			a.log.Warnw("notification failed", "error", msg.err)
			a.SetStatus("Notification: "+msg.err.Error(), true)
		}
		return a, nil

	case tickMsg:
		if a.status != "" && !a.statusUntil.IsZero() && time.Now().After(a.statusUntil) {
			a.status = ""
			a.statusErr = false
			a.statusUntil = time.Time{}
		}
		a.checkDayRollover()
		return a, tickCmd()

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil

	case tea.KeyMsg:
		return a, a.handleKey(msg)
	}

	// Cursor blink and other input messages.
	switch {
	case a.onboarding != nil:
		return a, a.onboarding.Update(msg)
	case a.leverPane.IsAdding():
		return a, a.leverPane.Update(msg)
	case a.visionPane.IsEditing():
		return a, a.visionPane.Update(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if a.onboarding != nil {
		if msg.Type == tea.KeyCtrlC {
			return a.quit()
		}
		return a.onboarding.Update(msg)
	}

	if a.confirmDel != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			a.st.DeleteTask(a.confirmDel.taskID)
			a.confirmDel = nil
		case "n", "N", "esc":
			a.confirmDel = nil
			a.SetStatus("Canceled", false)
		}
		return nil
	}

	// Help overlay takes priority
	if a.showHelp {
		if key.Matches(msg, a.helpKeys.Close) {
			a.showHelp = false
		}
		return nil
	}

	if a.leverPane.IsAdding() {
		return a.leverPane.Update(msg)
	}
	if a.visionPane.IsEditing() {
		return a.visionPane.Update(msg)
	}

	if a.config.ConfirmDeletions && key.Matches(msg, a.leverPane.keys.Delete) {
		task, ok := a.leverPane.Selected()
		if !ok {
			a.SetStatus("No lever selected", true)
			return nil
		}
		a.confirmDel = &confirmDeleteState{
			title:  "Delete lever?",
			body:   truncateText(task.Title, 60),
			taskID: task.ID,
		}
		return nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a.quit()

	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
		return nil

	case key.Matches(msg, a.keys.NewTask):
		a.newTask.Broadcast()
		if a.leverPane.IsAdding() {
			return textinput.Blink
		}
		if !a.st.CanAddTask() {
			a.SetStatus(fmt.Sprintf("All %d levers are set", state.MaxTasks), false)
		}
		return nil

	case key.Matches(msg, a.keys.CompleteDay):
		a.completeDay()
		return nil

	case key.Matches(msg, a.keys.ToggleAntiVision):
		a.visionPane.ToggleAntiVision()
		return nil

	case key.Matches(msg, a.keys.EditVision):
		return a.visionPane.EditVision()

	case key.Matches(msg, a.keys.EditAntiVision):
		return a.visionPane.EditAntiVision()

	case key.Matches(msg, a.keys.Export):
		return copyExportCmd(a.config.Clipboard, storage.ExportMarkdown(a.st))

	case key.Matches(msg, a.timerPane.keys.Toggle, a.timerPane.keys.Reset):
		return a.timerPane.Update(msg)
	}

	return a.leverPane.Update(msg)
}

// completeDay marks today complete when every lever is done.
func (a *App) completeDay() {
	switch {
	case a.st.IsTodayCompleted():
		a.SetStatus(fmt.Sprintf("Day %d is already complete", a.st.CurrentDay()), false)
	case !a.st.AllTasksCompleted():
		a.SetStatus("Finish every lever to complete the day", true)
	default:
		a.st.MarkTodayComplete()
	}
}

// checkDayRollover resets lever completion when the app stays open past
// midnight.
func (a *App) checkDayRollover() {
	today := a.st.TodayKey()
	if today == a.today {
		return
	}
	a.today = today
	if a.st.CheckForNewDay() {
		a.SetStatus("New day. Levers reset.", false)
	}
}

// quit stops ticking and saves. A running session stays marked as running
// and resumes on the next launch.
func (a *App) quit() tea.Cmd {
	a.quitting = true
	a.driver.Close()
	a.st.Save()
	return tea.Quit
}

// updateLayout recalculates pane sizes based on terminal dimensions.
func (a *App) updateLayout() {
	a.helpOverlay.SetSize(a.width, a.height)
	if a.onboarding != nil {
		a.onboarding.SetSize(a.width, a.height)
	}

	totalWidth := a.width - 2
	if totalWidth < 20 {
		totalWidth = 20
	}
	a.header.SetSize(totalWidth)
	a.visionPane.SetSize(totalWidth)

	threshold := a.config.NarrowLayoutThreshold
	if threshold <= 0 {
		threshold = 80
	}

	if a.width < threshold {
		a.layoutMode = LayoutNarrow
		a.timerPane.SetSize(totalWidth, 0)
		a.leverPane.SetSize(totalWidth, 0)
		return
	}

	a.layoutMode = LayoutWide
	timerWidth := min((totalWidth*40)/100, 40)
	a.timerPane.SetSize(timerWidth, 0)
	a.leverPane.SetSize(totalWidth-timerWidth-1, 0)
}

// View renders the entire app.
func (a *App) View() string {
	if a.quitting {
		return a.renderGoodbye()
	}

	if a.onboarding != nil {
		return a.onboarding.View()
	}

	if a.confirmDel != nil {
		return a.renderConfirmDelete()
	}

	if a.showHelp {
		return a.helpOverlay.View()
	}

	var b strings.Builder

	b.WriteString(a.renderTitleBar())
	b.WriteString("\n\n")

	b.WriteString(" " + a.header.View())
	b.WriteString("\n\n")

	b.WriteString(a.visionPane.VisionView())
	b.WriteString("\n\n")

	switch a.layoutMode {
	case LayoutNarrow:
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, a.timerPane.View(), a.leverPane.View()))
	default:
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, a.timerPane.View(), " ", a.leverPane.View()))
	}
	b.WriteString("\n\n")

	b.WriteString(" " + a.visionPane.AntiVisionView())
	b.WriteString("\n\n")

	b.WriteString(a.renderHelpBar())

	return b.String()
}

func (a *App) renderConfirmDelete() string {
	overlayWidth := 60
	if a.width > 0 {
		overlayWidth = min(60, max(20, a.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(a.styles.ColorDanger).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(a.styles.ColorDanger).
		MarginBottom(1)

	bodyStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorText)

	hintStyle := lipgloss.NewStyle().
		Foreground(a.styles.ColorTextMuted)

	var b strings.Builder
	b.WriteString(titleStyle.Render(a.confirmDel.title))
	b.WriteString("\n\n")
	b.WriteString(bodyStyle.Render(a.confirmDel.body))
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("[y/enter] delete    [n/esc] cancel"))

	content := overlayStyle.Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, content)
}

// renderGoodbye shows an exit message with the day's progress.
func (a *App) renderGoodbye() string {
	done, total := a.leverPane.Stats()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  See you tomorrow!\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Day %d of %d", a.st.CurrentDay(), storage.JourneyLength)
	if streak := a.st.CurrentStreak(); streak > 0 {
		fmt.Fprintf(&b, " · streak %d", streak)
	}
	b.WriteString("\n")
	if total > 0 {
		fmt.Fprintf(&b, "  Levers: %d/%d\n", done, total)
	}
	b.WriteString("\n")

	return b.String()
}

// renderTitleBar creates the top title bar with the timer status and date.
func (a *App) renderTitleBar() string {
	title := a.styles.TitleStyle.Render(" lever ")
	timerStatus := a.timerPane.StatusLine()
	date := a.styles.DateStyle.Render(a.st.Now().Format("Mon Jan 2"))

	usedWidth := lipgloss.Width(title) + lipgloss.Width(timerStatus) + lipgloss.Width(date)
	spacerWidth := a.width - usedWidth - 2
	if spacerWidth < 2 {
		spacerWidth = 2
	}

	leftSpacer := strings.Repeat(" ", spacerWidth/2)
	rightSpacer := strings.Repeat(" ", spacerWidth-spacerWidth/2)

	return title + leftSpacer + timerStatus + rightSpacer + date
}

// renderHelpBar creates the bottom help bar with context-sensitive hints.
func (a *App) renderHelpBar() string {
	if a.status != "" {
		if a.statusErr {
			return a.styles.ErrorStyle.Render(a.status)
		}
		return a.styles.StatusStyle.Render(a.status)
	}

	if a.leverPane.IsAdding() || a.visionPane.IsEditing() {
		return a.styles.RenderHelp(
			"enter", "save",
			"esc", "cancel",
		)
	}

	timerAction := "start"
	if a.timerPane.IsRunning() {
		timerAction = "pause"
	}
	hints := []string{
		a.leverPane.keys.Add.Help().Key, "add",
		a.leverPane.keys.Toggle.Help().Key, "done",
		a.timerPane.keys.Toggle.Help().Key, timerAction,
	}
	if a.st.AllTasksCompleted() && !a.st.IsTodayCompleted() {
		hints = append(hints, a.keys.CompleteDay.Help().Key, "complete day")
	}
	hints = append(hints,
		a.keys.ToggleAntiVision.Help().Key, "anti-vision",
		a.keys.Help.Help().Key, "help",
		a.keys.Quit.Help().Key, "quit",
	)
	return a.styles.RenderHelp(hints...)
}

// SetStatus sets a status message to display to the user.
func (a *App) SetStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
	ttl := 5 * time.Second
	if isErr {
		ttl = 8 * time.Second
	}
	a.statusUntil = time.Now().Add(ttl)
}

// Run starts the Bubble Tea program over st. Timer ticks are sent through the
// program so they run on its loop.
func Run(st *state.State, styles *Styles, cfg *AppConfig) error {
	if cfg == nil {
		cfg = &AppConfig{ConfirmDeletions: true, ShowOnboarding: true, NarrowLayoutThreshold: 80}
	}

	var (
		app *App
		p   *tea.Program
	)
	drv := timer.New(st,
		timer.WithDispatcher(func(fn func()) { p.Send(dispatchMsg(fn)) }),
		timer.WithOnComplete(func() { app.focusComplete() }),
		timer.WithLogger(cfg.Logger),
	)
	app = NewApp(st, drv, styles, cfg)
	defer app.Close()
	defer drv.Close()

	p = tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
