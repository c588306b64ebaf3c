package ui

import (
	"strings"
	"testing"
	"time"

	"lever/internal/config"
	"lever/internal/state"
	"lever/internal/timer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var testNow = time.Date(2025, time.March, 10, 14, 30, 0, 0, time.Local)

// setupTest prepares the test environment for deterministic rendering.
// The ASCII profile strips every color and text attribute from the output.
func setupTest(t *testing.T) {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)
}

// createTestStyles creates a default Styles instance for testing.
func createTestStyles() *Styles {
	return NewStylesFromTheme(&config.ThemeConfig{})
}

type countingSaver struct {
	saves int
}

func (c *countingSaver) Save(*state.State) { c.saves++ }

// createTestState returns an onboarded state with a fixed clock.
func createTestState(t *testing.T) (*state.State, *countingSaver) {
	t.Helper()
	saver := &countingSaver{}
	st := state.New(saver)
	st.SetNowFunc(func() time.Time { return testNow })
	st.CompleteOnboarding("Ship work that matters", "Drifting through busy days", testNow)
	saver.saves = 0
	return st, saver
}

// createTestDriver returns a driver whose ticker never fires during a test.
func createTestDriver(t *testing.T, st *state.State, opts ...timer.Option) *timer.Driver {
	t.Helper()
	opts = append([]timer.Option{timer.WithPeriod(time.Hour)}, opts...)
	drv := timer.New(st, opts...)
	t.Cleanup(drv.Close)
	return drv
}

// createTestApp builds an App over st sized to 100x40. Focus completion is
// wired the same way Run wires it.
func createTestApp(t *testing.T, st *state.State, cfg *AppConfig) *App {
	t.Helper()
	var app *App
	drv := createTestDriver(t, st, timer.WithOnComplete(func() { app.focusComplete() }))
	if cfg == nil {
		cfg = &AppConfig{ConfirmDeletions: true, ShowOnboarding: true, NarrowLayoutThreshold: 80}
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = func(string) error { return nil }
	}
	app = NewApp(st, drv, createTestStyles(), cfg)
	t.Cleanup(app.Close)
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return app
}

func addTasks(st *state.State, titles ...string) {
	for _, title := range titles {
		st.AddTask(title)
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keySpace = keyRunes(" ")
	keyCtrlN = tea.KeyMsg{Type: tea.KeyCtrlN}
)

// typeText sends s one rune at a time.
func typeText(update func(tea.Msg) tea.Cmd, s string) {
	for _, r := range s {
		update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// appUpdate adapts App.Update for typeText.
func appUpdate(a *App) func(tea.Msg) tea.Cmd {
	return func(msg tea.Msg) tea.Cmd {
		_, cmd := a.Update(msg)
		return cmd
	}
}

func assertContains(t *testing.T, output string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(output, w) {
			t.Errorf("output missing %q\n\nGot:\n%s", w, output)
		}
	}
}

func assertNotContains(t *testing.T, output string, unwanted ...string) {
	t.Helper()
	for _, u := range unwanted {
		if strings.Contains(output, u) {
			t.Errorf("output should not contain %q\n\nGot:\n%s", u, output)
		}
	}
}
