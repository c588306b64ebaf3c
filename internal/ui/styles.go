package ui

import (
	"lever/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds all application styles, initialized with theme configuration.
type Styles struct {
	// Colors
	ColorPrimary   lipgloss.Color
	ColorSecondary lipgloss.Color
	ColorMuted     lipgloss.Color
	ColorDanger    lipgloss.Color
	ColorWarning   lipgloss.Color
	ColorSuccess   lipgloss.Color
	ColorAccent    lipgloss.Color
	ColorBg        lipgloss.Color
	ColorBgLight   lipgloss.Color
	ColorText      lipgloss.Color
	ColorTextMuted lipgloss.Color

	// Component styles
	TitleStyle     lipgloss.Style
	DateStyle      lipgloss.Style
	PaneStyle      lipgloss.Style
	PaneTitleStyle lipgloss.Style

	DayStyle        lipgloss.Style
	DayOfStyle      lipgloss.Style
	StreakDoneIcon  string
	StreakMoreStyle lipgloss.Style
	StreakHintStyle lipgloss.Style

	VisionStyle     lipgloss.Style
	AntiVisionStyle lipgloss.Style

	TaskDoneStyle       lipgloss.Style
	TaskPendingStyle    lipgloss.Style
	TaskSelectedStyle   lipgloss.Style
	TaskCheckboxDone    string
	TaskCheckboxPending string

	CompleteDayStyle lipgloss.Style
	DayDoneStyle     lipgloss.Style

	TimerRunningStyle  lipgloss.Style
	TimerStoppedStyle  lipgloss.Style
	TimerCompleteStyle lipgloss.Style
	ProgressFilled     lipgloss.Style
	ProgressEmpty      lipgloss.Style

	HelpStyle    lipgloss.Style
	HelpKeyStyle lipgloss.Style

	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style

	InputPromptStyle lipgloss.Style
	InputTextStyle   lipgloss.Style

	StatLabelStyle lipgloss.Style
	StatValueStyle lipgloss.Style
}

// NewStyles creates a new Styles instance from the given config.
// If a theme color is empty, it uses the appropriate default.
func NewStyles(cfg *config.Config) *Styles {
	return NewStylesFromTheme(&cfg.Theme)
}

// NewStylesFromTheme creates a new Styles instance from a ThemeConfig.
// If a theme color is empty, it uses the appropriate default.
func NewStylesFromTheme(theme *config.ThemeConfig) *Styles {
	s := &Styles{}

	s.ColorPrimary = colorOrDefault(theme.Primary, "#F59E0B")
	s.ColorSecondary = colorOrDefault(theme.Accent, "#10B981")
	s.ColorMuted = colorOrDefault(theme.Muted, "#6B7280")

	// Fixed semantic colors (not configurable from theme)
	s.ColorDanger = lipgloss.Color("#EF4444")
	s.ColorWarning = lipgloss.Color("#F59E0B")
	s.ColorSuccess = lipgloss.Color("#10B981")
	s.ColorAccent = colorOrDefault(theme.Accent, "#10B981")

	s.ColorBg = colorOrDefault(theme.Background, "#1F2937")
	s.ColorBgLight = lipgloss.Color("#374151")
	s.ColorText = colorOrDefault(theme.Text, "#F9FAFB")
	s.ColorTextMuted = lipgloss.Color("#9CA3AF")

	s.initComponentStyles()

	return s
}

// colorOrDefault returns the lipgloss.Color from hex string, or default if empty.
func colorOrDefault(hex, defaultHex string) lipgloss.Color {
	if hex != "" {
		return lipgloss.Color(hex)
	}
	return lipgloss.Color(defaultHex)
}

func (s *Styles) initComponentStyles() {
	s.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorBg).
		Background(s.ColorPrimary).
		Padding(0, 1)

	s.DateStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.PaneStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorMuted).
		Padding(0, 1)

	s.PaneTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorPrimary)

	// Progress header
	s.DayStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorText)

	s.DayOfStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.StreakDoneIcon = lipgloss.NewStyle().Foreground(s.ColorPrimary).Render("●")

	s.StreakMoreStyle = lipgloss.NewStyle().
		Foreground(s.ColorPrimary).
		Bold(true)

	s.StreakHintStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted).
		Italic(true)

	// Vision
	s.VisionStyle = lipgloss.NewStyle().
		Foreground(s.ColorText).
		Italic(true)

	s.AntiVisionStyle = lipgloss.NewStyle().
		Foreground(s.ColorDanger)

	// Levers
	s.TaskDoneStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted).
		Strikethrough(true)

	s.TaskPendingStyle = lipgloss.NewStyle().
		Foreground(s.ColorText)

	s.TaskSelectedStyle = lipgloss.NewStyle().
		Background(s.ColorBgLight).
		Foreground(s.ColorText).
		Bold(true)

	s.TaskCheckboxDone = lipgloss.NewStyle().Foreground(s.ColorPrimary).Render("[✓]")
	s.TaskCheckboxPending = lipgloss.NewStyle().Foreground(s.ColorMuted).Render("[ ]")

	s.CompleteDayStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorBg).
		Background(s.ColorPrimary).
		Padding(0, 1)

	s.DayDoneStyle = lipgloss.NewStyle().
		Foreground(s.ColorSuccess)

	// Timer
	s.TimerRunningStyle = lipgloss.NewStyle().
		Foreground(s.ColorPrimary).
		Bold(true)

	s.TimerStoppedStyle = lipgloss.NewStyle().
		Foreground(s.ColorText).
		Bold(true)

	s.TimerCompleteStyle = lipgloss.NewStyle().
		Foreground(s.ColorSuccess).
		Bold(true)

	s.ProgressFilled = lipgloss.NewStyle().
		Foreground(s.ColorPrimary)

	s.ProgressEmpty = lipgloss.NewStyle().
		Foreground(s.ColorBgLight)

	// Help bar
	s.HelpStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.HelpKeyStyle = lipgloss.NewStyle().
		Foreground(s.ColorAccent).
		Bold(true)

	// Status messages
	s.StatusStyle = lipgloss.NewStyle().
		Foreground(s.ColorSuccess).
		Italic(true)

	s.ErrorStyle = lipgloss.NewStyle().
		Foreground(s.ColorDanger).
		Bold(true)

	// Input
	s.InputPromptStyle = lipgloss.NewStyle().
		Foreground(s.ColorPrimary).
		Bold(true)

	s.InputTextStyle = lipgloss.NewStyle().
		Foreground(s.ColorText)

	s.StatLabelStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.StatValueStyle = lipgloss.NewStyle().
		Foreground(s.ColorText).
		Bold(true)
}

// RenderHelp renders help text with key bindings using the given styles.
func (s *Styles) RenderHelp(keys ...string) string {
	var result string
	for i := 0; i+1 < len(keys); i += 2 {
		if i > 0 {
			result += "  "
		}
		result += s.HelpKeyStyle.Render("["+keys[i]+"]") + " " + s.HelpStyle.Render(keys[i+1])
	}
	return result
}
