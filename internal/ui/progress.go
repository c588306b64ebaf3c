package ui

import (
	"fmt"
	"strings"

	"lever/internal/state"
	"lever/internal/storage"

	"github.com/charmbracelet/lipgloss"
)

// maxStreakDots is how many streak days are drawn before switching to +N.
const maxStreakDots = 7

// ProgressHeader shows the journey day on the left and the streak on the
// right.
type ProgressHeader struct {
	st     *state.State
	styles *Styles
	width  int
}

// NewProgressHeader creates a header for st.
func NewProgressHeader(st *state.State, styles *Styles) *ProgressHeader {
	return &ProgressHeader{st: st, styles: styles}
}

// SetSize sets the header width.
func (h *ProgressHeader) SetSize(width int) {
	h.width = width
}

// View renders the header on a single line.
func (h *ProgressHeader) View() string {
	left := h.styles.DayStyle.Render(fmt.Sprintf("Day %d", h.st.CurrentDay())) +
		" " + h.styles.DayOfStyle.Render(fmt.Sprintf("of %d", storage.JourneyLength))
	right := h.renderStreak(h.st.CurrentStreak())

	gap := h.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderStreak draws one dot per streak day up to maxStreakDots and counts
// the rest as +N.
func (h *ProgressHeader) renderStreak(streak int) string {
	if streak <= 0 {
		return h.styles.StreakHintStyle.Render("Start your streak!")
	}

	dots := make([]string, min(streak, maxStreakDots))
	for i := range dots {
		dots[i] = h.styles.StreakDoneIcon
	}
	out := strings.Join(dots, " ")
	if streak > maxStreakDots {
		out += " " + h.styles.StreakMoreStyle.Render(fmt.Sprintf("+%d", streak-maxStreakDots))
	}
	return out
}
