package state

import "fmt"

// DefaultTimerDuration is the length of a focus session in seconds.
const DefaultTimerDuration = 60 * 60

// TimerState is the focus countdown. Durations are seconds so the persisted
// document stays readable.
type TimerState struct {
	Duration  float64 `json:"duration"`
	Elapsed   float64 `json:"elapsed"`
	IsRunning bool    `json:"isRunning"`
}

// NewTimerState returns a stopped, untouched session of the default length.
func NewTimerState() TimerState {
	return TimerState{Duration: DefaultTimerDuration}
}

// Remaining returns the seconds left, never negative.
func (t TimerState) Remaining() float64 {
	return max(0, t.Duration-t.Elapsed)
}

// Progress returns the completed fraction in [0, 1].
func (t TimerState) Progress() float64 {
	if t.Duration <= 0 {
		return 0
	}
	return min(1, max(0, t.Elapsed/t.Duration))
}

// IsComplete reports whether the session has run its full length.
func (t TimerState) IsComplete() bool {
	return t.Elapsed >= t.Duration
}

// FormattedRemaining renders the remaining time as MM:SS. Minutes are not
// wrapped into hours, so a fresh session shows 60:00.
func (t TimerState) FormattedRemaining() string {
	total := int(t.Remaining())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
