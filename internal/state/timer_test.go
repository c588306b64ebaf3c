package state

import "testing"

func TestTimerStateDerived(t *testing.T) {
	tests := []struct {
		name      string
		timer     TimerState
		remaining float64
		progress  float64
		complete  bool
		formatted string
	}{
		{"fresh", NewTimerState(), 3600, 0, false, "60:00"},
		{"halfway", TimerState{Duration: 3600, Elapsed: 1800}, 1800, 0.5, false, "30:00"},
		{"odd seconds", TimerState{Duration: 90, Elapsed: 1}, 89, 1.0 / 90, false, "01:29"},
		{"done", TimerState{Duration: 60, Elapsed: 60}, 0, 1, true, "00:00"},
		{"overrun", TimerState{Duration: 60, Elapsed: 75}, 0, 1, true, "00:00"},
		{"zero duration", TimerState{}, 0, 0, true, "00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.timer.Remaining(); got != tt.remaining {
				t.Errorf("Remaining() = %v, want %v", got, tt.remaining)
			}
			if got := tt.timer.Progress(); got != tt.progress {
				t.Errorf("Progress() = %v, want %v", got, tt.progress)
			}
			if got := tt.timer.IsComplete(); got != tt.complete {
				t.Errorf("IsComplete() = %v, want %v", got, tt.complete)
			}
			if got := tt.timer.FormattedRemaining(); got != tt.formatted {
				t.Errorf("FormattedRemaining() = %q, want %q", got, tt.formatted)
			}
		})
	}
}

func TestNewTimerState(t *testing.T) {
	ts := NewTimerState()
	if ts.Duration != DefaultTimerDuration || ts.Elapsed != 0 || ts.IsRunning {
		t.Errorf("NewTimerState() = %+v", ts)
	}
}
