package state

import "time"

// Snapshot is the persisted form of State. Field names match the document
// written by earlier versions of the app.
type Snapshot struct {
	Vision                 string     `json:"vision"`
	AntiVision             string     `json:"antiVision"`
	StartDate              time.Time  `json:"startDate"`
	CompletedDays          []string   `json:"completedDays"`
	Tasks                  []Task     `json:"tasks"`
	TimerState             TimerState `json:"timerState"`
	HasCompletedOnboarding bool       `json:"hasCompletedOnboarding"`
}

// Snapshot captures the current state. Slices are never nil so they encode
// as empty arrays.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Vision:                 s.vision,
		AntiVision:             s.antiVision,
		StartDate:              s.startDate,
		CompletedDays:          s.CompletedDays(),
		Tasks:                  s.Tasks(),
		TimerState:             s.timer,
		HasCompletedOnboarding: s.hasCompletedOnboarding,
	}
}

// Restore replaces the state with snap without saving. Completed-day keys
// that are not valid dates are dropped and returned. At most MaxTasks tasks
// are kept.
func (s *State) Restore(snap Snapshot) (dropped []string) {
	if s.closed {
		return nil
	}

	days := make(map[string]struct{}, len(snap.CompletedDays))
	for _, key := range snap.CompletedDays {
		if !IsValidDateKey(key) {
			dropped = append(dropped, key)
			continue
		}
		days[key] = struct{}{}
	}

	tasks := snap.Tasks
	if len(tasks) > MaxTasks {
		tasks = tasks[:MaxTasks]
	}

	s.vision = snap.Vision
	s.antiVision = snap.AntiVision
	s.startDate = snap.StartDate
	s.completedDays = days
	s.tasks = append([]Task{}, tasks...)
	s.timer = snap.TimerState
	s.hasCompletedOnboarding = snap.HasCompletedOnboarding

	s.notify(ChangeRestored)
	return dropped
}
