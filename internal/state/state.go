// Package state holds lever's application state: the vision statements, the
// 365-day journey and its completed days, the day's lever tasks, and the
// focus timer.
//
// State is owned by a single loop. It takes no locks; callers that receive
// events on other goroutines (the timer ticker, for one) must hand them back
// to the owning loop before calling in. Mutations never fail: a call whose
// preconditions do not hold is silently ignored, and callers check the same
// predicates (CanAddTask, for example) before offering an action.
package state

import (
	"sort"
	"time"
)

// Saver persists the state after each mutation. Implementations swallow their
// own errors.
type Saver interface {
	Save(st *State)
}

// Change identifies which part of the state a mutation touched.
type Change int

const (
	ChangeVision Change = iota
	ChangeAntiVision
	ChangeProgress
	ChangeTasks
	ChangeTimer
	ChangeOnboarding
	ChangeRestored
)

func (c Change) String() string {
	switch c {
	case ChangeVision:
		return "vision"
	case ChangeAntiVision:
		return "anti-vision"
	case ChangeProgress:
		return "progress"
	case ChangeTasks:
		return "tasks"
	case ChangeTimer:
		return "timer"
	case ChangeOnboarding:
		return "onboarding"
	case ChangeRestored:
		return "restored"
	default:
		return "unknown"
	}
}

type observer struct {
	id int
	fn func(Change)
}

// State is the aggregate root.
type State struct {
	vision                 string
	antiVision             string
	startDate              time.Time
	completedDays          map[string]struct{}
	tasks                  []Task
	timer                  TimerState
	hasCompletedOnboarding bool

	saver     Saver
	now       func() time.Time
	observers []observer
	nextObsID int
	closed    bool
}

// New returns a fresh state that persists through saver. A nil saver keeps
// the state in memory only.
func New(saver Saver) *State {
	return &State{
		startDate:     time.Now(),
		completedDays: make(map[string]struct{}),
		tasks:         []Task{},
		timer:         NewTimerState(),
		saver:         saver,
		now:           time.Now,
	}
}

// SetNowFunc overrides the clock used for day arithmetic and timestamps.
// Passing nil resets it to time.Now.
func (s *State) SetNowFunc(now func() time.Time) {
	if now == nil {
		s.now = time.Now
		return
	}
	s.now = now
}

// Now returns the current time according to the state clock.
func (s *State) Now() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Subscribe registers fn to run after every mutation. Observers run on the
// mutating goroutine, in subscription order. The returned func unsubscribes.
func (s *State) Subscribe(fn func(Change)) (cancel func()) {
	if s.closed || fn == nil {
		return func() {}
	}
	id := s.nextObsID
	s.nextObsID++
	s.observers = append(s.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// Close tears the state down. Reads keep working; mutations and saves become
// no-ops and observers are dropped.
func (s *State) Close() {
	s.closed = true
	s.observers = nil
}

// Closed reports whether Close has been called.
func (s *State) Closed() bool {
	return s.closed
}

func (s *State) notify(c Change) {
	for _, o := range append([]observer(nil), s.observers...) {
		o.fn(c)
	}
}

// commit persists and then tells observers what changed.
func (s *State) commit(c Change) {
	s.Save()
	s.notify(c)
}

// Save persists the current state. Mutating operations already save; the
// timer driver calls this directly when a session pauses.
func (s *State) Save() {
	if s.closed || s.saver == nil {
		return
	}
	s.saver.Save(s)
}

// ============================================================================
// Reads
// ============================================================================

func (s *State) Vision() string               { return s.vision }
func (s *State) AntiVision() string           { return s.antiVision }
func (s *State) StartDate() time.Time         { return s.startDate }
func (s *State) HasCompletedOnboarding() bool { return s.hasCompletedOnboarding }
func (s *State) Timer() TimerState            { return s.timer }

// Tasks returns a copy of the task list in insertion order.
func (s *State) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// TaskCount returns the number of lever tasks.
func (s *State) TaskCount() int {
	return len(s.tasks)
}

// CanAddTask reports whether AddTask would accept a new task.
func (s *State) CanAddTask() bool {
	return len(s.tasks) < MaxTasks
}

// CompletedDays returns the completed-day keys in ascending order.
func (s *State) CompletedDays() []string {
	days := make([]string, 0, len(s.completedDays))
	for k := range s.completedDays {
		days = append(days, k)
	}
	sort.Strings(days)
	return days
}

// IsDayCompleted reports whether the local calendar day containing t was
// marked complete.
func (s *State) IsDayCompleted(t time.Time) bool {
	_, ok := s.completedDays[DateKey(t)]
	return ok
}

// TodayKey returns today's completed-day key.
func (s *State) TodayKey() string {
	return DateKey(s.Now())
}

// IsTodayCompleted reports whether today has been marked complete.
func (s *State) IsTodayCompleted() bool {
	_, ok := s.completedDays[s.TodayKey()]
	return ok
}

// AllTasksCompleted is true when there is at least one task and every task
// is done.
func (s *State) AllTasksCompleted() bool {
	if len(s.tasks) == 0 {
		return false
	}
	for _, t := range s.tasks {
		if !t.IsCompleted {
			return false
		}
	}
	return true
}

// CurrentDay is the 1-based day of the journey: 1 on the start date itself.
func (s *State) CurrentDay() int {
	return daysBetween(s.startDate, s.Now()) + 1
}

// CurrentStreak counts consecutive completed days ending today. An
// incomplete today does not break the streak; counting then starts at
// yesterday.
func (s *State) CurrentStreak() int {
	streak := 0
	check := startOfDay(s.Now())

	if !s.IsDayCompleted(check) {
		check = check.AddDate(0, 0, -1)
	}
	for s.IsDayCompleted(check) {
		streak++
		check = check.AddDate(0, 0, -1)
	}
	return streak
}

// ============================================================================
// Mutations
// ============================================================================

// MarkTodayComplete records today as a completed day.
func (s *State) MarkTodayComplete() {
	if s.closed {
		return
	}
	s.completedDays[s.TodayKey()] = struct{}{}
	s.commit(ChangeProgress)
}

// AddTask appends a lever task. Empty titles and a full list are ignored.
// Callers trim the title first.
func (s *State) AddTask(title string) {
	if s.closed || title == "" || len(s.tasks) >= MaxTasks {
		return
	}
	s.tasks = append(s.tasks, NewTask(title, s.Now()))
	s.commit(ChangeTasks)
}

// ToggleTask flips the completion flag of the task with id.
func (s *State) ToggleTask(id string) {
	if s.closed {
		return
	}
	i := indexOfTask(s.tasks, id)
	if i < 0 {
		return
	}
	s.tasks[i].IsCompleted = !s.tasks[i].IsCompleted
	s.commit(ChangeTasks)
}

// DeleteTask removes the task with id.
func (s *State) DeleteTask(id string) {
	if s.closed {
		return
	}
	i := indexOfTask(s.tasks, id)
	if i < 0 {
		return
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	s.commit(ChangeTasks)
}

// ResetTasksForNewDay clears every completion flag and leaves everything
// else about the tasks alone.
func (s *State) ResetTasksForNewDay() {
	if s.closed {
		return
	}
	for i := range s.tasks {
		s.tasks[i].IsCompleted = false
	}
	s.commit(ChangeTasks)
}

// CheckForNewDay resets task completion when the oldest task was created on
// an earlier day. It returns whether a reset happened. An empty task list
// never triggers a reset.
func (s *State) CheckForNewDay() bool {
	if s.closed || len(s.tasks) == 0 {
		return false
	}
	if IsSameDay(s.tasks[0].CreatedAt, s.Now()) {
		return false
	}
	s.ResetTasksForNewDay()
	return true
}

// UpdateVision replaces the vision text verbatim.
func (s *State) UpdateVision(text string) {
	if s.closed {
		return
	}
	s.vision = text
	s.commit(ChangeVision)
}

// UpdateAntiVision replaces the anti-vision text verbatim.
func (s *State) UpdateAntiVision(text string) {
	if s.closed {
		return
	}
	s.antiVision = text
	s.commit(ChangeAntiVision)
}

// CompleteOnboarding stores the answers from the onboarding flow. Running it
// again overwrites them; nothing here prevents that.
func (s *State) CompleteOnboarding(vision, antiVision string, startDate time.Time) {
	if s.closed {
		return
	}
	s.vision = vision
	s.antiVision = antiVision
	s.startDate = startDate
	s.hasCompletedOnboarding = true
	s.commit(ChangeOnboarding)
}

// ResetTimer replaces the focus timer with a fresh default session.
func (s *State) ResetTimer() {
	if s.closed {
		return
	}
	s.timer = NewTimerState()
	s.commit(ChangeTimer)
}

// SetTimerRunning sets the running flag without saving.
func (s *State) SetTimerRunning(running bool) {
	if s.closed {
		return
	}
	s.timer.IsRunning = running
	s.notify(ChangeTimer)
}

// AdvanceTimer adds seconds to the elapsed time without saving.
func (s *State) AdvanceTimer(seconds float64) {
	if s.closed || seconds <= 0 {
		return
	}
	s.timer.Elapsed += seconds
	s.notify(ChangeTimer)
}
