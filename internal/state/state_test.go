package state

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

type countingSaver struct {
	saves int
}

func (c *countingSaver) Save(*State) { c.saves++ }

var testNow = time.Date(2025, time.March, 10, 14, 30, 0, 0, time.Local)

// newTestState returns a state with a fixed clock and a counting saver.
func newTestState(t *testing.T) (*State, *countingSaver) {
	t.Helper()
	saver := &countingSaver{}
	st := New(saver)
	st.SetNowFunc(func() time.Time { return testNow })
	return st, saver
}

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

// =============================================================================
// Task Tests
// =============================================================================

func TestAddTask(t *testing.T) {
	st, saver := newTestState(t)

	st.AddTask("Write the proposal")

	tasks := st.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("len(tasks) = %d, want 1", len(tasks))
	}
	task := tasks[0]
	if task.Title != "Write the proposal" {
		t.Errorf("task.Title = %q, want %q", task.Title, "Write the proposal")
	}
	if task.IsCompleted {
		t.Error("task.IsCompleted = true, want false")
	}
	if task.ID == "" {
		t.Error("task.ID is empty")
	}
	if !task.CreatedAt.Equal(testNow) {
		t.Errorf("task.CreatedAt = %v, want %v", task.CreatedAt, testNow)
	}
	if saver.saves != 1 {
		t.Errorf("saves = %d, want 1", saver.saves)
	}
}

func TestAddTaskCapacity(t *testing.T) {
	st, saver := newTestState(t)

	for i := 0; i < MaxTasks; i++ {
		st.AddTask("task")
	}
	if st.CanAddTask() {
		t.Fatal("CanAddTask() = true at capacity")
	}
	before := st.Tasks()

	st.AddTask("one too many")

	if got := st.Tasks(); !reflect.DeepEqual(got, before) {
		t.Errorf("tasks changed at capacity: got %v, want %v", got, before)
	}
	if saver.saves != MaxTasks {
		t.Errorf("saves = %d, want %d", saver.saves, MaxTasks)
	}
}

func TestAddTaskUniqueIDs(t *testing.T) {
	st, _ := newTestState(t)
	st.AddTask("a")
	st.AddTask("b")
	st.AddTask("c")

	seen := make(map[string]bool)
	for _, task := range st.Tasks() {
		if seen[task.ID] {
			t.Errorf("duplicate id %q", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestAddTaskRejectsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		title string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"tabs and newlines", "\t\n "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, saver := newTestState(t)

			// Callers trim before calling in.
			st.AddTask(strings.TrimSpace(tt.title))

			if st.TaskCount() != 0 {
				t.Errorf("TaskCount() = %d, want 0", st.TaskCount())
			}
			if saver.saves != 0 {
				t.Errorf("saves = %d, want 0", saver.saves)
			}
		})
	}
}

func TestToggleTask(t *testing.T) {
	st, _ := newTestState(t)
	st.AddTask("a")
	id := st.Tasks()[0].ID

	st.ToggleTask(id)
	if !st.Tasks()[0].IsCompleted {
		t.Fatal("IsCompleted = false after first toggle")
	}

	st.ToggleTask(id)
	if st.Tasks()[0].IsCompleted {
		t.Error("IsCompleted = true after second toggle")
	}
}

func TestToggleTaskUnknownID(t *testing.T) {
	st, saver := newTestState(t)
	st.AddTask("a")
	before := st.Tasks()
	saves := saver.saves

	st.ToggleTask("no-such-id")

	if got := st.Tasks(); !reflect.DeepEqual(got, before) {
		t.Errorf("tasks changed: got %v, want %v", got, before)
	}
	if saver.saves != saves {
		t.Errorf("saves = %d, want %d", saver.saves, saves)
	}
}

func TestDeleteTask(t *testing.T) {
	st, _ := newTestState(t)
	st.AddTask("a")
	st.AddTask("b")
	st.AddTask("c")
	tasks := st.Tasks()

	st.DeleteTask(tasks[1].ID)

	got := st.Tasks()
	if len(got) != 2 {
		t.Fatalf("len(tasks) = %d, want 2", len(got))
	}
	if got[0].ID != tasks[0].ID || got[1].ID != tasks[2].ID {
		t.Errorf("remaining order = [%s %s], want [%s %s]", got[0].Title, got[1].Title, "a", "c")
	}
	if !st.CanAddTask() {
		t.Error("CanAddTask() = false after delete")
	}
}

func TestDeleteTaskUnknownID(t *testing.T) {
	st, saver := newTestState(t)
	st.AddTask("a")
	saves := saver.saves

	st.DeleteTask("missing")

	if st.TaskCount() != 1 {
		t.Errorf("TaskCount() = %d, want 1", st.TaskCount())
	}
	if saver.saves != saves {
		t.Errorf("saves = %d, want %d", saver.saves, saves)
	}
}

func TestResetTasksForNewDay(t *testing.T) {
	st, _ := newTestState(t)
	st.AddTask("a")
	st.AddTask("b")
	for _, task := range st.Tasks() {
		st.ToggleTask(task.ID)
	}
	before := st.Tasks()

	st.ResetTasksForNewDay()

	after := st.Tasks()
	if len(after) != len(before) {
		t.Fatalf("len(tasks) = %d, want %d", len(after), len(before))
	}
	for i := range after {
		if after[i].IsCompleted {
			t.Errorf("task %d still completed", i)
		}
		if after[i].ID != before[i].ID || after[i].Title != before[i].Title || !after[i].CreatedAt.Equal(before[i].CreatedAt) {
			t.Errorf("task %d identity changed: got %+v, want %+v", i, after[i], before[i])
		}
	}
}

func TestAllTasksCompleted(t *testing.T) {
	st, _ := newTestState(t)
	if st.AllTasksCompleted() {
		t.Error("AllTasksCompleted() = true with no tasks")
	}

	st.AddTask("a")
	st.AddTask("b")
	tasks := st.Tasks()
	st.ToggleTask(tasks[0].ID)
	if st.AllTasksCompleted() {
		t.Error("AllTasksCompleted() = true with one task open")
	}

	st.ToggleTask(tasks[1].ID)
	if !st.AllTasksCompleted() {
		t.Error("AllTasksCompleted() = false with every task done")
	}
}

func TestCheckForNewDay(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		st, saver := newTestState(t)
		if st.CheckForNewDay() {
			t.Error("CheckForNewDay() = true with no tasks")
		}
		if saver.saves != 0 {
			t.Errorf("saves = %d, want 0", saver.saves)
		}
	})

	t.Run("same day", func(t *testing.T) {
		st, _ := newTestState(t)
		st.AddTask("a")
		st.ToggleTask(st.Tasks()[0].ID)
		if st.CheckForNewDay() {
			t.Error("CheckForNewDay() = true on creation day")
		}
		if !st.Tasks()[0].IsCompleted {
			t.Error("completion cleared on creation day")
		}
	})

	t.Run("next day", func(t *testing.T) {
		st, _ := newTestState(t)
		st.AddTask("a")
		st.ToggleTask(st.Tasks()[0].ID)

		st.SetNowFunc(func() time.Time { return testNow.AddDate(0, 0, 1) })
		if !st.CheckForNewDay() {
			t.Error("CheckForNewDay() = false the next day")
		}
		if st.Tasks()[0].IsCompleted {
			t.Error("completion not cleared the next day")
		}
	})
}

// =============================================================================
// Progress Tests
// =============================================================================

func TestMarkTodayComplete(t *testing.T) {
	st, saver := newTestState(t)

	st.MarkTodayComplete()
	st.MarkTodayComplete()

	if !st.IsTodayCompleted() {
		t.Error("IsTodayCompleted() = false")
	}
	if got := st.CompletedDays(); !reflect.DeepEqual(got, []string{"2025-03-10"}) {
		t.Errorf("CompletedDays() = %v, want [2025-03-10]", got)
	}
	if saver.saves != 2 {
		t.Errorf("saves = %d, want 2", saver.saves)
	}
}

func TestCurrentStreak(t *testing.T) {
	tests := []struct {
		name string
		days []int // days ago that were completed
		want int
	}{
		{"none", nil, 0},
		{"today only", []int{0}, 1},
		{"yesterday and day before", []int{1, 2}, 2},
		{"today yesterday and day before", []int{0, 1, 2}, 3},
		{"gap at day before", []int{0, 1, 3}, 2},
		{"only older days", []int{2, 3}, 0},
		{"week", []int{0, 1, 2, 3, 4, 5, 6}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Snapshot{StartDate: daysAgo(30)}
			for _, d := range tt.days {
				snap.CompletedDays = append(snap.CompletedDays, DateKey(daysAgo(d)))
			}
			st, _ := newTestState(t)
			st.Restore(snap)

			if got := st.CurrentStreak(); got != tt.want {
				t.Errorf("CurrentStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCurrentDay(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		want  int
	}{
		{"start today", testNow, 1},
		{"start earlier today", time.Date(2025, time.March, 10, 0, 1, 0, 0, time.Local), 1},
		{"start late yesterday", time.Date(2025, time.March, 9, 23, 59, 0, 0, time.Local), 2},
		{"start five days ago", daysAgo(5), 6},
		{"across month boundary", time.Date(2025, time.February, 28, 9, 0, 0, 0, time.Local), 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, _ := newTestState(t)
			st.CompleteOnboarding("v", "a", tt.start)

			if got := st.CurrentDay(); got != tt.want {
				t.Errorf("CurrentDay() = %d, want %d", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Vision / Onboarding Tests
// =============================================================================

func TestUpdateVision(t *testing.T) {
	st, saver := newTestState(t)

	st.UpdateVision("  Ship the book  ")
	st.UpdateAntiVision("Drift")

	if st.Vision() != "  Ship the book  " {
		t.Errorf("Vision() = %q, want verbatim text", st.Vision())
	}
	if st.AntiVision() != "Drift" {
		t.Errorf("AntiVision() = %q, want %q", st.AntiVision(), "Drift")
	}
	if saver.saves != 2 {
		t.Errorf("saves = %d, want 2", saver.saves)
	}
}

func TestCompleteOnboarding(t *testing.T) {
	st, _ := newTestState(t)
	if st.HasCompletedOnboarding() {
		t.Fatal("HasCompletedOnboarding() = true on a fresh state")
	}

	start := daysAgo(2)
	st.CompleteOnboarding("vision", "anti", start)

	if !st.HasCompletedOnboarding() {
		t.Error("HasCompletedOnboarding() = false")
	}
	if !st.StartDate().Equal(start) {
		t.Errorf("StartDate() = %v, want %v", st.StartDate(), start)
	}

	// A second run overwrites the answers and keeps the flag.
	st.CompleteOnboarding("again", "", testNow)
	if st.Vision() != "again" || !st.HasCompletedOnboarding() {
		t.Errorf("repeat onboarding: vision=%q onboarded=%v", st.Vision(), st.HasCompletedOnboarding())
	}
}

// =============================================================================
// Timer Hook Tests
// =============================================================================

func TestTimerHooks(t *testing.T) {
	st, saver := newTestState(t)

	st.SetTimerRunning(true)
	st.AdvanceTimer(1)
	st.AdvanceTimer(1)
	st.AdvanceTimer(-5)

	timer := st.Timer()
	if !timer.IsRunning {
		t.Error("IsRunning = false")
	}
	if timer.Elapsed != 2 {
		t.Errorf("Elapsed = %v, want 2", timer.Elapsed)
	}
	if saver.saves != 0 {
		t.Errorf("saves = %d, want 0 (hooks do not persist)", saver.saves)
	}

	st.ResetTimer()
	if st.Timer() != NewTimerState() {
		t.Errorf("Timer() = %+v, want default", st.Timer())
	}
	if saver.saves != 1 {
		t.Errorf("saves = %d, want 1", saver.saves)
	}
}

// =============================================================================
// Observer / Teardown Tests
// =============================================================================

func TestSubscribe(t *testing.T) {
	st, _ := newTestState(t)

	var got []Change
	cancel := st.Subscribe(func(c Change) { got = append(got, c) })

	st.AddTask("a")
	st.UpdateVision("v")
	st.MarkTodayComplete()
	st.ToggleTask("missing")

	want := []Change{ChangeTasks, ChangeVision, ChangeProgress}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("changes = %v, want %v", got, want)
	}

	cancel()
	st.UpdateAntiVision("x")
	if len(got) != len(want) {
		t.Errorf("observer ran after cancel: %v", got)
	}
}

func TestSubscribeSavesBeforeNotify(t *testing.T) {
	st, saver := newTestState(t)

	var savesSeen int
	st.Subscribe(func(Change) { savesSeen = saver.saves })
	st.AddTask("a")

	if savesSeen != 1 {
		t.Errorf("observer saw %d saves, want 1", savesSeen)
	}
}

func TestClose(t *testing.T) {
	st, saver := newTestState(t)
	st.AddTask("a")

	notified := false
	st.Subscribe(func(Change) { notified = true })
	st.Close()

	st.AddTask("b")
	st.UpdateVision("v")
	st.MarkTodayComplete()
	st.SetTimerRunning(true)
	st.Save()

	if st.TaskCount() != 1 {
		t.Errorf("TaskCount() = %d, want 1", st.TaskCount())
	}
	if st.Vision() != "" || st.IsTodayCompleted() || st.Timer().IsRunning {
		t.Error("state mutated after Close")
	}
	if saver.saves != 1 {
		t.Errorf("saves = %d, want 1", saver.saves)
	}
	if notified {
		t.Error("observer ran after Close")
	}
	if !st.Closed() {
		t.Error("Closed() = false")
	}
}

func TestNilSaver(t *testing.T) {
	st := New(nil)
	st.AddTask("a")
	st.Save()
	if st.TaskCount() != 1 {
		t.Errorf("TaskCount() = %d, want 1", st.TaskCount())
	}
}

// =============================================================================
// Snapshot Tests
// =============================================================================

func TestSnapshotRestore(t *testing.T) {
	st, _ := newTestState(t)
	st.CompleteOnboarding("Become fluent", "Stay stuck", daysAgo(3))
	st.AddTask("Read a chapter")
	st.AddTask("日本語の練習")
	st.ToggleTask(st.Tasks()[0].ID)
	st.MarkTodayComplete()
	st.SetTimerRunning(true)
	st.AdvanceTimer(42)

	snap := st.Snapshot()

	other, saver := newTestState(t)
	dropped := other.Restore(snap)

	if len(dropped) != 0 {
		t.Errorf("dropped = %v, want none", dropped)
	}
	if !reflect.DeepEqual(other.Snapshot(), snap) {
		t.Errorf("restored snapshot = %+v, want %+v", other.Snapshot(), snap)
	}
	if saver.saves != 0 {
		t.Errorf("Restore saved %d times, want 0", saver.saves)
	}
}

func TestSnapshotEmptyCollections(t *testing.T) {
	st, _ := newTestState(t)
	snap := st.Snapshot()

	if snap.CompletedDays == nil || snap.Tasks == nil {
		t.Errorf("snapshot has nil slices: days=%v tasks=%v", snap.CompletedDays, snap.Tasks)
	}
}

func TestRestoreDropsInvalidDays(t *testing.T) {
	st, _ := newTestState(t)

	dropped := st.Restore(Snapshot{
		CompletedDays: []string{"2025-03-09", "yesterday", "2025-02-30", "2025-3-8", "2025-03-10"},
	})

	wantDropped := []string{"yesterday", "2025-02-30", "2025-3-8"}
	if !reflect.DeepEqual(dropped, wantDropped) {
		t.Errorf("dropped = %v, want %v", dropped, wantDropped)
	}
	if got := st.CompletedDays(); !reflect.DeepEqual(got, []string{"2025-03-09", "2025-03-10"}) {
		t.Errorf("CompletedDays() = %v", got)
	}
}

func TestRestoreTruncatesTasks(t *testing.T) {
	st, _ := newTestState(t)
	var tasks []Task
	for i := 0; i < MaxTasks+2; i++ {
		tasks = append(tasks, NewTask("t", testNow))
	}

	st.Restore(Snapshot{Tasks: tasks})

	if st.TaskCount() != MaxTasks {
		t.Errorf("TaskCount() = %d, want %d", st.TaskCount(), MaxTasks)
	}
}

func TestChangeString(t *testing.T) {
	if ChangeTasks.String() != "tasks" {
		t.Errorf("ChangeTasks.String() = %q", ChangeTasks.String())
	}
	if Change(99).String() != "unknown" {
		t.Errorf("Change(99).String() = %q", Change(99).String())
	}
}
