package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"lever/internal/config"
	"lever/internal/state"
	"lever/internal/storage"
)

// newFlagSet returns a flag set that reports errors instead of exiting and
// prints usage to env.out.
func newFlagSet(env *cliEnv, name, usage string) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")
	fs.Usage = func() {
		fmt.Fprint(env.out, usage)
	}
	return fs, helpFlag
}

// parseFlags parses args and handles -h. It returns flag.ErrHelp when help
// was shown.
func parseFlags(fs *flag.FlagSet, helpFlag *bool, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.Usage()
		}
		return err
	}
	if *helpFlag {
		fs.Usage()
		return flag.ErrHelp
	}
	return nil
}

const statusHelpText = `lever status - Show today's progress

USAGE:
    lever status
`

func runStatus(env *cliEnv, args []string) error {
	fs, helpFlag := newFlagSet(env, "status", statusHelpText)
	if err := parseFlags(fs, helpFlag, args); err != nil {
		return err
	}

	st := env.st
	if !st.HasCompletedOnboarding() {
		fmt.Fprintln(env.out, "Not set up yet. Run 'lever onboard' or start 'lever'.")
		return nil
	}

	fmt.Fprintf(env.out, "Day %d of %d", st.CurrentDay(), storage.JourneyLength)
	if streak := st.CurrentStreak(); streak > 0 {
		fmt.Fprintf(env.out, " · streak %d", streak)
	}
	if st.IsTodayCompleted() {
		fmt.Fprint(env.out, " · today complete")
	}
	fmt.Fprintln(env.out)

	fmt.Fprintf(env.out, "Vision: %s\n\n", st.Vision())

	tasks := st.Tasks()
	fmt.Fprintf(env.out, "Levers (%d/%d):\n", len(tasks), state.MaxTasks)
	if len(tasks) == 0 {
		fmt.Fprintln(env.out, "  none yet, add one with 'lever add TITLE'")
	}
	for i, task := range tasks {
		mark := " "
		if task.IsCompleted {
			mark = "x"
		}
		fmt.Fprintf(env.out, "  %d. [%s] %s\n", i+1, mark, task.Title)
	}

	ts := st.Timer()
	timerStatus := "idle"
	switch {
	case ts.IsComplete():
		timerStatus = "complete"
	case ts.IsRunning:
		timerStatus = "running"
	case ts.Elapsed > 0:
		timerStatus = "paused"
	}
	fmt.Fprintf(env.out, "\nFocus: %s remaining (%s)\n", ts.FormattedRemaining(), timerStatus)
	return nil
}

const addHelpText = `lever add - Add a lever task

USAGE:
    lever add TITLE...

    Words are joined with spaces. At most 3 levers a day.
`

func runAdd(env *cliEnv, args []string) error {
	fs, helpFlag := newFlagSet(env, "add", addHelpText)
	if err := parseFlags(fs, helpFlag, args); err != nil {
		return err
	}

	title := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if title == "" {
		return fmt.Errorf("a title is required")
	}
	if !env.st.CanAddTask() {
		return fmt.Errorf("all %d levers are set", state.MaxTasks)
	}

	env.st.AddTask(title)
	fmt.Fprintf(env.out, "Added lever %d: %s\n", env.st.TaskCount(), title)
	return nil
}

const toggleHelpText = `lever toggle - Mark a lever done or not done

USAGE:
    lever toggle N

    N is the lever's number in 'lever status' or a prefix of its id.
`

func runToggle(env *cliEnv, args []string) error {
	fs, helpFlag := newFlagSet(env, "toggle", toggleHelpText)
	if err := parseFlags(fs, helpFlag, args); err != nil {
		return err
	}

	task, err := findTask(env.st, fs.Args())
	if err != nil {
		return err
	}
	env.st.ToggleTask(task.ID)

	mark := "done"
	if task.IsCompleted {
		mark = "not done"
	}
	fmt.Fprintf(env.out, "%s: %s\n", task.Title, mark)
	if env.st.AllTasksCompleted() && !env.st.IsTodayCompleted() {
		fmt.Fprintln(env.out, "Every lever is done. Run 'lever done' to complete the day.")
	}
	return nil
}

const deleteHelpText = `lever delete - Delete a lever

USAGE:
    lever delete N

    N is the lever's number in 'lever status' or a prefix of its id.
`

func runDelete(env *cliEnv, args []string) error {
	fs, helpFlag := newFlagSet(env, "delete", deleteHelpText)
	if err := parseFlags(fs, helpFlag, args); err != nil {
		return err
	}

	task, err := findTask(env.st, fs.Args())
	if err != nil {
		return err
	}
	env.st.DeleteTask(task.ID)
	fmt.Fprintf(env.out, "Deleted: %s\n", task.Title)
	return nil
}

// findTask resolves a 1-based position or a unique id prefix.
func findTask(st *state.State, args []string) (state.Task, error) {
	if len(args) != 1 {
		return state.Task{}, fmt.Errorf("expected one lever number")
	}
	ref := args[0]
	tasks := st.Tasks()

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(tasks) {
			return state.Task{}, fmt.Errorf("no lever %d (have %d)", n, len(tasks))
		}
		return tasks[n-1], nil
	}

	var found []state.Task
	for _, task := range tasks {
		if strings.HasPrefix(task.ID, ref) {
			found = append(found, task)
		}
	}
	switch len(found) {
	case 0:
		return state.Task{}, fmt.Errorf("no lever matches %q", ref)
	case 1:
		return found[0], nil
	default:
		return state.Task{}, fmt.Errorf("%q matches %d levers", ref, len(found))
	}
}

const doneHelpText = `lever done - Complete the day

USAGE:
    lever done

    Every lever must be done first.
`

func runDone(env *cliEnv, args []string) error {
	fs, helpFlag := newFlagSet(env, "done", doneHelpText)
	if err := parseFlags(fs, helpFlag, args); err != nil {
		return err
	}

	st := env.st
	if st.IsTodayCompleted() {
		fmt.Fprintf(env.out, "Day %d is already complete\n", st.CurrentDay())
		return nil
	}
	if !st.AllTasksCompleted() {
		done := 0
		for _, task := range st.Tasks() {
			if task.IsCompleted {
				done++
			}
		}
		return fmt.Errorf("finish every lever first (%d/%d done)", done, st.TaskCount())
	}

	st.MarkTodayComplete()
	fmt.Fprintf(env.out, "Day %d complete. Streak: %d\n", st.CurrentDay(), st.CurrentStreak())
	return nil
}

const visionHelpText = `lever vision - Show or replace your vision

USAGE:
    lever vision          Print the vision
    lever vision TEXT...  Replace it
`

func runVision(env *cliEnv, args []string) error {
	return editStatement(env, "vision", visionHelpText, args, env.st.Vision, env.st.UpdateVision)
}

const antiVisionHelpText = `lever anti-vision - Show or replace your anti-vision

USAGE:
    lever anti-vision          Print the anti-vision
    lever anti-vision TEXT...  Replace it
`

func runAntiVision(env *cliEnv, args []string) error {
	return editStatement(env, "anti-vision", antiVisionHelpText, args, env.st.AntiVision, env.st.UpdateAntiVision)
}

func editStatement(env *cliEnv, name, usage string, args []string, get func() string, set func(string)) error {
	fs, helpFlag := newFlagSet(env, name, usage)
	if err := parseFlags(fs, helpFlag, args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(env.out, get())
		return nil
	}
	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		return fmt.Errorf("text is required")
	}
	set(text)
	fmt.Fprintf(env.out, "Updated %s\n", name)
	return nil
}

const onboardHelpText = `lever onboard - Set your vision, anti-vision and Day 1

USAGE:
    lever onboard
    lever onboard --vision TEXT --anti-vision TEXT [--start YYYY-MM-DD]

    Without flags the onboarding screen opens. Running it again replaces
    the previous answers.
`

func runOnboard(env *cliEnv, args []string) error {
	fs, helpFlag := newFlagSet(env, "onboard", onboardHelpText)
	visionFlag := fs.String("vision", "", "what you are working towards")
	antiVisionFlag := fs.String("anti-vision", "", "what you want to avoid")
	startFlag := fs.String("start", "", "Day 1 as YYYY-MM-DD (default today)")
	if err := parseFlags(fs, helpFlag, args); err != nil {
		return err
	}

	vision := strings.TrimSpace(*visionFlag)
	antiVision := strings.TrimSpace(*antiVisionFlag)
	if vision == "" && antiVision == "" && *startFlag == "" {
		appCfg := env.appConfig()
		appCfg.ForceOnboarding = true
		return env.openUI(appCfg)
	}

	if vision == "" {
		return fmt.Errorf("--vision is required")
	}
	if antiVision == "" {
		return fmt.Errorf("--anti-vision is required")
	}

	start := env.st.Now()
	if *startFlag != "" {
		parsed, err := state.ParseDateKey(*startFlag)
		if err != nil {
			return fmt.Errorf("invalid start date %q, use YYYY-MM-DD", *startFlag)
		}
		if *startFlag > env.st.TodayKey() {
			return fmt.Errorf("start date %s is in the future", *startFlag)
		}
		start = parsed
	}

	env.st.CompleteOnboarding(vision, antiVision, start)
	fmt.Fprintf(env.out, "Day %d of %d. Your journey is set.\n", env.st.CurrentDay(), storage.JourneyLength)
	return nil
}

const pathHelpText = `lever path - Print file locations

USAGE:
    lever path            The data file
    lever path --config   The config file
    lever path --log      The log file
`

func runPath(env *cliEnv, args []string) error {
	fs, helpFlag := newFlagSet(env, "path", pathHelpText)
	configFlag := fs.Bool("config", false, "print the config file path")
	logFlag := fs.Bool("log", false, "print the log file path")
	if err := parseFlags(fs, helpFlag, args); err != nil {
		return err
	}

	switch {
	case *configFlag:
		fmt.Fprintln(env.out, config.Path())
	case *logFlag:
		fmt.Fprintln(env.out, env.cfg.LogFile())
	default:
		fmt.Fprintln(env.out, env.store.Path())
	}
	return nil
}
