// Package main is the entry point for lever.
// It loads configuration, sets up logging and storage, and either runs a
// subcommand or starts the TUI.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"lever/internal/config"
	"lever/internal/logging"
	"lever/internal/notify"
	"lever/internal/state"
	"lever/internal/storage"
	"lever/internal/ui"

	"go.uber.org/zap"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const helpText = `lever - One hour. Three tasks. Every day.

USAGE:
    lever [OPTIONS]
    lever <command> [ARGS]

COMMANDS:
    status               Show today's day, streak, levers and timer
    add TITLE            Add a lever (up to 3)
    toggle N             Toggle lever N done / not done
    delete N             Delete lever N
    done                 Complete the day once every lever is done
    vision [TEXT]        Show or replace your vision
    anti-vision [TEXT]   Show or replace your anti-vision
    onboard              Set vision, anti-vision and Day 1 (TUI or flags)
    export               Print today's Markdown export
    export -o FILE       Write the export to a file
    export --clipboard   Copy the export to the clipboard
    backup               Back up lever-data.json
    backup --list        List backups
    restore NAME         Restore a backup
    restore --latest     Restore the most recent backup
    path                 Print the data file path

OPTIONS:
    -h, --help       Show this help message
    -v, --version    Show version information

DESCRIPTION:
    lever keeps a long-term vision in view while you work on up to three
    daily lever tasks, a 60-minute focus timer and a 365-day streak.
    Running lever without a command opens the terminal UI.

KEYBINDINGS:
    a            Add lever
    d/Enter      Toggle done
    x            Delete lever
    j/k, ↓/↑     Navigate
    Space        Start/pause focus timer
    r            Reset focus timer
    c            Complete the day
    v            Show/hide anti-vision
    V / A        Edit vision / anti-vision
    e            Copy Markdown to clipboard
    Ctrl+N       Add lever from anywhere
    ?            Show help overlay
    q            Quit

DATA STORAGE:
    State lives in one JSON file, lever-data.json, in the data directory
    (see 'lever path'). The previous version is kept as lever-data.json.bak.

CONFIGURATION:
    Optional config file: ~/.config/lever/config.yaml
`

// Replaced in tests.
var (
	stdin     io.Reader = os.Stdin
	launchTUI           = startTUI
)

// command is a subcommand handler.
type command func(env *cliEnv, args []string) error

var commands = map[string]command{
	"status":      runStatus,
	"add":         runAdd,
	"toggle":      runToggle,
	"delete":      runDelete,
	"done":        runDone,
	"vision":      runVision,
	"anti-vision": runAntiVision,
	"onboard":     runOnboard,
	"export":      runExport,
	"backup":      runBackup,
	"restore":     runRestore,
	"path":        runPath,
}

// cliEnv is everything a subcommand needs.
type cliEnv struct {
	cfg   *config.Config
	log   *zap.SugaredLogger
	store *storage.Storage
	st    *state.State
	in    io.Reader
	out   io.Writer

	// runTUI starts the terminal UI.
	runTUI func(env *cliEnv, appCfg *ui.AppConfig) error
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes lever with args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	// Check for subcommands first (before flag parsing)
	if len(args) > 0 {
		if cmd, ok := commands[args[0]]; ok {
			return runCommand(cmd, args[0], args[1:], stdout, stderr)
		}
	}

	fs := flag.NewFlagSet("lever", flag.ContinueOnError)
	fs.SetOutput(stderr)

	showVersion := fs.Bool("version", false, "show version information")
	fs.BoolVar(showVersion, "v", false, "show version information (shorthand)")

	showHelp := fs.Bool("help", false, "show help message")
	fs.BoolVar(showHelp, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(stderr, helpText)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if *showVersion {
		fmt.Fprintf(stdout, "lever version %s\n", version)
		fmt.Fprintf(stdout, "  commit: %s\n", commit)
		fmt.Fprintf(stdout, "  built:  %s\n", date)
		return 0
	}

	if *showHelp {
		fmt.Fprint(stdout, helpText)
		return 0
	}

	// Reject unknown arguments
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "Error: unknown command: %s\n\n", fs.Arg(0))
		fs.Usage()
		return 1
	}

	env, cleanup, err := openEnv(stdout, nil)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer cleanup()

	if err := env.openUI(env.appConfig()); err != nil {
		fmt.Fprintf(stderr, "Error running app: %v\n", err)
		return 1
	}
	return 0
}

func runCommand(cmd command, name string, args []string, stdout, stderr io.Writer) int {
	env, cleanup, err := openEnv(stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer cleanup()

	if err := cmd(env, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error %s: %v\n", name, err)
		return 1
	}
	return 0
}

// openEnv loads config, starts logging and loads the saved state. Warnings
// go to console as well as the log file when console is non-nil; the TUI
// passes nil since it owns the terminal.
func openEnv(out, console io.Writer) (*cliEnv, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	opts := logging.FromConfig(cfg)
	opts.Console = console
	log, closeLog, err := logging.New(opts)
	if err != nil {
		if console != nil {
			fmt.Fprintf(console, "Warning: logging disabled: %v\n", err)
		}
		log, closeLog = logging.Nop(), func() {}
	}

	store := storage.New(cfg.GetDataDir(), log)
	st := state.New(store)
	store.LoadInto(st)
	log.Debugw("state loaded", "version", version, "path", store.Path())

	env := &cliEnv{
		cfg:    cfg,
		log:    log,
		store:  store,
		st:     st,
		in:     stdin,
		out:    out,
		runTUI: launchTUI,
	}
	cleanup := func() {
		st.Close()
		closeLog()
	}
	return env, cleanup, nil
}

func (env *cliEnv) appConfig() *ui.AppConfig {
	return &ui.AppConfig{
		Keys:                  &env.cfg.Keys,
		ConfirmDeletions:      env.cfg.UX.ConfirmDeletions,
		ShowOnboarding:        env.cfg.UX.ShowOnboarding,
		NarrowLayoutThreshold: env.cfg.UX.NarrowLayoutThreshold,
		Alerts:                notify.NewAlerts(nil, env.cfg.Notifications.Enabled, env.cfg.Notifications.Sound),
		Logger:                env.log,
	}
}

// openUI runs the new-day check and starts the TUI. Subcommands never reset
// lever completion.
func (env *cliEnv) openUI(appCfg *ui.AppConfig) error {
	if env.st.CheckForNewDay() {
		env.log.Infow("new day, lever completion reset")
	}
	return env.runTUI(env, appCfg)
}

func startTUI(env *cliEnv, appCfg *ui.AppConfig) error {
	styles := ui.NewStylesFromTheme(&env.cfg.Theme)
	env.log.Infow("starting ui", "version", version)
	return ui.Run(env.st, styles, appCfg)
}
