package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lever/internal/state"
	"lever/internal/storage"
	"lever/internal/ui"
)

// setupCLI points config and data at temp dirs and returns the data dir.
func setupCLI(t *testing.T) string {
	t.Helper()
	cfgHome := t.TempDir()
	dataDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)

	cfgDir := filepath.Join(cfgHome, "lever")
	if err := os.MkdirAll(cfgDir, 0700); err != nil {
		t.Fatal(err)
	}
	cfg := fmt.Sprintf("data_dir: %q\n", dataDir)
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(cfg), 0600); err != nil {
		t.Fatal(err)
	}
	return dataDir
}

func runCLI(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return out.String(), errOut.String(), code
}

// mustRun fails the test unless args exit cleanly.
func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, code := runCLI(t, args...)
	if code != 0 {
		t.Fatalf("lever %s exited %d: %s", strings.Join(args, " "), code, errOut)
	}
	return out
}

func onboard(t *testing.T) {
	t.Helper()
	mustRun(t, "onboard", "--vision", "Ship the book", "--anti-vision", "Endless drafts")
}

func TestVersionAndHelp(t *testing.T) {
	setupCLI(t)

	out := mustRun(t, "--version")
	if !strings.Contains(out, "lever version dev") {
		t.Errorf("version output = %q", out)
	}

	out = mustRun(t, "-h")
	if !strings.Contains(out, "COMMANDS:") {
		t.Errorf("help output missing commands:\n%s", out)
	}
}

func TestUnknownCommand(t *testing.T) {
	setupCLI(t)

	_, errOut, code := runCLI(t, "frobnicate")
	if code != 1 {
		t.Errorf("code = %d, want 1", code)
	}
	if !strings.Contains(errOut, "unknown command: frobnicate") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestSubcommandHelp(t *testing.T) {
	setupCLI(t)

	out := mustRun(t, "add", "--help")
	if !strings.Contains(out, "lever add - Add a lever task") {
		t.Errorf("add help = %q", out)
	}
}

func TestStatusBeforeOnboarding(t *testing.T) {
	setupCLI(t)

	out := mustRun(t, "status")
	if !strings.Contains(out, "Not set up yet") {
		t.Errorf("status = %q", out)
	}
}

func TestOnboardWithFlags(t *testing.T) {
	setupCLI(t)

	out := mustRun(t, "onboard", "--vision", "  Ship the book ", "--anti-vision", "Endless drafts")
	if !strings.Contains(out, "Day 1 of 365") {
		t.Errorf("onboard output = %q", out)
	}

	out = mustRun(t, "status")
	for _, want := range []string{"Day 1 of 365", "Vision: Ship the book", "Levers (0/3):", "Focus: 60:00 remaining (idle)"} {
		if !strings.Contains(out, want) {
			t.Errorf("status missing %q:\n%s", want, out)
		}
	}
}

func TestOnboardErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing vision", []string{"--anti-vision", "x"}, "--vision is required"},
		{"missing anti-vision", []string{"--vision", "x"}, "--anti-vision is required"},
		{"bad date", []string{"--vision", "x", "--anti-vision", "y", "--start", "03/01/2025"}, "invalid start date"},
		{"future date", []string{"--vision", "x", "--anti-vision", "y", "--start", "2999-01-01"}, "in the future"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setupCLI(t)
			_, errOut, code := runCLI(t, append([]string{"onboard"}, tc.args...)...)
			if code != 1 {
				t.Errorf("code = %d, want 1", code)
			}
			if !strings.Contains(errOut, tc.want) {
				t.Errorf("stderr = %q, want %q", errOut, tc.want)
			}
		})
	}
}

func TestOnboardWithoutFlagsOpensTUI(t *testing.T) {
	setupCLI(t)

	var got *ui.AppConfig
	orig := launchTUI
	launchTUI = func(env *cliEnv, appCfg *ui.AppConfig) error {
		got = appCfg
		return nil
	}
	t.Cleanup(func() { launchTUI = orig })

	mustRun(t, "onboard")
	if got == nil || !got.ForceOnboarding {
		t.Errorf("TUI config = %+v, want forced onboarding", got)
	}

	got = nil
	mustRun(t)
	if got == nil || got.ForceOnboarding {
		t.Errorf("plain launch config = %+v", got)
	}
}

func TestTUIError(t *testing.T) {
	setupCLI(t)

	orig := launchTUI
	launchTUI = func(env *cliEnv, appCfg *ui.AppConfig) error {
		return errors.New("no tty")
	}
	t.Cleanup(func() { launchTUI = orig })

	_, errOut, code := runCLI(t)
	if code != 1 || !strings.Contains(errOut, "no tty") {
		t.Errorf("code = %d, stderr = %q", code, errOut)
	}
}

func TestLeverFlow(t *testing.T) {
	setupCLI(t)
	onboard(t)

	out := mustRun(t, "add", "Write", "500", "words")
	if !strings.Contains(out, "Added lever 1: Write 500 words") {
		t.Errorf("add output = %q", out)
	}
	mustRun(t, "add", "Call editor")
	mustRun(t, "add", "Outline chapter 3")

	_, errOut, code := runCLI(t, "add", "One too many")
	if code != 1 || !strings.Contains(errOut, "all 3 levers are set") {
		t.Errorf("fourth add: code = %d, stderr = %q", code, errOut)
	}

	out = mustRun(t, "toggle", "1")
	if !strings.Contains(out, "Write 500 words: done") {
		t.Errorf("toggle output = %q", out)
	}

	_, errOut, code = runCLI(t, "done")
	if code != 1 || !strings.Contains(errOut, "finish every lever first (1/3 done)") {
		t.Errorf("early done: code = %d, stderr = %q", code, errOut)
	}

	mustRun(t, "toggle", "2")
	out = mustRun(t, "toggle", "3")
	if !strings.Contains(out, "Every lever is done") {
		t.Errorf("last toggle output = %q", out)
	}

	out = mustRun(t, "done")
	if !strings.Contains(out, "Day 1 complete. Streak: 1") {
		t.Errorf("done output = %q", out)
	}
	out = mustRun(t, "done")
	if !strings.Contains(out, "already complete") {
		t.Errorf("second done = %q", out)
	}

	out = mustRun(t, "status")
	for _, want := range []string{"streak 1", "today complete", "Levers (3/3):", "1. [x] Write 500 words"} {
		if !strings.Contains(out, want) {
			t.Errorf("status missing %q:\n%s", want, out)
		}
	}
}

// backdateLevers moves every lever's creation time days into the past.
func backdateLevers(t *testing.T, dataDir string, days int) {
	t.Helper()
	store := storage.New(dataDir, nil)
	snap, ok := store.Load()
	if !ok {
		t.Fatal("no saved state to backdate")
	}
	for i := range snap.Tasks {
		snap.Tasks[i].CreatedAt = snap.Tasks[i].CreatedAt.AddDate(0, 0, -days)
	}
	st := state.New(nil)
	st.Restore(snap)
	store.Save(st)
}

func TestSubcommandsKeepCompletionOnLaterDays(t *testing.T) {
	dataDir := setupCLI(t)
	onboard(t)
	mustRun(t, "add", "one")
	mustRun(t, "add", "two")
	backdateLevers(t, dataDir, 1)

	mustRun(t, "toggle", "1")
	mustRun(t, "toggle", "2")

	out := mustRun(t, "status")
	for _, want := range []string{"1. [x] one", "2. [x] two"} {
		if !strings.Contains(out, want) {
			t.Errorf("status missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "done")
	if !strings.Contains(out, "complete. Streak: 1") {
		t.Errorf("done output = %q", out)
	}
}

func TestTUILaunchResetsCompletionOnNewDay(t *testing.T) {
	dataDir := setupCLI(t)
	onboard(t)
	mustRun(t, "add", "one")
	mustRun(t, "toggle", "1")
	backdateLevers(t, dataDir, 1)

	orig := launchTUI
	launchTUI = func(env *cliEnv, appCfg *ui.AppConfig) error { return nil }
	t.Cleanup(func() { launchTUI = orig })

	// Subcommands leave completion alone.
	out := mustRun(t, "status")
	if !strings.Contains(out, "1. [x] one") {
		t.Errorf("status before launch:\n%s", out)
	}

	mustRun(t)
	out = mustRun(t, "status")
	if !strings.Contains(out, "1. [ ] one") {
		t.Errorf("status after launch:\n%s", out)
	}
}

func TestToggleUntoggle(t *testing.T) {
	setupCLI(t)
	onboard(t)
	mustRun(t, "add", "Run")

	mustRun(t, "toggle", "1")
	out := mustRun(t, "toggle", "1")
	if !strings.Contains(out, "Run: not done") {
		t.Errorf("second toggle = %q", out)
	}
}

func TestDelete(t *testing.T) {
	setupCLI(t)
	onboard(t)
	mustRun(t, "add", "Keep")
	mustRun(t, "add", "Drop")

	out := mustRun(t, "delete", "2")
	if !strings.Contains(out, "Deleted: Drop") {
		t.Errorf("delete output = %q", out)
	}

	out = mustRun(t, "status")
	if !strings.Contains(out, "Levers (1/3):") || strings.Contains(out, "Drop") {
		t.Errorf("status after delete:\n%s", out)
	}

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"delete", "5"}, "no lever 5 (have 1)"},
		{[]string{"delete"}, "expected one lever number"},
		{[]string{"toggle", "zzz"}, `no lever matches "zzz"`},
	}
	for _, tc := range tests {
		_, errOut, code := runCLI(t, tc.args...)
		if code != 1 || !strings.Contains(errOut, tc.want) {
			t.Errorf("%v: code = %d, stderr = %q", tc.args, code, errOut)
		}
	}
}

func TestVisionCommands(t *testing.T) {
	setupCLI(t)
	onboard(t)

	out := mustRun(t, "vision")
	if strings.TrimSpace(out) != "Ship the book" {
		t.Errorf("vision = %q", out)
	}

	out = mustRun(t, "vision", "Ship", "two", "books")
	if !strings.Contains(out, "Updated vision") {
		t.Errorf("update output = %q", out)
	}
	if out := mustRun(t, "vision"); strings.TrimSpace(out) != "Ship two books" {
		t.Errorf("vision after update = %q", out)
	}

	mustRun(t, "anti-vision", "Doomscrolling")
	if out := mustRun(t, "anti-vision"); strings.TrimSpace(out) != "Doomscrolling" {
		t.Errorf("anti-vision = %q", out)
	}
}

func TestExport(t *testing.T) {
	setupCLI(t)
	onboard(t)
	mustRun(t, "add", "Write 500 words")

	out := mustRun(t, "export")
	for _, want := range []string{"# Lever - Daily Focus", "Ship the book", "- [ ] Write 500 words"} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "export", "--json")
	if !strings.Contains(out, `"Ship the book"`) || !strings.Contains(out, `"Write 500 words"`) {
		t.Errorf("json export = %s", out)
	}
}

func TestExportToFile(t *testing.T) {
	setupCLI(t)
	onboard(t)

	path := filepath.Join(t.TempDir(), "nested", "today.md")
	out := mustRun(t, "export", "-o", path)
	if !strings.Contains(out, "Export written to") {
		t.Errorf("output = %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("export file: %v", err)
	}
	if !strings.Contains(string(data), "## Vision\nShip the book") {
		t.Errorf("file content = %q", data)
	}
}

func TestExportToClipboard(t *testing.T) {
	setupCLI(t)
	onboard(t)

	var copied string
	orig := copyToClipboard
	copyToClipboard = func(text string) error {
		copied = text
		return nil
	}
	t.Cleanup(func() { copyToClipboard = orig })

	out := mustRun(t, "export", "--clipboard")
	if !strings.Contains(out, "Copied to the clipboard") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(copied, "# Lever - Daily Focus") {
		t.Errorf("clipboard = %q", copied)
	}

	copyToClipboard = func(string) error { return errors.New("no clipboard utility") }
	_, errOut, code := runCLI(t, "export", "-c")
	if code != 1 || !strings.Contains(errOut, "no clipboard utility") {
		t.Errorf("code = %d, stderr = %q", code, errOut)
	}
}

func TestPath(t *testing.T) {
	dataDir := setupCLI(t)

	out := mustRun(t, "path")
	if strings.TrimSpace(out) != filepath.Join(dataDir, storage.DataFileName) {
		t.Errorf("path = %q", out)
	}

	out = mustRun(t, "path", "--config")
	if !strings.HasSuffix(strings.TrimSpace(out), filepath.Join("lever", "config.yaml")) {
		t.Errorf("config path = %q", out)
	}

	out = mustRun(t, "path", "--log")
	if strings.TrimSpace(out) != filepath.Join(dataDir, "lever.log") {
		t.Errorf("log path = %q", out)
	}
}

func TestBackupAndRestore(t *testing.T) {
	setupCLI(t)

	_, errOut, code := runCLI(t, "backup")
	if code != 1 || !strings.Contains(errOut, "nothing to back up") {
		t.Errorf("backup without data: code = %d, stderr = %q", code, errOut)
	}

	out := mustRun(t, "backup", "--list")
	if !strings.Contains(out, "No backups available.") {
		t.Errorf("empty list = %q", out)
	}

	onboard(t)
	mustRun(t, "add", "Write 500 words")

	out = mustRun(t, "backup")
	if !strings.Contains(out, "✓ Backup created:") || !strings.Contains(out, "Levers: 1") {
		t.Errorf("backup output = %q", out)
	}

	out = mustRun(t, "backup", "--list")
	if !strings.Contains(out, "Available backups:") || !strings.Contains(out, "just now") {
		t.Errorf("list output = %q", out)
	}

	mustRun(t, "vision", "Changed my mind")

	out = mustRun(t, "restore", "--latest", "--force")
	if !strings.Contains(out, "✓ Restored from") || !strings.Contains(out, "Previous data saved as") {
		t.Errorf("restore output = %q", out)
	}
	if out := mustRun(t, "vision"); strings.TrimSpace(out) != "Ship the book" {
		t.Errorf("vision after restore = %q", out)
	}
}

func TestRestorePrompt(t *testing.T) {
	setupCLI(t)
	onboard(t)
	mustRun(t, "backup")
	mustRun(t, "vision", "Changed")

	orig := stdin
	t.Cleanup(func() { stdin = orig })

	stdin = strings.NewReader("n\n")
	out := mustRun(t, "restore", "--latest")
	if !strings.Contains(out, "Restore canceled.") {
		t.Errorf("declined restore = %q", out)
	}
	if out := mustRun(t, "vision"); strings.TrimSpace(out) != "Changed" {
		t.Errorf("vision = %q, want unchanged", out)
	}

	stdin = strings.NewReader("y\n")
	mustRun(t, "restore", "--latest")
	if out := mustRun(t, "vision"); strings.TrimSpace(out) != "Ship the book" {
		t.Errorf("vision = %q, want restored", out)
	}
}

func TestRestoreErrors(t *testing.T) {
	setupCLI(t)

	_, errOut, code := runCLI(t, "restore")
	if code != 1 || !strings.Contains(errOut, "specify a backup name or --latest") {
		t.Errorf("code = %d, stderr = %q", code, errOut)
	}

	_, errOut, code = runCLI(t, "restore", "--latest", "-f")
	if code != 1 || !strings.Contains(errOut, "no backups available") {
		t.Errorf("code = %d, stderr = %q", code, errOut)
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{2 * time.Hour, "2 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{3 * 24 * time.Hour, "3 days ago"},
		{14 * 24 * time.Hour, "2 weeks ago"},
	}

	for _, tc := range tests {
		if got := formatAge(tc.d); got != tc.want {
			t.Errorf("formatAge(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
