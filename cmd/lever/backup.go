package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"lever/internal/backup"
)

// backupHelpText is the help message for the backup subcommand.
const backupHelpText = `lever backup - Create and manage backups

USAGE:
    lever backup [OPTIONS]

OPTIONS:
    -l, --list       List available backups
        --prune N    Keep the N most recent backups and delete the rest
    -h, --help       Show this help message

DESCRIPTION:
    Copies lever-data.json into a timestamped directory under
    <data dir>/backups/. Use 'lever restore' to bring one back.
`

// runBackup handles the "lever backup" subcommand.
func runBackup(env *cliEnv, args []string) error {
	fs, helpFlag := newFlagSet(env, "backup", backupHelpText)

	listFlag := fs.Bool("list", false, "list available backups")
	fs.BoolVar(listFlag, "l", false, "list available backups (shorthand)")

	pruneFlag := fs.Int("prune", -1, "keep the N most recent backups")

	if err := parseFlags(fs, helpFlag, args); err != nil {
		return err
	}

	manager := backup.NewManager(env.cfg.GetDataDir(), version)

	switch {
	case *listFlag:
		return listBackups(env, manager)
	case *pruneFlag >= 0:
		deleted, err := manager.Prune(*pruneFlag)
		if err != nil {
			return err
		}
		fmt.Fprintf(env.out, "Deleted %d backup(s)\n", deleted)
		return nil
	}

	name, err := manager.Create()
	if err != nil {
		return err
	}
	env.log.Infow("backup created", "name", name)
	fmt.Fprintf(env.out, "✓ Backup created: %s\n", name)
	fmt.Fprintf(env.out, "  Levers: %d, Completed days: %d\n", env.st.TaskCount(), len(env.st.CompletedDays()))
	return nil
}

func listBackups(env *cliEnv, manager *backup.Manager) error {
	backups, err := manager.List()
	if err != nil {
		return err
	}

	if len(backups) == 0 {
		fmt.Fprintln(env.out, "No backups available.")
		fmt.Fprintln(env.out, "Run 'lever backup' to create one.")
		return nil
	}

	fmt.Fprintln(env.out, "Available backups:")
	for _, b := range backups {
		fmt.Fprintf(env.out, "  %s  (%s)   Levers: %d, Completed days: %d\n",
			b.Name, formatAge(time.Since(b.CreatedAt)), b.Tasks, b.Completed)
	}
	return nil
}

// formatAge returns a human-readable age string.
func formatAge(d time.Duration) string {
	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit + " ago"
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	default:
		return plural(int(d.Hours()/24/7), "week")
	}
}

// restoreHelpText is the help message for the restore subcommand.
const restoreHelpText = `lever restore - Restore lever-data.json from a backup

USAGE:
    lever restore [OPTIONS] [BACKUP_NAME]

OPTIONS:
        --latest     Restore from the most recent backup
    -f, --force      Skip confirmation prompt
    -h, --help       Show this help message

DESCRIPTION:
    The current lever-data.json is backed up before it is replaced.
    Use 'lever backup --list' to see available backups.
`

// runRestore handles the "lever restore" subcommand.
func runRestore(env *cliEnv, args []string) error {
	fs, helpFlag := newFlagSet(env, "restore", restoreHelpText)

	latestFlag := fs.Bool("latest", false, "restore from most recent backup")
	forceFlag := fs.Bool("force", false, "skip confirmation prompt")
	fs.BoolVar(forceFlag, "f", false, "skip confirmation prompt (shorthand)")

	if err := parseFlags(fs, helpFlag, args); err != nil {
		return err
	}

	manager := backup.NewManager(env.cfg.GetDataDir(), version)

	var name string
	switch {
	case *latestFlag:
		backups, err := manager.List()
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			return fmt.Errorf("no backups available")
		}
		name = backups[0].Name
	case fs.NArg() == 1:
		name = fs.Arg(0)
	default:
		return fmt.Errorf("specify a backup name or --latest")
	}

	if !*forceFlag && !confirm(env, fmt.Sprintf("Replace lever-data.json with backup %s?", name)) {
		fmt.Fprintln(env.out, "Restore canceled.")
		return nil
	}

	safety, err := manager.Restore(name)
	if err != nil {
		return err
	}
	env.log.Infow("backup restored", "name", name, "safety", safety)

	fmt.Fprintf(env.out, "✓ Restored from %s\n", name)
	if safety != "" {
		fmt.Fprintf(env.out, "  Previous data saved as %s\n", safety)
	}
	return nil
}

func confirm(env *cliEnv, question string) bool {
	fmt.Fprintf(env.out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(env.in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
