package main

import (
	"fmt"
	"path/filepath"

	"lever/internal/fsutil"
	"lever/internal/storage"

	"github.com/atotto/clipboard"
)

// exportHelpText is the help message for the export subcommand.
const exportHelpText = `lever export - Export today's focus as Markdown

USAGE:
    lever export [OPTIONS]

OPTIONS:
    -o, --output FILE  Write to file instead of stdout
    -c, --clipboard    Copy to the system clipboard
        --json         Export the full state document as JSON
    -h, --help         Show this help message

EXAMPLES:
    # Print the export
    lever export

    # Save to file
    lever export --output today.md

    # Paste it somewhere
    lever export --clipboard
`

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

// runExport handles the "lever export" subcommand.
func runExport(env *cliEnv, args []string) error {
	fs, helpFlag := newFlagSet(env, "export", exportHelpText)

	outputFlag := fs.String("output", "", "write to file instead of stdout")
	fs.StringVar(outputFlag, "o", "", "write to file (shorthand)")

	clipboardFlag := fs.Bool("clipboard", false, "copy to the clipboard")
	fs.BoolVar(clipboardFlag, "c", false, "copy to the clipboard (shorthand)")

	jsonFlag := fs.Bool("json", false, "export the state document as JSON")

	if err := parseFlags(fs, helpFlag, args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	var output string
	if *jsonFlag {
		data, err := storage.ExportJSON(env.st)
		if err != nil {
			return err
		}
		output = string(data) + "\n"
	} else {
		output = storage.ExportMarkdown(env.st) + "\n"
	}

	switch {
	case *clipboardFlag:
		if err := copyToClipboard(output); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Fprintln(env.out, "Copied to the clipboard")

	case *outputFlag != "":
		if dir := filepath.Dir(*outputFlag); dir != "." {
			if err := fsutil.EnsureDir(dir, 0700); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
		}
		if err := fsutil.WriteFileAtomic(*outputFlag, []byte(output), 0600); err != nil {
			return fmt.Errorf("write %s: %w", *outputFlag, err)
		}
		fmt.Fprintf(env.out, "Export written to %s\n", *outputFlag)

	default:
		fmt.Fprint(env.out, output)
	}
	return nil
}
