package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"lever/internal/state"
)

// JourneyLength is the number of days in a lever journey.
const JourneyLength = 365

const exportDateLayout = "January 2, 2006"

// ExportMarkdown renders st as a Markdown document. It reads the state's
// clock for the footer date and never touches the disk.
func ExportMarkdown(st *state.State) string {
	var b strings.Builder

	b.WriteString("# Lever - Daily Focus\n\n")

	b.WriteString("## Vision\n")
	b.WriteString(st.Vision())
	b.WriteString("\n\n")

	b.WriteString("## Anti-Vision\n")
	b.WriteString(st.AntiVision())
	b.WriteString("\n\n")

	b.WriteString("## Progress\n")
	fmt.Fprintf(&b, "- **Start Date:** %s\n", st.StartDate().Local().Format(exportDateLayout))
	fmt.Fprintf(&b, "- **Current Day:** Day %d of %d\n", st.CurrentDay(), JourneyLength)
	fmt.Fprintf(&b, "- **Current Streak:** %d days\n\n", st.CurrentStreak())

	b.WriteString("## Today's Lever Tasks")
	for _, task := range st.Tasks() {
		mark := " "
		if task.IsCompleted {
			mark = "x"
		}
		fmt.Fprintf(&b, "\n- [%s] %s", mark, task.Title)
	}

	fmt.Fprintf(&b, "\n\n---\n*Exported from Lever on %s*", st.Now().Format(exportDateLayout))

	return b.String()
}

// ExportJSON renders st as the same indented document Save writes.
func ExportJSON(st *state.State) ([]byte, error) {
	data, err := json.MarshalIndent(st.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize state: %w", err)
	}
	return data, nil
}
