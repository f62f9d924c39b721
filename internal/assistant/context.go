package assistant

import (
	"fmt"
	"strings"
)

// contextDateLayout renders dates the way they appear in context lines.
const contextDateLayout = "Mon Jan 02 2006"

// BuildContext renders retrieved records as the deterministic context block
// fed to the language model: one line per record, tasks before notes, each
// group in its given order. No records renders the empty string.
func BuildContext(tasks, notes []Result) string {
	lines := make([]string, 0, len(tasks)+len(notes))

	for _, t := range tasks {
		status := "Pending"
		if t.Done {
			status = "Completed"
		}
		date := ""
		if t.Date != nil {
			date = t.Date.Format(contextDateLayout)
		}
		lines = append(lines, fmt.Sprintf("Todo: %s | Status: %s | Date: %s", t.Title, status, date))
	}

	for _, n := range notes {
		date := ""
		if n.CreatedAt != nil {
			date = n.CreatedAt.Format(contextDateLayout)
		}
		lines = append(lines, fmt.Sprintf("Note: %s | Date: %s | Text: %s", n.Title, date, n.Content))
	}

	return strings.Join(lines, "\n")
}
