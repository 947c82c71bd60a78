// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"taskmgr/internal/service"
)

const (
	// Separator is the rule printed around section headers.
	Separator = "------------"

	// detailIndent lines up task descriptions under the title.
	detailIndent = "          "
)

// statusMarkers are the checkbox glyphs for each status.
var statusMarkers = map[service.Status]string{
	service.StatusPending:    "[ ]",
	service.StatusInProgress: "[~]",
	service.StatusCompleted:  "[x]",
	service.StatusCancelled:  "[-]",
}

// statusLabels name each status in stats output.
var statusLabels = map[service.Status]string{
	service.StatusPending:    "Pending",
	service.StatusInProgress: "In progress",
	service.StatusCompleted:  "Completed",
	service.StatusCancelled:  "Cancelled",
}

// FormatTask formats one task line, plus its description when it has one.
// Format: "{N:>4}  {MARKER} {TITLE}  (#{ID}, {PRIORITY}[, due {DATE}])\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	details := []string{fmt.Sprintf("#%d", task.ID), string(task.Priority)}
	if due := task.DueDay(); due != "" {
		details = append(details, "due "+due)
	}
	fmt.Fprintf(w, "%4d  %s %s  (%s)\n", num, marker(task.Status), normalizeTitle(task.Title), strings.Join(details, ", "))

	if desc := strings.TrimSpace(task.Description); desc != "" {
		fmt.Fprintf(w, "%s%s\n", detailIndent, oneLine(desc))
	}
}

// FormatHeader formats a section header.
func FormatHeader(w io.Writer, title string) {
	fmt.Fprintln(w, Separator)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, Separator)
}

// FormatStats formats the stats block. Known statuses are always listed;
// statuses the client does not know are appended in name order.
func FormatStats(w io.Writer, stats service.Stats) {
	fmt.Fprintf(w, "%-12s %d\n", "Total:", stats.TotalTasks)
	for _, s := range service.Statuses {
		fmt.Fprintf(w, "%-12s %d\n", statusLabels[s]+":", stats.Count(s))
	}

	var extra []string
	for name := range stats.ByStatus {
		if !service.Status(name).Valid() {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		fmt.Fprintf(w, "%-12s %d\n", name+":", stats.ByStatus[name])
	}

	fmt.Fprintf(w, "%-12s %d\n", "Overdue:", stats.OverdueTasks)
}

// FormatSummary formats the one-line stats summary printed above a task list.
func FormatSummary(w io.Writer, stats service.Stats) {
	fmt.Fprintf(w, "%d total, %d pending, %d completed, %d overdue\n",
		stats.TotalTasks, stats.Count(service.StatusPending), stats.Count(service.StatusCompleted), stats.OverdueTasks)
}

// FormatUser formats the current user.
func FormatUser(w io.Writer, user service.User) {
	fmt.Fprintf(w, "%s <%s> (id %d)\n", user.Username, user.Email, user.ID)
}

func marker(s service.Status) string {
	if m, ok := statusMarkers[s]; ok {
		return m
	}
	return "[?]"
}

// normalizeTitle normalizes a task title for display.
// Empty or whitespace-only titles become "(untitled)".
func normalizeTitle(title string) string {
	title = oneLine(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// oneLine replaces line breaks with spaces.
func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
