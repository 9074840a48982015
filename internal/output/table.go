package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/spoolhq/spool/internal/event"
	"github.com/spoolhq/spool/internal/state"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	statusStyles = map[string]lipgloss.Style{
		"open":     lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		"complete": lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	}

	priorityStyles = map[string]lipgloss.Style{
		"p0": lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		"p1": lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		"p2": lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		"p3": lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}

	tagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
)

// DisableColor strips all styling from table output.
func DisableColor() {
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	statusStyles = map[string]lipgloss.Style{}
	priorityStyles = map[string]lipgloss.Style{}
	tagStyle = lipgloss.NewStyle()
}

// TaskTable renders a list of tasks as a formatted table.
func TaskTable(w io.Writer, tasks []*state.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	const pad = 2
	idW, statusW, prioW, assigneeW := 4, 8, 10, 10
	for _, t := range tasks {
		idW = max(idW, len(t.ID)+pad)
		statusW = max(statusW, len(t.Status)+pad)
		prioW = max(prioW, len(t.Priority)+pad)
		assigneeW = max(assigneeW, len(t.Assignee)+pad)
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %s",
		idW, "ID", statusW, "STATUS", prioW, "PRIORITY", assigneeW, "ASSIGNEE", "TITLE")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, t := range tasks {
		title := t.Title
		const maxTitle = 50
		if len(title) > maxTitle {
			title = title[:maxTitle-3] + "..."
		}

		row := fmt.Sprintf("%-*s %s %s %s %s",
			idW, t.ID,
			padRight(styledValue(string(t.Status), statusStyles), statusW),
			padRight(orDash(t.Priority, priorityStyles), prioW),
			padRight(orDash(t.Assignee, nil), assigneeW),
			title)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with full detail. The description is
// rendered as markdown when styling is enabled.
func TaskDetail(w io.Writer, t *state.Task) {
	titleLine := fmt.Sprintf("%s: %s", t.ID, t.Title)
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("-", len(titleLine)))

	printField(w, "Status", styledValue(string(t.Status), statusStyles))
	if t.Priority != "" {
		printField(w, "Priority", styledValue(t.Priority, priorityStyles))
	}
	if t.Assignee != "" {
		printField(w, "Assignee", t.Assignee)
	}
	if len(t.Tags) > 0 {
		printField(w, "Tags", tagStyle.Render(strings.Join(t.Tags, ", ")))
	}
	printField(w, "Created", fmt.Sprintf("%s by %s on %s",
		t.Created.Format("2006-01-02 15:04"), t.CreatedBy, t.CreatedBranch))
	printField(w, "Updated", t.Updated.Format("2006-01-02 15:04"))
	if t.Completed != nil {
		completed := t.Completed.Format("2006-01-02 15:04")
		if t.Resolution != "" {
			completed += fmt.Sprintf(" (%s)", t.Resolution)
		}
		printField(w, "Completed", completed)
	}
	if t.Archived != "" {
		printField(w, "Archived", t.Archived)
	}
	if t.Parent != "" {
		printField(w, "Parent", t.Parent)
	}
	if len(t.Blocks) > 0 {
		printField(w, "Blocks", strings.Join(t.Blocks, ", "))
	}
	if len(t.BlockedBy) > 0 {
		printField(w, "Blocked by", strings.Join(t.BlockedBy, ", "))
	}

	if t.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, renderMarkdown(t.Description))
	}

	if len(t.Comments) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("Comments:"))
		for _, c := range t.Comments {
			fmt.Fprintf(w, "  %s\n", dimStyle.Render(
				fmt.Sprintf("[%s - %s]", c.TS.Format("2006-01-02 15:04"), c.By)))
			fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(c.Body, "\n", "\n  "))
			if c.Ref != "" {
				fmt.Fprintf(w, "  ref: %s\n", c.Ref)
			}
		}
	}
}

// EventHistory renders a task's raw event history, one line per event.
func EventHistory(w io.Writer, events []event.Event) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Event History:"))
	for _, ev := range events {
		fmt.Fprintf(w, "  %s %s by %s on %s\n",
			ev.TS.Format("2006-01-02 15:04:05"), ev.Op, ev.By, ev.Branch)
	}
}

// Messagef writes a formatted informational line.
func Messagef(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}

// renderMarkdown renders a description through glamour, falling back to
// the raw text when rendering fails or color is disabled.
func renderMarkdown(md string) string {
	if ColorDisabled() {
		return md + "\n"
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		return md + "\n"
	}
	out, err := r.Render(md)
	if err != nil {
		return md + "\n"
	}
	return out
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%-12s %s\n", headerStyle.Render(label+":"), value)
}

func styledValue(value string, styles map[string]lipgloss.Style) string {
	if style, ok := styles[value]; ok {
		return style.Render(value)
	}
	return value
}

func orDash(value string, styles map[string]lipgloss.Style) string {
	if value == "" {
		return dimStyle.Render("--")
	}
	if styles != nil {
		return styledValue(value, styles)
	}
	return value
}

// padRight pads a possibly-styled string to the given visible width.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}
