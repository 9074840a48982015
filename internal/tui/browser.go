// Package tui implements a read-only terminal browser over the
// materialized task state.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/spoolhq/spool/internal/repo"
	"github.com/spoolhq/spool/internal/state"
)

// statusFilter selects which tasks the list shows.
type statusFilter int

const (
	filterOpen statusFilter = iota
	filterComplete
	filterAll
)

func (f statusFilter) label() string {
	switch f {
	case filterComplete:
		return "Complete"
	case filterAll:
		return "All"
	default:
		return "Open"
	}
}

func (f statusFilter) next() statusFilter {
	return (f + 1) % 3
}

// ReloadMsg asks the browser to re-read task state from disk.
type ReloadMsg struct{}

type errMsg struct{ err error }

const (
	listChrome   = 3 // header + blank line + status bar
	detailMinW   = 40
	priorityVoid = "p3" // unset priority sorts here
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	openStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	completeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("237"))
	detailBorder  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).PaddingLeft(1)
)

// keyMap holds the browser key bindings.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Detail key.Binding
	Filter key.Binding
	Reload key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("k", "up")),
	Down:   key.NewBinding(key.WithKeys("j", "down")),
	Top:    key.NewBinding(key.WithKeys("g", "home")),
	Bottom: key.NewBinding(key.WithKeys("G", "end")),
	Detail: key.NewBinding(key.WithKeys("enter", "tab")),
	Filter: key.NewBinding(key.WithKeys("f")),
	Reload: key.NewBinding(key.WithKeys("r")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc")),
}

// Browser is the top-level bubbletea model.
type Browser struct {
	ctx        *repo.Context
	tasks      []*state.Task
	selected   int
	scrollOff  int
	showDetail bool
	filter     statusFilter
	width      int
	height     int
	err        error
}

// NewBrowser creates a browser over the given repository.
func NewBrowser(ctx *repo.Context) *Browser {
	b := &Browser{ctx: ctx}
	b.loadTasks()
	return b
}

// WatchPaths returns the directories whose changes should trigger a reload.
func (b *Browser) WatchPaths() []string {
	return []string{b.ctx.EventsDir, b.ctx.ArchiveDir}
}

// loadTasks re-reads state and applies the current filter. Tasks sort by
// priority, then by created instant, unset priority last.
func (b *Browser) loadTasks() {
	st, err := state.LoadOrMaterialize(b.ctx)
	if err != nil {
		b.err = err
		return
	}
	b.err = nil

	var tasks []*state.Task
	for _, t := range st.Tasks {
		switch b.filter {
		case filterOpen:
			if t.Status != state.StatusOpen {
				continue
			}
		case filterComplete:
			if t.Status != state.StatusComplete {
				continue
			}
		}
		tasks = append(tasks, t)
	}

	sort.Slice(tasks, func(i, j int) bool {
		pi, pj := tasks[i].Priority, tasks[j].Priority
		if pi == "" {
			pi = priorityVoid
		}
		if pj == "" {
			pj = priorityVoid
		}
		if pi != pj {
			return pi < pj
		}
		return tasks[i].Created.Before(tasks[j].Created)
	})

	b.tasks = tasks
	if b.selected >= len(b.tasks) && len(b.tasks) > 0 {
		b.selected = len(b.tasks) - 1
	}
	if len(b.tasks) == 0 {
		b.selected = 0
	}
}

// Init implements tea.Model.
func (b *Browser) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return b.handleKey(msg)
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		return b, nil
	case ReloadMsg:
		b.loadTasks()
		return b, nil
	case errMsg:
		b.err = msg.err
		return b, nil
	}
	return b, nil
}

func (b *Browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return b, tea.Quit
	case key.Matches(msg, keys.Down):
		if b.selected < len(b.tasks)-1 {
			b.selected++
		}
	case key.Matches(msg, keys.Up):
		if b.selected > 0 {
			b.selected--
		}
	case key.Matches(msg, keys.Top):
		b.selected = 0
	case key.Matches(msg, keys.Bottom):
		if len(b.tasks) > 0 {
			b.selected = len(b.tasks) - 1
		}
	case key.Matches(msg, keys.Detail):
		b.showDetail = !b.showDetail
	case key.Matches(msg, keys.Filter):
		b.filter = b.filter.next()
		b.loadTasks()
	case key.Matches(msg, keys.Reload):
		b.loadTasks()
	}
	return b, nil
}

// View implements tea.Model.
func (b *Browser) View() string {
	if b.width == 0 {
		return "Loading..."
	}

	listW := b.width
	if b.showDetail && b.width > detailMinW*2 {
		listW = b.width / 2
	}

	list := b.viewList(listW)
	if b.showDetail && b.width > detailMinW*2 {
		detail := detailBorder.Render(b.viewDetail(b.width - listW - 2))
		list = lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
	}

	return list + "\n" + b.viewStatusBar()
}

func (b *Browser) viewList(width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Tasks — %s (%d)", b.filter.label(), len(b.tasks))))
	sb.WriteString("\n\n")

	if len(b.tasks) == 0 {
		sb.WriteString(dimStyle.Render("No tasks."))
		return sb.String()
	}

	visible := b.height - listChrome - 1
	if visible < 1 {
		visible = 1
	}
	if b.selected < b.scrollOff {
		b.scrollOff = b.selected
	}
	if b.selected >= b.scrollOff+visible {
		b.scrollOff = b.selected - visible + 1
	}

	end := min(b.scrollOff+visible, len(b.tasks))
	for i := b.scrollOff; i < end; i++ {
		t := b.tasks[i]
		line := fmt.Sprintf("%-12s %-4s %s", t.ID, t.Priority, t.Title)
		if len(line) > width-2 && width > 5 {
			line = line[:width-5] + "..."
		}
		if i == b.selected {
			sb.WriteString(selectedStyle.Render(line))
		} else if t.Status == state.StatusComplete {
			sb.WriteString(dimStyle.Render(line))
		} else {
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (b *Browser) viewDetail(width int) string {
	t := b.selectedTask()
	if t == nil {
		return dimStyle.Render("Nothing selected.")
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(t.Title))
	sb.WriteString("\n\n")

	status := openStyle.Render(string(t.Status))
	if t.Status == state.StatusComplete {
		status = completeStyle.Render(string(t.Status))
	}
	sb.WriteString(fmt.Sprintf("Status:   %s\n", status))
	if t.Priority != "" {
		sb.WriteString(fmt.Sprintf("Priority: %s\n", t.Priority))
	}
	if t.Assignee != "" {
		sb.WriteString(fmt.Sprintf("Assignee: %s\n", t.Assignee))
	}
	if len(t.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("Tags:     %s\n", strings.Join(t.Tags, ", ")))
	}
	sb.WriteString(fmt.Sprintf("Created:  %s by %s\n", t.Created.Format("2006-01-02 15:04"), t.CreatedBy))
	if t.Completed != nil {
		done := t.Completed.Format("2006-01-02 15:04")
		if t.Resolution != "" {
			done += " (" + t.Resolution + ")"
		}
		sb.WriteString("Done:     " + done + "\n")
	}
	if len(t.BlockedBy) > 0 {
		sb.WriteString(fmt.Sprintf("Blocked:  %s\n", strings.Join(t.BlockedBy, ", ")))
	}

	if t.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(wrap(t.Description, width))
		sb.WriteString("\n")
	}
	if len(t.Comments) > 0 {
		sb.WriteString("\n")
		sb.WriteString(titleStyle.Render(fmt.Sprintf("Comments (%d)", len(t.Comments))))
		sb.WriteString("\n")
		for _, c := range t.Comments {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("[%s %s] ", c.TS.Format("01-02 15:04"), c.By)))
			sb.WriteString(c.Body)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func (b *Browser) viewStatusBar() string {
	help := " j/k move · enter detail · f filter · r reload · q quit "
	if b.err != nil {
		help = " error: " + b.err.Error() + " "
	}
	return barStyle.Width(b.width).Render(help)
}

func (b *Browser) selectedTask() *state.Task {
	if b.selected < 0 || b.selected >= len(b.tasks) {
		return nil
	}
	return b.tasks[b.selected]
}

// wrap soft-wraps text at width, preserving existing newlines.
func wrap(s string, width int) string {
	if width < 10 {
		return s
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		for len(line) > width {
			cut := strings.LastIndex(line[:width], " ")
			if cut <= 0 {
				cut = width
			}
			out = append(out, line[:cut])
			line = strings.TrimLeft(line[cut:], " ")
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
