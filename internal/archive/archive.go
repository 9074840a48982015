// Package archive relocates the event history of old completed tasks into
// monthly rollup files. Archiving is additive-only: events are copied into
// the rollup and the daily logs are left untouched, so the active log
// remains a superset of everything ever recorded.
package archive

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/spoolhq/spool/internal/date"
	"github.com/spoolhq/spool/internal/event"
	"github.com/spoolhq/spool/internal/filelock"
	"github.com/spoolhq/spool/internal/gitutil"
	"github.com/spoolhq/spool/internal/repo"
	"github.com/spoolhq/spool/internal/state"
)

// Archiver selects and rolls up eligible tasks. The clock and branch
// lookup are injectable for tests.
type Archiver struct {
	ctx            *repo.Context
	actor          string
	branchFallback string
	now            func() time.Time
	branch         func(fallback string) string
}

// New creates an Archiver stamping synthetic events with the given system
// actor identity and branch fallback.
func New(ctx *repo.Context, actor, branchFallback string) *Archiver {
	return &Archiver{
		ctx:            ctx,
		actor:          actor,
		branchFallback: branchFallback,
		now:            time.Now,
		branch:         gitutil.CurrentBranch,
	}
}

// SetNow overrides the clock (for testing).
func (a *Archiver) SetNow(fn func() time.Time) { a.now = fn }

// SetBranchFunc overrides the branch lookup (for testing).
func (a *Archiver) SetBranchFunc(fn func(string) string) { a.branch = fn }

// Selected describes one task chosen for archival.
type Selected struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Month string `json:"month"`
}

// MonthCount reports how many tasks were rolled into one monthly file.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Report is the outcome of an archive run. Tasks are ordered by completion
// instant, oldest first; order affects reporting only, not correctness.
type Report struct {
	Tasks  []Selected   `json:"tasks"`
	Months []MonthCount `json:"months"`
	DryRun bool         `json:"dry_run"`
}

// IDs returns the archived task ids in report order.
func (r *Report) IDs() []string {
	ids := make([]string, len(r.Tasks))
	for i, t := range r.Tasks {
		ids[i] = t.ID
	}
	return ids
}

// Run archives completed tasks whose completion instant is older than the
// cutoff. Already-archived tasks carry a non-empty archived ref and are
// excluded, which makes re-running the same cutoff idempotent. With dryRun
// the selection is reported without touching any file.
func (a *Archiver) Run(days int, dryRun bool) (*Report, error) {
	st, err := state.Materialize(a.ctx)
	if err != nil {
		return nil, err
	}

	cutoff := a.now().Add(-time.Duration(days) * 24 * time.Hour)
	picked := a.selectTasks(st, cutoff)

	report := &Report{DryRun: dryRun}
	for _, t := range picked {
		report.Tasks = append(report.Tasks, Selected{
			ID:    t.ID,
			Title: t.Title,
			Month: date.Month(*t.Completed),
		})
	}
	report.Months = monthCounts(report.Tasks)

	if len(picked) == 0 || dryRun {
		return report, nil
	}

	// Serialize mutating runs; two sequential invocations append, never clobber.
	unlock, err := filelock.Lock(a.ctx.LockPath())
	if err != nil {
		return nil, fmt.Errorf("locking repository: %w", err)
	}
	defer func() { _ = unlock() }()

	byTask, err := a.collectEvents()
	if err != nil {
		return nil, err
	}
	if err := a.writeRollups(report.Tasks, byTask); err != nil {
		return nil, err
	}
	if err := a.appendArchiveEvents(report.Tasks); err != nil {
		return nil, err
	}

	return report, nil
}

// selectTasks returns completed, unarchived tasks finished before the
// cutoff, oldest completion first.
func (a *Archiver) selectTasks(st *state.State, cutoff time.Time) []*state.Task {
	var picked []*state.Task
	for _, t := range st.Tasks {
		if t.Status != state.StatusComplete || t.Archived != "" {
			continue
		}
		if t.Completed == nil || !t.Completed.Before(cutoff) {
			continue
		}
		picked = append(picked, t)
	}
	sort.Slice(picked, func(i, j int) bool {
		if picked[i].Completed.Equal(*picked[j].Completed) {
			return picked[i].ID < picked[j].ID
		}
		return picked[i].Completed.Before(*picked[j].Completed)
	})
	return picked
}

// collectEvents gathers every event ever recorded per task id from the
// active logs, preserving discovery order. The rollup gets the full
// history, not just the events that caused the selection.
func (a *Archiver) collectEvents() (map[string][]event.Event, error) {
	files, err := a.ctx.EventFiles()
	if err != nil {
		return nil, err
	}

	byTask := make(map[string][]event.Event)
	for _, path := range files {
		events, err := event.ReadFile(path)
		if err != nil {
			return nil, err
		}
		for _, ev := range events {
			byTask[ev.ID] = append(byTask[ev.ID], ev)
		}
	}
	return byTask, nil
}

// writeRollups appends each selected task's history to its monthly rollup
// file, create-if-absent. Months are processed in ascending order.
func (a *Archiver) writeRollups(tasks []Selected, byTask map[string][]event.Event) error {
	byMonth := make(map[string][]Selected)
	for _, t := range tasks {
		byMonth[t.Month] = append(byMonth[t.Month], t)
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	for _, month := range months {
		var events []event.Event
		for _, t := range byMonth[month] {
			events = append(events, byTask[t.ID]...)
		}
		if err := event.AppendFile(a.ctx.ArchiveFile(month), events); err != nil {
			return fmt.Errorf("writing rollup %s: %w", month, err)
		}
	}
	return nil
}

// appendArchiveEvents emits one synthetic archive event per task into
// today's daily log. On replay these set the archived ref, which is what
// excludes the task from future selections.
func (a *Archiver) appendArchiveEvents(tasks []Selected) error {
	now := a.now().UTC()
	branch := a.branch(a.branchFallback)

	events := make([]event.Event, 0, len(tasks))
	for _, t := range tasks {
		payload, err := json.Marshal(event.ArchivePayload{Ref: t.Month})
		if err != nil {
			return fmt.Errorf("marshaling archive payload: %w", err)
		}
		events = append(events, event.Event{
			Version: event.SchemaVersion,
			Op:      event.OpArchive,
			ID:      t.ID,
			TS:      now,
			By:      a.actor,
			Branch:  branch,
			Data:    payload,
		})
	}

	today := date.Of(now).String()
	if err := event.AppendFile(a.ctx.EventFile(today), events); err != nil {
		return fmt.Errorf("appending archive events: %w", err)
	}
	return nil
}

// monthCounts tallies selections per month in ascending month order.
func monthCounts(tasks []Selected) []MonthCount {
	counts := make(map[string]int)
	for _, t := range tasks {
		counts[t.Month]++
	}
	months := make([]string, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]MonthCount, 0, len(months))
	for _, m := range months {
		out = append(out, MonthCount{Month: m, Count: counts[m]})
	}
	return out
}
