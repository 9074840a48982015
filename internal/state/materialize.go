package state

import (
	"slices"
	"time"

	"github.com/spoolhq/spool/internal/event"
	"github.com/spoolhq/spool/internal/repo"
)

// Materialize replays the full event log into a State: archive rollups
// first, then the daily logs, each group in filename order. This models
// "older history, then active history" and must not be reordered, since
// operations depend on sequence (e.g. complete after reopen).
func Materialize(ctx *repo.Context) (*State, error) {
	tasks := make(map[string]*Task)

	archives, err := ctx.ArchiveFiles()
	if err != nil {
		return nil, err
	}
	actives, err := ctx.EventFiles()
	if err != nil {
		return nil, err
	}

	for _, path := range append(archives, actives...) {
		events, err := event.ReadFile(path)
		if err != nil {
			return nil, err
		}
		for _, ev := range events {
			Apply(tasks, ev)
		}
	}

	return &State{Tasks: tasks, Rebuilt: time.Now().UTC()}, nil
}

// Replay folds an ordered event sequence into a task map. It is pure and
// total: events it cannot apply are ignored, never an error.
func Replay(events []event.Event) map[string]*Task {
	tasks := make(map[string]*Task)
	for _, ev := range events {
		Apply(tasks, ev)
	}
	return tasks
}

// Apply folds a single event into the task map. Every operation except
// create is a no-op when the target id has never been created; replay
// must tolerate events for ids it has not seen without failing.
func Apply(tasks map[string]*Task, ev event.Event) {
	if ev.Op == event.OpCreate {
		applyCreate(tasks, ev)
		return
	}

	t, ok := tasks[ev.ID]
	if !ok {
		return
	}

	switch ev.Op {
	case event.OpUpdate:
		applyUpdate(t, ev)
	case event.OpAssign:
		d := ev.AssignData()
		if d.To != nil {
			t.Assignee = *d.To
		} else {
			t.Assignee = ""
		}
	case event.OpComment:
		d := ev.CommentData()
		t.Comments = append(t.Comments, Comment{TS: ev.TS, By: ev.By, Body: d.Body, Ref: d.Ref})
	case event.OpLink:
		applyLink(t, ev.LinkData())
	case event.OpUnlink:
		applyUnlink(t, ev.LinkData())
	case event.OpComplete:
		d := ev.CompleteData()
		t.Status = StatusComplete
		ts := ev.TS
		t.Completed = &ts
		if d.Resolution != nil {
			t.Resolution = *d.Resolution
		} else {
			t.Resolution = "done"
		}
	case event.OpReopen:
		t.Status = StatusOpen
		t.Completed = nil
		t.Resolution = ""
	case event.OpArchive:
		t.Archived = ev.ArchiveData().Ref
	}

	t.Updated = ev.TS
}

// applyCreate inserts a fresh task. Re-creating an existing id overwrites
// it: last create wins, with no duplicate detection at this layer. The
// validator flags duplicates as warnings.
func applyCreate(tasks map[string]*Task, ev event.Event) {
	d := ev.CreateData()
	tasks[ev.ID] = &Task{
		ID:            ev.ID,
		Title:         d.Title,
		Description:   d.Description,
		Status:        StatusOpen,
		Priority:      d.Priority,
		Tags:          orEmpty(d.Tags),
		Assignee:      d.Assignee,
		Created:       ev.TS,
		CreatedBy:     ev.By,
		CreatedBranch: ev.Branch,
		Updated:       ev.TS,
		Parent:        d.Parent,
		Blocks:        orEmpty(d.Blocks),
		BlockedBy:     orEmpty(d.BlockedBy),
		Comments:      []Comment{},
	}
}

func applyUpdate(t *Task, ev event.Event) {
	d := ev.UpdateData()
	if d.Title != nil {
		t.Title = *d.Title
	}
	if d.Description != nil {
		t.Description = *d.Description
	}
	if d.Priority != nil {
		t.Priority = *d.Priority
	}
	if d.Tags != nil {
		t.Tags = orEmpty(*d.Tags)
	}
}

// applyLink edits relation fields. blocks and blocked_by have set
// semantics; parent is overwritten. Unrecognized relations are ignored,
// but the event still bumps updated.
func applyLink(t *Task, d event.LinkPayload) {
	if d.Target == "" {
		return
	}
	switch d.Rel {
	case event.RelBlocks:
		if !slices.Contains(t.Blocks, d.Target) {
			t.Blocks = append(t.Blocks, d.Target)
		}
	case event.RelBlockedBy:
		if !slices.Contains(t.BlockedBy, d.Target) {
			t.BlockedBy = append(t.BlockedBy, d.Target)
		}
	case event.RelParent:
		t.Parent = d.Target
	}
}

// applyUnlink is the inverse of applyLink. Parent is only cleared when it
// currently equals the target.
func applyUnlink(t *Task, d event.LinkPayload) {
	if d.Target == "" {
		return
	}
	switch d.Rel {
	case event.RelBlocks:
		t.Blocks = remove(t.Blocks, d.Target)
	case event.RelBlockedBy:
		t.BlockedBy = remove(t.BlockedBy, d.Target)
	case event.RelParent:
		if t.Parent == d.Target {
			t.Parent = ""
		}
	}
}

// orEmpty normalizes nil slices so snapshots serialize [] rather than null.
func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func remove(s []string, target string) []string {
	out := s[:0]
	for _, v := range s {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
