// Package index builds a compact per-task summary from the active event
// logs: status, date range, and the files each task's events live in.
// It answers existence and date-range queries without materializing full
// task bodies.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spoolhq/spool/internal/date"
	"github.com/spoolhq/spool/internal/event"
	"github.com/spoolhq/spool/internal/repo"
	"github.com/spoolhq/spool/internal/state"
)

// TaskIndex is the summary kept for one task id.
type TaskIndex struct {
	Status    state.Status `json:"status"`
	Created   date.Date    `json:"created"`
	Updated   date.Date    `json:"updated"`
	Completed *date.Date   `json:"completed,omitempty"`
	Files     []string     `json:"files"`
	Archived  string       `json:"archived,omitempty"`
}

// Index maps task id to its summary, with the instant it was rebuilt.
type Index struct {
	Tasks   map[string]*TaskIndex `json:"tasks"`
	Rebuilt time.Time             `json:"rebuilt"`
}

// Build scans the active event logs only — never the archive rollups.
// Because archiving copies events without pruning the daily logs, the
// contributing-file sets here are a possibly-superset view; that is the
// intended staleness boundary, not a defect to fix by scanning archives.
func Build(ctx *repo.Context) (*Index, error) {
	files, err := ctx.EventFiles()
	if err != nil {
		return nil, err
	}

	taskFiles := make(map[string]map[string]bool)
	entries := make(map[string]*TaskIndex)

	for _, path := range files {
		name := filepath.Base(path)
		events, err := event.ReadFile(path)
		if err != nil {
			return nil, err
		}
		for _, ev := range events {
			if taskFiles[ev.ID] == nil {
				taskFiles[ev.ID] = make(map[string]bool)
			}
			taskFiles[ev.ID][name] = true

			apply(entries, ev)
		}
	}

	tasks := make(map[string]*TaskIndex, len(entries))
	for id, entry := range entries {
		entry.Files = sortedKeys(taskFiles[id])
		tasks[id] = entry
	}

	return &Index{Tasks: tasks, Rebuilt: time.Now().UTC()}, nil
}

// apply tracks the per-task 5-tuple the same way materialization does,
// storing calendar dates rather than full task bodies. Only create seeds
// an entry; everything else bumps updated at minimum.
func apply(entries map[string]*TaskIndex, ev event.Event) {
	day := date.Of(ev.TS)

	if ev.Op == event.OpCreate {
		entries[ev.ID] = &TaskIndex{Status: state.StatusOpen, Created: day, Updated: day}
		return
	}

	entry, ok := entries[ev.ID]
	if !ok {
		return
	}

	switch ev.Op {
	case event.OpComplete:
		entry.Status = state.StatusComplete
		completed := day
		entry.Completed = &completed
	case event.OpReopen:
		entry.Status = state.StatusOpen
		entry.Completed = nil
	case event.OpArchive:
		entry.Archived = ev.ArchiveData().Ref
	}

	entry.Updated = day
}

// Write persists the pretty-printed index cache.
func Write(ctx *repo.Context, idx *Index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling index: %w", err)
	}
	if err := os.WriteFile(ctx.IndexPath(), data, 0o600); err != nil {
		return fmt.Errorf("writing index snapshot: %w", err)
	}
	return nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
