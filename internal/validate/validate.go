// Package validate checks the event log for structural problems and the
// materialized state for referential ones. It never mutates anything and
// never fails on mere findings; escalating warnings to hard failures is
// the caller's policy, applied at the CLI boundary.
package validate

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spoolhq/spool/internal/event"
	"github.com/spoolhq/spool/internal/repo"
	"github.com/spoolhq/spool/internal/state"
)

// Result collects everything a validation pass found. Malformed input is
// an error; semantic inconsistency (duplicate create, event before create,
// dangling reference) is only ever a warning, because replay treats it as
// a no-op rather than a failure.
type Result struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Clean reports whether the pass found nothing at all.
func (r *Result) Clean() bool {
	return len(r.Errors) == 0 && len(r.Warnings) == 0
}

// requiredFields is the event envelope; a line missing any of these is
// structurally broken.
var requiredFields = []string{"v", "op", "id", "ts", "by", "branch", "d"}

// Run scans every log line in file/line order — active logs first, then
// archive rollups, same ordering as replay — and then checks referential
// integrity over the materialized state.
func Run(ctx *repo.Context) (*Result, error) {
	res := &Result{}
	created := make(map[string]bool)

	actives, err := ctx.EventFiles()
	if err != nil {
		return nil, err
	}
	archives, err := ctx.ArchiveFiles()
	if err != nil {
		return nil, err
	}

	for _, path := range append(actives, archives...) {
		checkFile(path, res, created)
	}

	if err := checkReferences(ctx, res); err != nil {
		return nil, err
	}

	return res, nil
}

// checkFile validates one log file line by line. Unlike replay, a bad line
// is recorded and the scan continues; validation wants the full picture.
func checkFile(path string, res *Result, created map[string]bool) {
	name := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Cannot open %s: %v", name, err))
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		checkLine(name, line, []byte(text), res, created)
	}
	if err := scanner.Err(); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s:%d: Read error: %v", name, line+1, err))
	}
}

func checkLine(file string, line int, data []byte, res *Result, created map[string]bool) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s:%d: Invalid JSON: %v", file, line, err))
		return
	}

	flagged := false
	for _, field := range requiredFields {
		if _, ok := raw[field]; !ok {
			res.Errors = append(res.Errors,
				fmt.Sprintf("%s:%d: Missing required field '%s'", file, line, field))
			flagged = true
		}
	}

	// An integer schema version other than the current one is a warning,
	// not an error: newer writers may exist, and their events still replay.
	// Non-integer versions fall through to the strict decode below.
	if v, ok := raw["v"].(float64); ok && v == math.Trunc(v) && v != 1 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("%s:%d: Unknown schema version %d", file, line, int64(v)))
	}

	// Track creates across the whole scan for orphan detection. A create
	// always adds the id, even when it is a duplicate.
	op, opOK := raw["op"].(string)
	id, idOK := raw["id"].(string)
	if opOK && idOK {
		if op == "create" {
			if created[id] {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("%s:%d: Duplicate create for task %s", file, line, id))
			}
			created[id] = true
		} else if !created[id] {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("%s:%d: Event for task %s before create", file, line, id))
		}
	}

	if ts, ok := raw["ts"].(string); ok {
		if _, err := time.Parse(time.RFC3339, ts); err != nil {
			res.Errors = append(res.Errors,
				fmt.Sprintf("%s:%d: Invalid timestamp format: %s", file, line, ts))
			flagged = true
		}
	}

	// The field checks above cover the common breakages with specific
	// messages. Anything else replay would choke on (wrong-typed envelope
	// fields, unknown operations) must still be surfaced: a clean report
	// has to guarantee that a strict read of the log succeeds.
	if !flagged {
		var ev event.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			res.Errors = append(res.Errors,
				fmt.Sprintf("%s:%d: Invalid event: %v", file, line, err))
		}
	}
}

// checkReferences materializes full state and warns about every blocked_by,
// blocks, or parent reference that names a task missing from the map. Replay
// here is lenient: lines that failed the structural checks are skipped, so a
// single bad line does not abort the referential pass.
func checkReferences(ctx *repo.Context, res *Result) error {
	archives, err := ctx.ArchiveFiles()
	if err != nil {
		return err
	}
	actives, err := ctx.EventFiles()
	if err != nil {
		return err
	}

	tasks := make(map[string]*state.Task)
	for _, path := range append(archives, actives...) {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			var ev event.Event
			if err := json.Unmarshal([]byte(text), &ev); err != nil {
				continue
			}
			state.Apply(tasks, ev)
		}
		f.Close()
	}

	ids := make([]string, 0, len(tasks))
	for id := range tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		t := tasks[id]
		for _, ref := range t.BlockedBy {
			if _, ok := tasks[ref]; !ok {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("Task %s references non-existent blocked_by: %s", t.ID, ref))
			}
		}
		for _, ref := range t.Blocks {
			if _, ok := tasks[ref]; !ok {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("Task %s references non-existent blocks: %s", t.ID, ref))
			}
		}
		if t.Parent != "" {
			if _, ok := tasks[t.Parent]; !ok {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("Task %s references non-existent parent: %s", t.ID, t.Parent))
			}
		}
	}

	return nil
}
