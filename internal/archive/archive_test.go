package archive

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/spoolhq/spool/internal/event"
	"github.com/spoolhq/spool/internal/repo"
	"github.com/spoolhq/spool/internal/state"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func ev(op event.Operation, id string, ts time.Time, payload string) event.Event {
	return event.Event{
		Version: 1, Op: op, ID: id, TS: ts, By: "alice", Branch: "main",
		Data: json.RawMessage(payload),
	}
}

func testArchiver(t *testing.T) (*repo.Context, *Archiver) {
	t.Helper()
	ctx, err := repo.Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	a := New(ctx, "@spool", "main")
	a.SetNow(func() time.Time { return now })
	a.SetBranchFunc(func(fallback string) string { return fallback })
	return ctx, a
}

func appendEvents(t *testing.T, path string, events ...event.Event) {
	t.Helper()
	if err := event.AppendFile(path, events); err != nil {
		t.Fatal(err)
	}
}

// seedTask writes a create (and optional complete) into the daily log for
// the create's day.
func seedTask(t *testing.T, ctx *repo.Context, id string, created time.Time, completed *time.Time) {
	t.Helper()
	day := created.Format("2006-01-02")
	events := []event.Event{ev(event.OpCreate, id, created, `{"title":"task `+id+`"}`)}
	if completed != nil {
		events = append(events, ev(event.OpComplete, id, *completed, `{}`))
	}
	appendEvents(t, ctx.EventFile(day), events...)
}

func TestRunSelectsOnlyOldCompleted(t *testing.T) {
	ctx, a := testArchiver(t)

	oldDone := now.AddDate(0, -2, 0)   // 2024-04, well past a 30 day cutoff
	freshDone := now.AddDate(0, 0, -5) // completed but too recent
	seedTask(t, ctx, "T1", oldDone.AddDate(0, 0, -1), &oldDone)
	seedTask(t, ctx, "T2", freshDone.AddDate(0, 0, -1), &freshDone)
	seedTask(t, ctx, "T3", now.AddDate(0, -3, 0), nil) // still open

	report, err := a.Run(30, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := report.IDs(); len(got) != 1 || got[0] != "T1" {
		t.Fatalf("archived ids = %v, want [T1]", got)
	}
	if len(report.Months) != 1 || report.Months[0].Month != "2024-04" || report.Months[0].Count != 1 {
		t.Errorf("months = %+v", report.Months)
	}
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	ctx, a := testArchiver(t)
	done := now.AddDate(0, -2, 0)
	seedTask(t, ctx, "T1", done.AddDate(0, 0, -1), &done)

	report, err := a.Run(30, true)
	if err != nil {
		t.Fatal(err)
	}
	if !report.DryRun || len(report.Tasks) != 1 {
		t.Fatalf("report = %+v", report)
	}

	rollups, err := ctx.ArchiveFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(rollups) != 0 {
		t.Errorf("dry run wrote rollups: %v", rollups)
	}
	if _, err := os.Stat(ctx.EventFile("2024-06-15")); !os.IsNotExist(err) {
		t.Error("dry run appended synthetic events")
	}
}

func TestRunCopiesFullHistoryIntoRollup(t *testing.T) {
	ctx, a := testArchiver(t)
	created := now.AddDate(0, -3, 0)
	done := now.AddDate(0, -2, 0)
	seedTask(t, ctx, "T1", created, &done)
	appendEvents(t, ctx.EventFile(created.AddDate(0, 0, 3).Format("2006-01-02")),
		ev(event.OpComment, "T1", created.AddDate(0, 0, 3), `{"body":"progress"}`))

	if _, err := a.Run(30, false); err != nil {
		t.Fatal(err)
	}

	rollup, err := event.ReadFile(ctx.ArchiveFile(done.Format("2006-01")))
	if err != nil {
		t.Fatal(err)
	}
	if len(rollup) != 3 {
		t.Fatalf("rollup has %d events, want full history of 3", len(rollup))
	}
	// seedTask writes create and complete into the create day's file, so
	// discovery order is create, complete, then the later comment file.
	ops := []event.Operation{rollup[0].Op, rollup[1].Op, rollup[2].Op}
	if ops[0] != event.OpCreate || ops[1] != event.OpComplete || ops[2] != event.OpComment {
		t.Errorf("rollup order = %v", ops)
	}

	// Daily logs are left untouched; archiving is additive-only.
	daily, err := event.ReadFile(ctx.EventFile(created.Format("2006-01-02")))
	if err != nil {
		t.Fatal(err)
	}
	if len(daily) != 2 {
		t.Errorf("daily log pruned to %d events", len(daily))
	}
}

func TestRunAppendsSyntheticArchiveEvent(t *testing.T) {
	ctx, a := testArchiver(t)
	done := now.AddDate(0, -2, 0)
	seedTask(t, ctx, "T1", done.AddDate(0, 0, -1), &done)

	if _, err := a.Run(30, false); err != nil {
		t.Fatal(err)
	}

	todays, err := event.ReadFile(ctx.EventFile("2024-06-15"))
	if err != nil {
		t.Fatal(err)
	}
	if len(todays) != 1 {
		t.Fatalf("today's log has %d events, want 1 synthetic archive event", len(todays))
	}
	got := todays[0]
	if got.Op != event.OpArchive || got.ID != "T1" || got.By != "@spool" || got.Branch != "main" {
		t.Errorf("synthetic event = %+v", got)
	}
	if ref := got.ArchiveData().Ref; ref != done.Format("2006-01") {
		t.Errorf("archive ref = %q, want %s", ref, done.Format("2006-01"))
	}

	// Replaying now shows the task as archived.
	st, err := state.Materialize(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Tasks["T1"].Archived != done.Format("2006-01") {
		t.Errorf("archived ref after replay = %q", st.Tasks["T1"].Archived)
	}
}

func TestRunIdempotent(t *testing.T) {
	ctx, a := testArchiver(t)
	done := now.AddDate(0, -2, 0)
	seedTask(t, ctx, "T1", done.AddDate(0, 0, -1), &done)

	first, err := a.Run(30, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Tasks) != 1 {
		t.Fatalf("first run archived %d tasks", len(first.Tasks))
	}

	second, err := a.Run(30, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Tasks) != 0 {
		t.Errorf("second run archived %v, want nothing", second.IDs())
	}

	rollup, err := event.ReadFile(ctx.ArchiveFile(done.Format("2006-01")))
	if err != nil {
		t.Fatal(err)
	}
	if len(rollup) != 2 {
		t.Errorf("rollup grew to %d events on re-run", len(rollup))
	}
}

func TestRunOrdersByCompletion(t *testing.T) {
	ctx, a := testArchiver(t)
	older := now.AddDate(0, -3, 0)
	newer := now.AddDate(0, -2, 0)
	seedTask(t, ctx, "TB", newer.AddDate(0, 0, -1), &newer)
	seedTask(t, ctx, "TA", older.AddDate(0, 0, -1), &older)

	report, err := a.Run(30, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := report.IDs(); len(got) != 2 || got[0] != "TA" || got[1] != "TB" {
		t.Errorf("ids = %v, want oldest completion first", got)
	}
}
