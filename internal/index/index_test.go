package index

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/spoolhq/spool/internal/event"
	"github.com/spoolhq/spool/internal/repo"
	"github.com/spoolhq/spool/internal/state"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func ev(op event.Operation, id string, ts time.Time, payload string) event.Event {
	return event.Event{
		Version: 1, Op: op, ID: id, TS: ts, By: "alice", Branch: "main",
		Data: json.RawMessage(payload),
	}
}

func testRepo(t *testing.T) *repo.Context {
	t.Helper()
	ctx, err := repo.Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return ctx
}

func appendEvents(t *testing.T, path string, events ...event.Event) {
	t.Helper()
	if err := event.AppendFile(path, events); err != nil {
		t.Fatal(err)
	}
}

func TestBuild(t *testing.T) {
	ctx := testRepo(t)
	appendEvents(t, ctx.EventFile("2024-03-01"),
		ev(event.OpCreate, "T1", t0, `{"title":"a"}`),
		ev(event.OpCreate, "T2", t0.Add(time.Minute), `{"title":"b"}`))
	appendEvents(t, ctx.EventFile("2024-03-05"),
		ev(event.OpComplete, "T1", t0.AddDate(0, 0, 4), `{}`))

	idx, err := Build(ctx)
	if err != nil {
		t.Fatal(err)
	}

	e1 := idx.Tasks["T1"]
	if e1 == nil {
		t.Fatal("T1 missing from index")
	}
	if e1.Status != state.StatusComplete {
		t.Errorf("T1 status = %q, want complete", e1.Status)
	}
	if got := e1.Created.String(); got != "2024-03-01" {
		t.Errorf("T1 created = %q", got)
	}
	if e1.Completed == nil || e1.Completed.String() != "2024-03-05" {
		t.Errorf("T1 completed = %v", e1.Completed)
	}
	if len(e1.Files) != 2 || e1.Files[0] != "2024-03-01.jsonl" || e1.Files[1] != "2024-03-05.jsonl" {
		t.Errorf("T1 files = %v", e1.Files)
	}

	e2 := idx.Tasks["T2"]
	if e2.Status != state.StatusOpen || e2.Completed != nil {
		t.Errorf("T2 = %+v, want open with no completed date", e2)
	}
	if len(e2.Files) != 1 || e2.Files[0] != "2024-03-01.jsonl" {
		t.Errorf("T2 files = %v", e2.Files)
	}
}

func TestBuildIgnoresArchiveRollups(t *testing.T) {
	ctx := testRepo(t)
	appendEvents(t, ctx.ArchiveFile("2024-02"),
		ev(event.OpCreate, "T1", t0, `{"title":"archived only"}`))

	idx, err := Build(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(idx.Tasks) != 0 {
		t.Errorf("index must scan active logs only, got %d tasks", len(idx.Tasks))
	}
}

func TestBuildFilesRecordedForUncreatedIDs(t *testing.T) {
	ctx := testRepo(t)
	// A comment before any create: no entry is seeded, but once the
	// create arrives in a later file the earlier file still counts.
	appendEvents(t, ctx.EventFile("2024-03-01"),
		ev(event.OpComment, "T1", t0, `{"body":"early"}`))
	appendEvents(t, ctx.EventFile("2024-03-02"),
		ev(event.OpCreate, "T1", t0.AddDate(0, 0, 1), `{}`))

	idx, err := Build(ctx)
	if err != nil {
		t.Fatal(err)
	}
	e := idx.Tasks["T1"]
	if e == nil {
		t.Fatal("T1 missing")
	}
	if len(e.Files) != 2 {
		t.Errorf("files = %v, want both contributing files", e.Files)
	}
}

func TestBuildReopenClearsCompleted(t *testing.T) {
	ctx := testRepo(t)
	appendEvents(t, ctx.EventFile("2024-03-01"),
		ev(event.OpCreate, "T1", t0, `{}`),
		ev(event.OpComplete, "T1", t0.Add(time.Hour), `{}`),
		ev(event.OpReopen, "T1", t0.Add(2*time.Hour), `{}`))

	idx, err := Build(ctx)
	if err != nil {
		t.Fatal(err)
	}
	e := idx.Tasks["T1"]
	if e.Status != state.StatusOpen || e.Completed != nil {
		t.Errorf("after reopen: %+v", e)
	}
}

func TestWrite(t *testing.T) {
	ctx := testRepo(t)
	appendEvents(t, ctx.EventFile("2024-03-01"),
		ev(event.OpCreate, "T1", t0, `{}`))

	idx, err := Build(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := Write(ctx, idx); err != nil {
		t.Fatal(err)
	}

	raw, err := readIndexFile(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := raw.Tasks["T1"]; !ok {
		t.Error("written index missing T1")
	}
}

func readIndexFile(ctx *repo.Context) (*Index, error) {
	data, err := os.ReadFile(ctx.IndexPath())
	if err != nil {
		return nil, err
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}
