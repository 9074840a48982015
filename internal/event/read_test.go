package event

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeLog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadFile(t *testing.T) {
	content := `{"v":1,"op":"create","id":"T1","ts":"2024-01-01T10:00:00Z","by":"alice","branch":"main","d":{"title":"Fix bug"}}

{"v":1,"op":"complete","id":"T1","ts":"2024-01-02T10:00:00Z","by":"bob","branch":"main","d":{}}
`
	path := writeLog(t, "2024-01-01.jsonl", content)

	events, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events (blank line skipped), got %d", len(events))
	}
	if events[0].Op != OpCreate || events[1].Op != OpComplete {
		t.Errorf("order not preserved: %s, %s", events[0].Op, events[1].Op)
	}
	if events[0].ID != "T1" || events[0].By != "alice" {
		t.Errorf("envelope not decoded: %+v", events[0])
	}
	want := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	if !events[0].TS.Equal(want) {
		t.Errorf("ts = %v, want %v", events[0].TS, want)
	}
}

func TestReadFileInvalidJSON(t *testing.T) {
	content := `{"v":1,"op":"create","id":"T1","ts":"2024-01-01T10:00:00Z","by":"a","branch":"m","d":{}}
{not json
`
	path := writeLog(t, "2024-01-01.jsonl", content)

	_, err := ReadFile(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON line")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %T: %v", err, err)
	}
	if perr.File != "2024-01-01.jsonl" {
		t.Errorf("File = %q, want 2024-01-01.jsonl", perr.File)
	}
	if perr.Line != 2 {
		t.Errorf("Line = %d, want 2 (1-based)", perr.Line)
	}
}

func TestReadFileMissingEnvelopeField(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"no ts", `{"v":1,"op":"create","id":"T1","by":"a","branch":"m","d":{}}`},
		{"no op", `{"v":1,"id":"T1","ts":"2024-01-01T10:00:00Z","by":"a","branch":"m","d":{}}`},
		{"no d", `{"v":1,"op":"create","id":"T1","ts":"2024-01-01T10:00:00Z","by":"a","branch":"m"}`},
		{"unknown op", `{"v":1,"op":"destroy","id":"T1","ts":"2024-01-01T10:00:00Z","by":"a","branch":"m","d":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeLog(t, "log.jsonl", tt.line+"\n")
			_, err := ReadFile(path)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if perr.Line != 1 {
				t.Errorf("Line = %d, want 1", perr.Line)
			}
		})
	}
}

func TestAppendFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "2024-02-01.jsonl")
	ts := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

	first := []Event{{
		Version: 1, Op: OpCreate, ID: "T1", TS: ts, By: "alice", Branch: "main",
		Data: json.RawMessage(`{"title":"one"}`),
	}}
	second := []Event{{
		Version: 1, Op: OpComment, ID: "T1", TS: ts.Add(time.Hour), By: "bob", Branch: "main",
		Data: json.RawMessage(`{"body":"hi"}`),
	}}

	if err := AppendFile(path, first); err != nil {
		t.Fatal(err)
	}
	if err := AppendFile(path, second); err != nil {
		t.Fatal(err)
	}

	events, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events after two appends, got %d", len(events))
	}
	if events[1].Op != OpComment || events[1].CommentData().Body != "hi" {
		t.Errorf("second append lost: %+v", events[1])
	}
}

func TestPayloadDecodeDefaults(t *testing.T) {
	ev := Event{Op: OpComplete, Data: json.RawMessage(`{}`)}
	if got := ev.CompleteData().Resolution; got != nil {
		t.Errorf("absent resolution = %q, want nil", *got)
	}
	ev = Event{Op: OpComplete, Data: json.RawMessage(`{"resolution":""}`)}
	if got := ev.CompleteData().Resolution; got == nil || *got != "" {
		t.Error("explicit empty resolution must decode as present")
	}

	ev = Event{Op: OpUpdate, Data: json.RawMessage(`{"title":"t"}`)}
	d := ev.UpdateData()
	if d.Title == nil || *d.Title != "t" {
		t.Error("present field should decode")
	}
	if d.Description != nil {
		t.Error("absent field should stay nil")
	}

	// Wrong-typed fields are ignored, not an error.
	ev = Event{Op: OpUpdate, Data: json.RawMessage(`{"title":7,"priority":"p1"}`)}
	d = ev.UpdateData()
	if d.Title != nil {
		t.Error("wrong-typed title should be ignored")
	}
	if d.Priority == nil || *d.Priority != "p1" {
		t.Error("fields after a wrong-typed one should still decode")
	}
}
