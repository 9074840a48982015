package repo

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendLog(t *testing.T) {
	ctx, err := Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	entries := []LogEntry{
		{Timestamp: time.Now(), Action: "rebuild", Detail: "5 tasks"},
		{Timestamp: time.Now(), Action: "archive", Detail: "2 tasks"},
	}
	for _, e := range entries {
		if err := ctx.AppendLog(e); err != nil {
			t.Fatal(err)
		}
	}

	f, err := os.Open(filepath.Join(ctx.Root, "activity.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var got []LogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatal(err)
		}
		got = append(got, e)
	}
	if len(got) != 2 {
		t.Fatalf("log has %d entries, want 2", len(got))
	}
	if got[0].Action != "rebuild" || got[1].Action != "archive" {
		t.Errorf("entries = %+v", got)
	}
}
