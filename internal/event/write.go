package event

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

const fileMode = 0o600

// AppendFile appends events as newline-delimited JSON to the file at path,
// creating it if absent. Append-only is the single writer-side operation
// on the log; nothing ever rewrites or deletes recorded events.
func AppendFile(path string, events []Event) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileMode)
	if err != nil {
		return fmt.Errorf("opening event log: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshaling event: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("writing event: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing event log: %w", err)
	}
	return nil
}
