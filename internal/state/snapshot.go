package state

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spoolhq/spool/internal/repo"
)

const snapshotMode = 0o600

// WriteSnapshot writes the pretty-printed state cache. The cache carries
// no identity of its own; it can be regenerated from the logs at any time.
func WriteSnapshot(ctx *repo.Context, s *State) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}
	if err := os.WriteFile(ctx.StatePath(), data, snapshotMode); err != nil {
		return fmt.Errorf("writing state snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a previously written state cache.
func LoadSnapshot(ctx *repo.Context) (*State, error) {
	data, err := os.ReadFile(ctx.StatePath())
	if err != nil {
		return nil, fmt.Errorf("reading state snapshot: %w", err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing state snapshot: %w", err)
	}
	return &s, nil
}

// LoadOrMaterialize reads the cached snapshot when present and falls back
// to a full replay otherwise. Readers must tolerate the cache's absence.
func LoadOrMaterialize(ctx *repo.Context) (*State, error) {
	if _, err := os.Stat(ctx.StatePath()); err == nil {
		return LoadSnapshot(ctx)
	}
	return Materialize(ctx)
}
