// Package repo locates and describes a spool repository: a .spool/
// directory holding daily event logs, monthly archive rollups, and the
// derived snapshot caches.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spoolhq/spool/internal/clierr"
)

// Directory and file names inside the repository root.
const (
	DefaultDir     = ".spool"
	EventsDirName  = "events"
	ArchiveDirName = "archive"
	StateFileName  = ".state.json"
	IndexFileName  = ".index.json"
	LockFileName   = ".lock"

	logExt  = ".jsonl"
	dirMode = 0o750
)

// Context is the explicit handle threaded into every engine operation.
// There is no ambient global state; anything that touches the repository
// goes through one of these.
type Context struct {
	Root       string
	EventsDir  string
	ArchiveDir string
}

// New returns a Context rooted at the given .spool directory.
func New(root string) *Context {
	return &Context{
		Root:       root,
		EventsDir:  filepath.Join(root, EventsDirName),
		ArchiveDir: filepath.Join(root, ArchiveDirName),
	}
}

// Discover walks upward from startDir looking for a .spool directory.
func Discover(startDir string) (*Context, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	for {
		candidate := filepath.Join(dir, DefaultDir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return New(candidate), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, clierr.New(clierr.RepoNotFound,
				"not in a spool repository (run 'spool init' to create one)")
		}
		dir = parent
	}
}

// Init creates a .spool repository under dir. It refuses to reinitialize
// an existing one.
func Init(dir string) (*Context, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	root := filepath.Join(absDir, DefaultDir)
	if _, err := os.Stat(root); err == nil {
		return nil, clierr.Newf(clierr.RepoAlreadyExists, "%s already exists", root).
			WithDetails(map[string]any{"root": root})
	}

	ctx := New(root)
	if err := os.MkdirAll(ctx.EventsDir, dirMode); err != nil {
		return nil, fmt.Errorf("creating events directory: %w", err)
	}
	if err := os.MkdirAll(ctx.ArchiveDir, dirMode); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	if err := writeGitignore(root); err != nil {
		return nil, err
	}

	return ctx, nil
}

// writeGitignore marks the derived caches as ignorable: they are rebuilt
// from events, not source of truth.
func writeGitignore(root string) error {
	const fileMode = 0o600
	content := strings.Join([]string{
		"# Derived files - rebuilt from events, not source of truth.",
		StateFileName,
		IndexFileName,
		LockFileName,
		"*.tmp",
		"*.bak",
		"",
	}, "\n")
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte(content), fileMode); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}

// StatePath returns the path of the materialized state snapshot.
func (c *Context) StatePath() string {
	return filepath.Join(c.Root, StateFileName)
}

// IndexPath returns the path of the index snapshot.
func (c *Context) IndexPath() string {
	return filepath.Join(c.Root, IndexFileName)
}

// LockPath returns the path of the advisory lock file.
func (c *Context) LockPath() string {
	return filepath.Join(c.Root, LockFileName)
}

// EventFile returns the path of the daily log for the given YYYY-MM-DD day.
func (c *Context) EventFile(day string) string {
	return filepath.Join(c.EventsDir, day+logExt)
}

// ArchiveFile returns the path of the rollup for the given YYYY-MM month.
func (c *Context) ArchiveFile(month string) string {
	return filepath.Join(c.ArchiveDir, month+logExt)
}

// EventFiles lists the daily log files sorted lexicographically by name.
// Filenames are date-stamped, so lexicographic order is chronological order.
func (c *Context) EventFiles() ([]string, error) {
	return listLogs(c.EventsDir)
}

// ArchiveFiles lists the monthly rollup files sorted lexicographically
// by name.
func (c *Context) ArchiveFiles() ([]string, error) {
	return listLogs(c.ArchiveDir)
}

func listLogs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != logExt {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
