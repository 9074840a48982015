// Package gitutil queries the ambient git repository.
package gitutil

import (
	"os/exec"
	"strings"
)

// CurrentBranch returns the checked-out branch name, best-effort.
// Outside a git repository, or when git is unavailable, it returns
// fallback instead of an error.
func CurrentBranch(fallback string) string {
	out, err := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD").Output()
	if err != nil {
		return fallback
	}
	branch := strings.TrimSpace(string(out))
	if branch == "" {
		return fallback
	}
	return branch
}
