package gitutil

import "testing"

func TestCurrentBranchNeverEmpty(t *testing.T) {
	// Whether or not the test runs inside a git checkout, the result is
	// either a real branch name or the fallback, never empty.
	if got := CurrentBranch("main"); got == "" {
		t.Error("CurrentBranch returned empty string")
	}
}
