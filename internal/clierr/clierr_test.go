package clierr

import "testing"

func TestExitCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{TaskNotFound, 1},
		{RepoNotFound, 1},
		{ValidationFailed, 1},
		{InternalError, 2},
	}
	for _, tt := range tests {
		if got := New(tt.code, "msg").ExitCode(); got != tt.want {
			t.Errorf("ExitCode(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestNewf(t *testing.T) {
	err := Newf(TaskNotFound, "task %s not found", "T1")
	if err.Error() != "task T1 not found" {
		t.Errorf("message = %q", err.Error())
	}
	if err.Code != TaskNotFound {
		t.Errorf("code = %q", err.Code)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(InvalidInput, "bad").WithDetails(map[string]any{"field": "status"})
	if err.Details["field"] != "status" {
		t.Errorf("details = %v", err.Details)
	}
}
