package clierr

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	if got := New(InternalError, "boom").ExitCode(); got != 2 {
		t.Errorf("internal exit code = %d, want 2", got)
	}
	if got := New(EmptyTitle, "please enter a task title").ExitCode(); got != 1 {
		t.Errorf("exit code = %d, want 1", got)
	}
}

func TestErrorsAsThroughWrap(t *testing.T) {
	err := fmt.Errorf("adding task: %w", Newf(InvalidTag, "invalid tag %q", "garden").
		WithDetails(map[string]any{"input": "garden"}))

	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatal("errors.As failed")
	}
	if ce.Code != InvalidTag || ce.Message != `invalid tag "garden"` || ce.Details["input"] != "garden" {
		t.Errorf("got %+v", ce)
	}
}

func TestSilentError(t *testing.T) {
	if got := (&SilentError{Code: 1}).Error(); got != "exit 1" {
		t.Errorf("Error() = %q", got)
	}
}
