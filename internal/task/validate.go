package task

import (
	"slices"

	"github.com/twiced-technology-gmbh/lifereset/internal/clierr"
)

// ErrEmptyTitle is returned when a task is added without a title.
func ErrEmptyTitle() *clierr.Error {
	return clierr.New(clierr.EmptyTitle, "please enter a task title")
}

// ErrTaskNotFound returns a CLIError for a missing task ID.
func ErrTaskNotFound(id int) *clierr.Error {
	return clierr.Newf(clierr.TaskNotFound, "task not found: #%d", id).
		WithDetails(map[string]any{"id": id})
}

// ValidateFrequency checks that s names a known frequency.
func ValidateFrequency(s string) error {
	if slices.Contains(Frequencies, Frequency(s)) {
		return nil
	}
	return clierr.Newf(clierr.InvalidFrequency, "invalid frequency %q", s).
		WithDetails(map[string]any{
			"frequency": s,
			"allowed":   Frequencies,
		})
}

// ValidateTag checks that s names a known tag.
func ValidateTag(s string) error {
	if slices.Contains(Tags, Tag(s)) {
		return nil
	}
	return clierr.Newf(clierr.InvalidTag, "invalid tag %q", s).
		WithDetails(map[string]any{
			"tag":     s,
			"allowed": Tags,
		})
}

// ValidateEnergy checks that s names a known energy level.
func ValidateEnergy(s string) error {
	if slices.Contains(Energies, Energy(s)) {
		return nil
	}
	return clierr.Newf(clierr.InvalidEnergy, "invalid energy level %q", s).
		WithDetails(map[string]any{
			"energy":  s,
			"allowed": Energies,
		})
}

// ValidateEffort checks that minutes lies within [MinEffort, MaxEffort].
func ValidateEffort(minutes int) error {
	if minutes >= MinEffort && minutes <= MaxEffort {
		return nil
	}
	return clierr.Newf(clierr.InvalidEffort,
		"effort must be between %d and %d minutes, got %d", MinEffort, MaxEffort, minutes).
		WithDetails(map[string]any{
			"effort": minutes,
			"min":    MinEffort,
			"max":    MaxEffort,
		})
}

// ValidateDate returns a CLIError for invalid date input.
func ValidateDate(field, input string, err error) *clierr.Error {
	return clierr.Newf(clierr.InvalidDate, "invalid %s date: %v", field, err).
		WithDetails(map[string]any{
			"field": field,
			"input": input,
		})
}

// ValidateTaskID returns a CLIError for invalid task ID input.
func ValidateTaskID(input string) *clierr.Error {
	return clierr.Newf(clierr.InvalidTaskID, "invalid task ID %q", input).
		WithDetails(map[string]any{"input": input})
}

// FormatDueDate returns a CLIError for invalid due date input.
func FormatDueDate(input string, err error) *clierr.Error {
	return ValidateDate("due", input, err)
}
