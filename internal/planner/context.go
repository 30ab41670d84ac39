package planner

import (
	"time"

	"github.com/twiced-technology-gmbh/lifereset/internal/clierr"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

// Planning window and sprint bounds, in minutes.
const (
	MinTimeAvailable = 10
	MaxTimeAvailable = 180
	TimeStep         = 5

	MinSprintMinutes = 30
	MaxSprintMinutes = 240
	SprintStep       = 15
)

// DefaultLead is the gap between invocation and the first scheduled block.
const DefaultLead = 5 * time.Minute

// Context is what the user told the planner right now.
type Context struct {
	TimeAvailable int         `json:"time_available"`
	Energy        task.Energy `json:"energy"`
}

// Validate checks the time window and the energy level.
func (c Context) Validate() error {
	if c.TimeAvailable < MinTimeAvailable || c.TimeAvailable > MaxTimeAvailable {
		return clierr.Newf(clierr.OutOfRange,
			"time available must be between %d and %d minutes, got %d",
			MinTimeAvailable, MaxTimeAvailable, c.TimeAvailable).
			WithDetails(map[string]any{
				"time_available": c.TimeAvailable,
				"min":            MinTimeAvailable,
				"max":            MaxTimeAvailable,
			})
	}
	return task.ValidateEnergy(string(c.Energy))
}

// ValidateSprintMinutes checks a sprint budget.
func ValidateSprintMinutes(minutes int) error {
	if minutes >= MinSprintMinutes && minutes <= MaxSprintMinutes {
		return nil
	}
	return clierr.Newf(clierr.OutOfRange,
		"sprint length must be between %d and %d minutes, got %d",
		MinSprintMinutes, MaxSprintMinutes, minutes).
		WithDetails(map[string]any{
			"sprint_minutes": minutes,
			"min":            MinSprintMinutes,
			"max":            MaxSprintMinutes,
		})
}

// Step moves minutes by delta and clamps the result to [lo, hi].
func Step(minutes, delta, lo, hi int) int {
	return min(max(minutes+delta, lo), hi)
}
