package planner

import (
	"time"

	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

const (
	urgencyHorizon = 14
	// fallbackDays is assumed when a task's next due date cannot be parsed.
	fallbackDays = 7
)

// Weights are the score multipliers. Missing keys weigh 1.0.
type Weights struct {
	Energy map[task.Energy]float64
	Tag    map[task.Tag]float64
}

// DefaultWeights favour money and admin chores and scale with energy.
var DefaultWeights = Weights{
	Energy: map[task.Energy]float64{
		task.Low:    0.8,
		task.Medium: 1.0,
		task.High:   1.2,
	},
	Tag: map[task.Tag]float64{
		task.Money:  2,
		task.Admin:  1.5,
		task.Home:   1.2,
		task.Health: 1.1,
		task.Other:  1.0,
	},
}

func (w Weights) energy(e task.Energy) float64 {
	if v, ok := w.Energy[e]; ok {
		return v
	}
	return 1.0
}

func (w Weights) tag(t task.Tag) float64 {
	if v, ok := w.Tag[t]; ok {
		return v
	}
	return 1.0
}

// Scored is a task with its computed urgency and score.
type Scored struct {
	Task    *task.Task `json:"task"`
	Urgency int        `json:"urgency"`
	Score   float64    `json:"score"`
}

// Urgency is max(0, 14 - days until the task is next due). A missing or
// malformed next due date counts as 7 days away.
func Urgency(t *task.Task, now time.Time) int {
	days := fallbackDays
	if d, ok := t.NextDueDate(); ok {
		days = d.DaysFrom(now)
	}
	return max(0, urgencyHorizon-days)
}

// Score computes (urgency + 1) * energy weight * tag weight.
func Score(t *task.Task, energy task.Energy, now time.Time, w Weights) Scored {
	u := Urgency(t, now)
	return Scored{
		Task:    t,
		Urgency: u,
		Score:   float64(u+1) * w.energy(energy) * w.tag(t.Tag),
	}
}

// Candidates keeps the tasks that fit in ctx.TimeAvailable and scores them.
// Input order is preserved.
func Candidates(tasks []*task.Task, ctx Context, now time.Time, w Weights) []Scored {
	var out []Scored
	for _, t := range tasks {
		if t.Effort > ctx.TimeAvailable {
			continue
		}
		out = append(out, Score(t, ctx.Energy, now, w))
	}
	return out
}
