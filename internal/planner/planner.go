package planner

import (
	"time"

	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

// Planner bundles the scoring weights, shortlist size and clock used by
// one application instance.
type Planner struct {
	Weights Weights
	TopK    int
	Lead    time.Duration
	Now     func() time.Time
}

// New returns a Planner with default weights, a shortlist of 5, a 5 minute
// lead and the wall clock.
func New() *Planner {
	return &Planner{
		Weights: DefaultWeights,
		TopK:    5, //nolint:mnd // default shortlist size
		Lead:    DefaultLead,
		Now:     time.Now,
	}
}

func (p *Planner) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// Pool returns every task that fits ctx, ranked.
func (p *Planner) Pool(tasks []*task.Task, ctx Context) []Scored {
	return Rank(Candidates(tasks, ctx, p.now(), p.Weights))
}

// Suggest returns the top picks for ctx.
func (p *Planner) Suggest(tasks []*task.Task, ctx Context) []Scored {
	return Top(p.Pool(tasks, ctx), p.TopK)
}

// Sprint packs the ranked pool for ctx into budget minutes, with the first
// block starting Lead after now.
func (p *Planner) Sprint(tasks []*task.Task, ctx Context, budget int) SprintPlan {
	return Sprint(p.Pool(tasks, ctx), budget, p.now().Add(p.Lead))
}

// StartAt returns the start of the first block if scheduling happened now.
func (p *Planner) StartAt() time.Time {
	return p.now().Add(p.Lead)
}
