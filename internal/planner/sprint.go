package planner

import (
	"time"

	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

// Block is one task placed on the clock.
type Block struct {
	Task  *task.Task `json:"task"`
	Score float64    `json:"score"`
	Start time.Time  `json:"start"`
	End   time.Time  `json:"end"`
}

// Duration returns End - Start.
func (b Block) Duration() time.Duration {
	return b.End.Sub(b.Start)
}

// SprintPlan is the result of packing and scheduling a sprint.
type SprintPlan struct {
	Budget   int     `json:"budget"`
	Used     int     `json:"used"`
	Overflow bool    `json:"overflow"`
	Blocks   []Block `json:"blocks"`
}

// Pack walks a ranked pool once and takes every task whose effort still fits
// in the remaining budget. It never backtracks. If nothing fits but the pool
// is not empty, the first (highest ranked) task is returned alone, even
// though it exceeds the budget.
func Pack(pool []Scored, budget int) []Scored {
	remaining := budget
	var chosen []Scored
	for _, s := range pool {
		if s.Task.Effort <= remaining {
			chosen = append(chosen, s)
			remaining -= s.Task.Effort
		}
	}
	if len(chosen) == 0 && len(pool) > 0 {
		chosen = []Scored{pool[0]}
	}
	return chosen
}

// Schedule lays chosen tasks out back to back, the first starting at start.
func Schedule(chosen []Scored, start time.Time) []Block {
	blocks := make([]Block, 0, len(chosen))
	cur := start
	for _, s := range chosen {
		end := cur.Add(time.Duration(s.Task.Effort) * time.Minute)
		blocks = append(blocks, Block{Task: s.Task, Score: s.Score, Start: cur, End: end})
		cur = end
	}
	return blocks
}

// Sprint packs pool into budget minutes and schedules the result from start.
func Sprint(pool []Scored, budget int, start time.Time) SprintPlan {
	chosen := Pack(pool, budget)
	used := 0
	for _, s := range chosen {
		used += s.Task.Effort
	}
	return SprintPlan{
		Budget:   budget,
		Used:     used,
		Overflow: used > budget,
		Blocks:   Schedule(chosen, start),
	}
}
