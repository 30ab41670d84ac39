package planner

import "sort"

// Rank sorts scored tasks in place: score descending, then effort
// ascending. Equal pairs keep their input order.
func Rank(scored []Scored) []Scored {
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Task.Effort < b.Task.Effort
	})
	return scored
}

// Top returns at most k entries from the front of a ranked list.
func Top(ranked []Scored, k int) []Scored {
	if k < 0 {
		k = 0
	}
	if len(ranked) > k {
		return ranked[:k]
	}
	return ranked
}
