// Package board provides collection-level operations on tasks: listing,
// filtering, grouping and the overview summary.
package board

import (
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/lifereset/internal/date"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

// FilterOptions defines which tasks to include.
type FilterOptions struct {
	Tags        []string
	Frequencies []string
	Energies    []string
	Search      string // case-insensitive substring match across title and notes
	DueWithin   *int   // nil=no filter, otherwise next due on or before today+N days
}

// Filter returns tasks matching all specified criteria (AND logic).
func Filter(tasks []*task.Task, opts FilterOptions, now time.Time) []*task.Task {
	var result []*task.Task
	for _, t := range tasks {
		if matchesFilter(t, opts, now) {
			result = append(result, t)
		}
	}
	return result
}

func matchesFilter(t *task.Task, opts FilterOptions, now time.Time) bool {
	if len(opts.Tags) > 0 && !containsStr(opts.Tags, string(t.Tag)) {
		return false
	}
	if len(opts.Frequencies) > 0 && !containsStr(opts.Frequencies, string(t.Frequency)) {
		return false
	}
	if len(opts.Energies) > 0 && !containsStr(opts.Energies, string(t.Energy)) {
		return false
	}
	if opts.Search != "" && !matchesSearch(t, opts.Search) {
		return false
	}
	if opts.DueWithin != nil && !dueWithin(t, *opts.DueWithin, now) {
		return false
	}
	return true
}

// matchesSearch performs case-insensitive substring matching across title and notes.
func matchesSearch(t *task.Task, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Notes), q)
}

// dueWithin reports whether t is next due no later than days after today.
// Overdue tasks match. Tasks with an unreadable next due date never match.
func dueWithin(t *task.Task, days int, now time.Time) bool {
	nd, ok := t.NextDueDate()
	if !ok {
		return false
	}
	limit := date.Of(now).AddDate(0, 0, days)
	return !nd.After(limit)
}

func containsStr(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
