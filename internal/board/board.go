package board

import (
	"strconv"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/lifereset/internal/clierr"
	"github.com/twiced-technology-gmbh/lifereset/internal/config"
	"github.com/twiced-technology-gmbh/lifereset/internal/date"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

// DueSoonDays is the window used by the overview's due-soon count.
const DueSoonDays = 7

// ListOptions controls how tasks are listed.
type ListOptions struct {
	Filter  FilterOptions
	SortBy  string
	Reverse bool
	Limit   int
}

// List loads all tasks, applies filters and sorting.
// Uses lenient parsing: malformed task files are skipped and returned as warnings.
func List(cfg *config.Config, opts ListOptions, now time.Time) ([]*task.Task, []task.ReadWarning, error) {
	allTasks, warnings, err := task.ReadAllLenient(cfg.TasksPath())
	if err != nil {
		return nil, nil, err
	}

	tasks := Filter(allTasks, opts.Filter, now)

	sortField := opts.SortBy
	if sortField == "" {
		sortField = SortID
	}
	Sort(tasks, sortField, opts.Reverse)

	if opts.Limit > 0 && len(tasks) > opts.Limit {
		tasks = tasks[:opts.Limit]
	}

	return tasks, warnings, nil
}

// Count holds the number of tasks and their combined effort for one key.
type Count struct {
	Key    string `json:"key"`
	Count  int    `json:"count"`
	Effort int    `json:"effort_minutes"`
}

// Overview is the aggregate planner overview.
type Overview struct {
	Name        string  `json:"name"`
	TotalTasks  int     `json:"total_tasks"`
	TotalEffort int     `json:"total_effort_minutes"`
	Tags        []Count `json:"tags"`
	Frequencies []Count `json:"frequencies"`
	DueSoon     int     `json:"due_soon"`
	Overdue     int     `json:"overdue"`
	Undated     int     `json:"undated"`
}

// Summary computes the overview from all tasks. A task is overdue when its
// next due date is before today, and due soon when it falls within the
// next DueSoonDays days. Tasks whose next due date cannot be read are
// counted as undated.
func Summary(cfg *config.Config, tasks []*task.Task, now time.Time) Overview {
	ov := Overview{Name: cfg.Name, TotalTasks: len(tasks)}

	tags := make(map[task.Tag]*Count, len(task.Tags))
	for _, tg := range task.Tags {
		tags[tg] = &Count{Key: string(tg)}
	}
	freqs := make(map[task.Frequency]*Count, len(task.Frequencies))
	for _, f := range task.Frequencies {
		freqs[f] = &Count{Key: string(f)}
	}

	today := date.Of(now)
	soon := today.AddDate(0, 0, DueSoonDays)
	for _, t := range tasks {
		ov.TotalEffort += t.Effort
		if c, ok := tags[t.Tag]; ok {
			c.Count++
			c.Effort += t.Effort
		}
		if c, ok := freqs[t.Frequency]; ok {
			c.Count++
			c.Effort += t.Effort
		}

		nd, ok := t.NextDueDate()
		switch {
		case !ok:
			ov.Undated++
		case nd.Before(today.Time):
			ov.Overdue++
		case !nd.After(soon):
			ov.DueSoon++
		}
	}

	ov.Tags = make([]Count, 0, len(task.Tags))
	for _, tg := range task.Tags {
		ov.Tags = append(ov.Tags, *tags[tg])
	}
	ov.Frequencies = make([]Count, 0, len(task.Frequencies))
	for _, f := range task.Frequencies {
		ov.Frequencies = append(ov.Frequencies, *freqs[f])
	}
	return ov
}

// ParseIDs splits a comma-separated ID string into deduplicated int IDs.
func ParseIDs(arg string) ([]int, error) {
	parts := strings.Split(arg, ",")
	seen := make(map[int]bool, len(parts))
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil {
			return nil, task.ValidateTaskID(p)
		}
		if !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	if len(ids) == 0 {
		return nil, clierr.New(clierr.InvalidTaskID, "no valid task IDs provided")
	}
	return ids, nil
}
