package board

import (
	"sort"
	"strings"

	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

// Sort fields accepted by Sort.
const (
	SortID      = "id"
	SortTitle   = "title"
	SortEffort  = "effort"
	SortNextDue = "next_due"
	SortTag     = "tag"
	SortCreated = "created"
)

// ValidSortFields returns the list of valid --sort field names.
func ValidSortFields() []string {
	return []string{SortID, SortTitle, SortEffort, SortNextDue, SortTag, SortCreated}
}

// Sort sorts tasks by the given field. Tags sort in declaration order,
// not alphabetically. Unknown fields sort by ID.
func Sort(tasks []*task.Task, field string, reverse bool) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if reverse {
			return compareTasks(tasks[j], tasks[i], field)
		}
		return compareTasks(tasks[i], tasks[j], field)
	})
}

func compareTasks(a, b *task.Task, field string) bool {
	switch field {
	case SortTitle:
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	case SortEffort:
		return a.Effort < b.Effort
	case SortNextDue:
		return compareNextDue(a, b)
	case SortTag:
		return tagIndex(a.Tag) < tagIndex(b.Tag)
	case SortCreated:
		return a.Created.Before(b.Created)
	default:
		return a.ID < b.ID
	}
}

func compareNextDue(a, b *task.Task) bool {
	ad, aok := a.NextDueDate()
	bd, bok := b.NextDueDate()
	switch {
	case !aok:
		return false // unreadable dates sort last
	case !bok:
		return true
	default:
		return ad.Before(bd.Time)
	}
}

func tagIndex(t task.Tag) int {
	for i, tag := range task.Tags {
		if tag == t {
			return i
		}
	}
	return len(task.Tags)
}
