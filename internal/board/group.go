package board

import (
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

const (
	fieldTag       = "tag"
	fieldFrequency = "frequency"
	fieldEnergy    = "energy"
)

// GroupedSummary holds tasks grouped by a field.
type GroupedSummary struct {
	Field  string         `json:"field"`
	Groups []GroupSummary `json:"groups"`
}

// GroupSummary is one group within a grouped view.
type GroupSummary struct {
	Key    string       `json:"key"`
	Total  int          `json:"total"`
	Effort int          `json:"effort_minutes"`
	Tasks  []*task.Task `json:"tasks"`
}

// GroupBy groups tasks by the specified field. Groups appear in the
// field's declaration order and empty groups are omitted.
func GroupBy(tasks []*task.Task, field string) GroupedSummary {
	groups := make(map[string]*GroupSummary)
	for _, t := range tasks {
		key := groupKey(t, field)
		g, ok := groups[key]
		if !ok {
			g = &GroupSummary{Key: key}
			groups[key] = g
		}
		g.Total++
		g.Effort += t.Effort
		g.Tasks = append(g.Tasks, t)
	}

	result := GroupedSummary{Field: field, Groups: make([]GroupSummary, 0, len(groups))}
	for _, key := range groupKeys(field) {
		if g, ok := groups[key]; ok {
			result.Groups = append(result.Groups, *g)
			delete(groups, key)
		}
	}
	// Values outside the known set (hand-edited files) go last.
	for _, t := range tasks {
		if g, ok := groups[groupKey(t, field)]; ok {
			result.Groups = append(result.Groups, *g)
			delete(groups, g.Key)
		}
	}
	return result
}

func groupKey(t *task.Task, field string) string {
	switch field {
	case fieldTag:
		return string(t.Tag)
	case fieldFrequency:
		return string(t.Frequency)
	case fieldEnergy:
		return string(t.Energy)
	default:
		return "(all)"
	}
}

func groupKeys(field string) []string {
	var keys []string
	switch field {
	case fieldTag:
		for _, v := range task.Tags {
			keys = append(keys, string(v))
		}
	case fieldFrequency:
		for _, v := range task.Frequencies {
			keys = append(keys, string(v))
		}
	case fieldEnergy:
		for _, v := range task.Energies {
			keys = append(keys, string(v))
		}
	default:
		keys = []string{"(all)"}
	}
	return keys
}

// ValidGroupByFields returns the list of valid --group-by field names.
func ValidGroupByFields() []string {
	return []string{fieldTag, fieldFrequency, fieldEnergy}
}
