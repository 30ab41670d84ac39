package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/lifereset/internal/board"
	"github.com/twiced-technology-gmbh/lifereset/internal/planner"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

// TaskCompact renders a list of tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, tasks []*task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, t := range tasks {
		fmt.Fprintln(w, formatTaskLine(t))
	}
}

// TaskDetailCompact renders a single task with detail in compact format.
func TaskDetailCompact(w io.Writer, t *task.Task) {
	fmt.Fprintln(w, formatTaskLine(t))

	ts := "  created:" + t.Created.Format("2006-01-02")
	if t.Due != nil {
		ts += " due:" + t.Due.String()
	}
	fmt.Fprintln(w, ts)

	if t.Notes != "" {
		for _, line := range strings.Split(t.Notes, "\n") {
			fmt.Fprintln(w, "  "+line)
		}
	}
}

// PickCompact renders ranked picks one per line.
func PickCompact(w io.Writer, picks []planner.Scored) {
	if len(picks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks fit the time available.")
		return
	}
	for i, s := range picks {
		fmt.Fprintf(w, "%d. %s score:%s urgency:%d\n",
			i+1, formatTaskLine(s.Task), formatScore(s.Score), s.Urgency)
	}
}

// SprintCompact renders sprint blocks one per line.
func SprintCompact(w io.Writer, plan planner.SprintPlan) {
	fmt.Fprintf(w, "sprint %d/%d min", plan.Used, plan.Budget)
	if plan.Overflow {
		fmt.Fprint(w, " (overflow)")
	}
	fmt.Fprintln(w)
	for _, b := range plan.Blocks {
		fmt.Fprintf(w, "%s-%s #%d %s\n",
			b.Start.Format(timeLayout), b.End.Format(timeLayout), b.Task.ID, b.Task.Title)
	}
}

// OverviewCompact renders the planner summary in compact format.
func OverviewCompact(w io.Writer, s board.Overview) {
	fmt.Fprintf(w, "%s (%d tasks, %d min)\n", s.Name, s.TotalTasks, s.TotalEffort)
	fmt.Fprintf(w, "  overdue:%d due-soon:%d undated:%d\n", s.Overdue, s.DueSoon, s.Undated)
	fmt.Fprintln(w, "Tag: "+joinCounts(s.Tags))
	fmt.Fprintln(w, "Frequency: "+joinCounts(s.Frequencies))
}

// GroupedCompact renders grouped tasks in compact format.
func GroupedCompact(w io.Writer, gs board.GroupedSummary) {
	for _, g := range gs.Groups {
		fmt.Fprintf(w, "%s (%d tasks, %d min)\n", g.Key, g.Total, g.Effort)
		for _, t := range g.Tasks {
			fmt.Fprintln(w, "  "+formatTaskLine(t))
		}
	}
}

// LogCompact renders log entries one per line.
func LogCompact(w io.Writer, entries []board.LogEntry) {
	for _, e := range entries {
		line := e.Timestamp.Local().Format(dateTimeFmt) + " " + e.Action
		if e.TaskID > 0 {
			line += " #" + strconv.Itoa(e.TaskID)
		}
		if e.Detail != "" {
			line += " " + e.Detail
		}
		fmt.Fprintln(w, line)
	}
}

func joinCounts(counts []board.Count) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, c.Key+"="+strconv.Itoa(c.Count))
	}
	return strings.Join(parts, " ")
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t *task.Task) string {
	line := "#" + strconv.Itoa(t.ID) + " [" + string(t.Tag) + "/" + string(t.Energy) + "] " +
		t.Title + " " + strconv.Itoa(t.Effort) + "m " + string(t.Frequency)
	if t.NextDue != "" {
		line += " next:" + t.NextDue
	}
	return line
}
