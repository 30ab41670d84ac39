package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/twiced-technology-gmbh/lifereset/internal/board"
	"github.com/twiced-technology-gmbh/lifereset/internal/planner"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

const (
	maxTitleWidth = 48
	timeLayout    = "15:04"
	dateTimeFmt   = "2006-01-02 15:04"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)

	// Tag colors aligned with the TUI palette.
	tagStyles = map[string]lipgloss.Style{
		"money":  lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		"home":   lipgloss.NewStyle().Foreground(lipgloss.Color("110")),
		"health": lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
		"admin":  lipgloss.NewStyle().Foreground(lipgloss.Color("62")),
		"other":  lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}

	energyStyles = map[string]lipgloss.Style{
		"low":    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		"medium": lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		"high":   lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	}

	markdownStyle = "dark"
)

// DisableColor strips all styling from table output.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	boldStyle = lipgloss.NewStyle()
	warnStyle = lipgloss.NewStyle()
	scoreStyle = lipgloss.NewStyle()
	tagStyles = map[string]lipgloss.Style{}
	energyStyles = map[string]lipgloss.Style{}
	markdownStyle = "notty"
}

// TaskTable renders a list of tasks as a formatted table.
func TaskTable(w io.Writer, tasks []*task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	const pad = 2
	idW, titleW, effortW, freqW, tagW, energyW := 4, 7, 8, 11, 8, 8
	for _, t := range tasks {
		idW = max(idW, len(strconv.Itoa(t.ID))+pad)
		titleW = max(titleW, min(len(t.Title), maxTitleWidth)+pad)
		freqW = max(freqW, len(t.Frequency)+pad)
		tagW = max(tagW, len(t.Tag)+pad)
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s %-*s %s",
		idW, "ID", titleW, "TITLE", effortW, "EFFORT", freqW, "FREQUENCY",
		tagW, "TAG", energyW, "ENERGY", "NEXT DUE")
	fmt.Fprintln(w, headerStyle.Render(header))

	for _, t := range tasks {
		row := fmt.Sprintf("%-*d %s %-*s %-*s %s %s %s",
			idW, t.ID,
			padRight(truncate(t.Title, maxTitleWidth), titleW),
			effortW, minutes(t.Effort),
			freqW, t.Frequency,
			padRight(styledValue(string(t.Tag), tagStyles), tagW),
			padRight(styledValue(string(t.Energy), energyStyles), energyW),
			stringOrDash(t.NextDue))
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with full detail. Notes are rendered
// as markdown.
func TaskDetail(w io.Writer, t *task.Task) {
	titleLine := fmt.Sprintf("Task #%d: %s", t.ID, t.Title)
	fmt.Fprintln(w, boldStyle.Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(titleLine)))

	printField(w, "Effort", minutes(t.Effort))
	printField(w, "Frequency", string(t.Frequency))
	printField(w, "Tag", styledValue(string(t.Tag), tagStyles))
	printField(w, "Energy", styledValue(string(t.Energy), energyStyles))
	if t.Due != nil {
		printField(w, "Due", t.Due.String())
	} else {
		printField(w, "Due", dimStyle.Render("--"))
	}
	nextDue := stringOrDash(t.NextDue)
	if _, ok := t.NextDueDate(); !ok && t.NextDue != "" {
		nextDue = warnStyle.Render(t.NextDue + " (unreadable)")
	}
	printField(w, "Next due", nextDue)
	printField(w, "Created", t.Created.Format(dateTimeFmt))

	if strings.TrimSpace(t.Notes) != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, RenderMarkdown(t.Notes))
	}
}

// PickTable renders ranked picks for a planning context.
func PickTable(w io.Writer, ctx planner.Context, picks []planner.Scored) {
	fmt.Fprintf(w, "%s %s\n\n",
		boldStyle.Render("Top picks"),
		dimStyle.Render(fmt.Sprintf("(%d min, %s energy)", ctx.TimeAvailable, ctx.Energy)))
	if len(picks) == 0 {
		fmt.Fprintln(w, "No tasks fit the time available. Add tasks or increase your time.")
		return
	}

	titleW := 7
	for _, s := range picks {
		titleW = max(titleW, min(len(s.Task.Title), maxTitleWidth)+2) //nolint:mnd // column padding
	}

	header := fmt.Sprintf("%-4s %-5s %-*s %-8s %-8s %-11s %7s %6s",
		"#", "ID", titleW, "TITLE", "EFFORT", "TAG", "NEXT DUE", "URGENCY", "SCORE")
	fmt.Fprintln(w, headerStyle.Render(header))

	for i, s := range picks {
		fmt.Fprintf(w, "%-4d %-5d %s %-8s %s %-11s %7d %s\n",
			i+1, s.Task.ID,
			padRight(truncate(s.Task.Title, maxTitleWidth), titleW),
			minutes(s.Task.Effort),
			padRight(styledValue(string(s.Task.Tag), tagStyles), 8), //nolint:mnd // column width
			stringOrDash(s.Task.NextDue),
			s.Urgency,
			padLeft(scoreStyle.Render(formatScore(s.Score)), 6)) //nolint:mnd // column width
	}
}

// SprintTable renders a scheduled sprint.
func SprintTable(w io.Writer, plan planner.SprintPlan) {
	fmt.Fprintf(w, "%s %s\n\n",
		boldStyle.Render("Sprint"),
		dimStyle.Render(fmt.Sprintf("(%d of %d min)", plan.Used, plan.Budget)))
	if len(plan.Blocks) == 0 {
		fmt.Fprintln(w, "No tasks fit the time available.")
		return
	}

	header := fmt.Sprintf("%-5s %-5s %-5s %-8s %s", "START", "END", "ID", "EFFORT", "TITLE")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, b := range plan.Blocks {
		fmt.Fprintf(w, "%-5s %-5s %-5d %-8s %s\n",
			b.Start.Format(timeLayout), b.End.Format(timeLayout), b.Task.ID,
			minutes(b.Task.Effort), truncate(b.Task.Title, maxTitleWidth))
	}
	if plan.Overflow {
		fmt.Fprintln(w)
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf(
			"Nothing fit in %d min; scheduled the top task anyway.", plan.Budget)))
	}
}

// OverviewTable renders the planner summary as a formatted dashboard.
func OverviewTable(w io.Writer, s board.Overview) {
	fmt.Fprintln(w, boldStyle.Render(s.Name))
	fmt.Fprintf(w, "Total: %d tasks, %s\n", s.TotalTasks, minutes(s.TotalEffort))
	fmt.Fprintf(w, "Overdue: %s  Due in %d days: %d  Undated: %d\n\n",
		overdueValue(s.Overdue), board.DueSoonDays, s.DueSoon, s.Undated)

	countTable(w, "TAG", s.Tags, tagStyles)
	fmt.Fprintln(w)
	countTable(w, "FREQUENCY", s.Frequencies, nil)
}

func countTable(w io.Writer, label string, counts []board.Count, styles map[string]lipgloss.Style) {
	const keyW = 16
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s %6s %8s", keyW, label, "COUNT", "EFFORT")))
	for _, c := range counts {
		fmt.Fprintf(w, "%s %6d %8s\n", padRight(styledValue(c.Key, styles), keyW), c.Count, minutes(c.Effort))
	}
}

// GroupedTable renders tasks grouped by a field.
func GroupedTable(w io.Writer, gs board.GroupedSummary) {
	if len(gs.Groups) == 0 {
		fmt.Fprintln(os.Stderr, "No groups found.")
		return
	}

	for i, g := range gs.Groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		title := fmt.Sprintf("%s (%d tasks, %s)", g.Key, g.Total, minutes(g.Effort))
		fmt.Fprintln(w, boldStyle.Render(title))
		for _, t := range g.Tasks {
			fmt.Fprintf(w, "  #%-4d %-8s %s\n", t.ID, minutes(t.Effort), truncate(t.Title, maxTitleWidth))
		}
	}
}

// LogTable renders activity log entries.
func LogTable(w io.Writer, entries []board.LogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No activity yet.")
		return
	}
	header := fmt.Sprintf("%-16s %-8s %-5s %s", "TIME", "ACTION", "TASK", "DETAIL")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, e := range entries {
		id := dimStyle.Render("--")
		if e.TaskID > 0 {
			id = strconv.Itoa(e.TaskID)
		}
		fmt.Fprintf(w, "%-16s %-8s %s %s\n",
			e.Timestamp.Local().Format(dateTimeFmt), e.Action, padRight(id, 5), e.Detail) //nolint:mnd // column width
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

func minutes(n int) string {
	return strconv.Itoa(n) + " min"
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func overdueValue(n int) string {
	if n == 0 {
		return "0"
	}
	return warnStyle.Render(strconv.Itoa(n))
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+3 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func padLeft(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return strings.Repeat(" ", width-visible) + s
}

func stringOrDash(s string) string {
	if s == "" {
		return dimStyle.Render("--")
	}
	return s
}

// styledValue renders s using a matching style from the map, or returns s unchanged.
func styledValue(s string, styles map[string]lipgloss.Style) string {
	if st, ok := styles[s]; ok {
		return st.Render(s)
	}
	return s
}
