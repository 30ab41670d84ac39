// Package share renders plans as plain text for copying into a message,
// and as mailto links that prefill an email with that text.
package share

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/lifereset/internal/planner"
)

// Subjects used for the generated summaries.
const (
	TodaySubject  = "Life Reset — Today"
	SprintSubject = "Life Reset — Sprint"
)

// ClockLayout is the 12-hour clock used in summaries, e.g. 03:04 PM.
const ClockLayout = "03:04 PM"

// PickLine formats one ranked pick, numbered from 1.
func PickLine(n int, s planner.Scored) string {
	t := s.Task
	return fmt.Sprintf("%d. %s — %d min [%s] (due %s)", n, t.Title, t.Effort, t.Tag, t.NextDue)
}

// Summary is the "what to do now" text for picks made at now under ctx.
func Summary(ctx planner.Context, picks []planner.Scored, now time.Time) string {
	var b strings.Builder
	b.WriteString(TodaySubject + "\n")
	fmt.Fprintf(&b, "Time now: %s\n\n", now.Format(ClockLayout))
	fmt.Fprintf(&b, "You told me you have %d minutes and energy = %s.\n\n", ctx.TimeAvailable, ctx.Energy)
	b.WriteString("Do these next:\n")
	lines := make([]string, len(picks))
	for i, p := range picks {
		lines[i] = PickLine(i+1, p)
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

// SprintSummary lists each block with its start and end time.
func SprintSummary(blocks []planner.Block) string {
	lines := make([]string, len(blocks))
	for i, bl := range blocks {
		lines[i] = fmt.Sprintf("%d. %s — %s to %s", i+1, bl.Task.Title,
			bl.Start.Format(ClockLayout), bl.End.Format(ClockLayout))
	}
	return SprintSubject + "\n\n" + strings.Join(lines, "\n")
}

// Mailto builds a mailto URI addressed to addr with the given subject and
// body. Both are percent-encoded; body newlines become %0D%0A.
func Mailto(addr, subject, body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\n", "\r\n")
	return "mailto:" + url.PathEscape(addr) +
		"?subject=" + queryEscape(subject) +
		"&body=" + queryEscape(body)
}

// queryEscape is url.QueryEscape with spaces as %20; mail clients do not
// decode '+' in mailto bodies.
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
