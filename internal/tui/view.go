package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/lifereset/internal/share"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

// Layout constants.
const (
	headerChrome = 2 // context line + blank line
	footerChrome = 2 // blank line + status bar
	panelBorder  = 2
	minPanel     = 20
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).Padding(0, 1)

	contextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	picksPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("226")).
			Padding(0, 1)

	headingStyle   = lipgloss.NewStyle().Bold(true)
	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	flashStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2) //nolint:mnd // dialog padding

	tagColors = map[task.Tag]lipgloss.Color{
		task.Money:  "34",
		task.Home:   "110",
		task.Health: "205",
		task.Admin:  "62",
		task.Other:  "242",
	}
)

func tagStyle(t task.Tag) lipgloss.Style {
	if c, ok := tagColors[t]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return dimStyle
}

// View implements tea.Model.
func (s *Session) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	switch s.view {
	case viewForm:
		return s.viewForm()
	case viewSprint:
		return s.viewSprint()
	default:
		return s.viewMain()
	}
}

func (s *Session) panelWidths() (int, int) {
	left := max(s.width/2, minPanel)
	right := max(s.width-left, minPanel)
	return left, right
}

func (s *Session) bodyHeight() int {
	return max(s.height-headerChrome-footerChrome, 1)
}

// resize fits the task list viewport inside the left panel.
func (s *Session) resize() {
	left, _ := s.panelWidths()
	const padding = 2
	s.list.Width = max(left-panelBorder-padding, 1)
	s.list.Height = max(s.bodyHeight()-panelBorder-1, 1) // minus the panel heading
	s.list.SetContent(s.renderTaskList())
}

func (s *Session) viewMain() string {
	left, right := s.panelWidths()
	h := s.bodyHeight() - panelBorder

	tasks := panelStyle.Width(left - panelBorder).Height(h).Render(
		headingStyle.Render(fmt.Sprintf("Tasks (%d)", len(s.tasks))) + "\n" + s.list.View())
	picks := picksPanelStyle.Width(right - panelBorder).Height(h).Render(s.renderPicks(right))

	body := lipgloss.JoinHorizontal(lipgloss.Top, tasks, picks)
	return lipgloss.JoinVertical(lipgloss.Left, s.renderHeader(), "", body, "", s.renderStatusBar(
		keys.More, keys.Less, keys.Energy, keys.Add, keys.Sprint, keys.Export, keys.Quit))
}

func (s *Session) renderHeader() string {
	ctx := fmt.Sprintf("  %d min available  |  energy: %s  |  sprint: %d min",
		s.ctx.TimeAvailable, s.ctx.Energy, s.sprintMinutes)
	return titleStyle.Render(s.cfg.Name) + contextStyle.Render(ctx)
}

func (s *Session) renderTaskList() string {
	if len(s.tasks) == 0 {
		return dimStyle.Render("No tasks yet. Press a to add one.")
	}
	width := max(s.list.Width, minPanel)
	lines := make([]string, 0, len(s.tasks))
	for _, t := range s.tasks {
		meta := fmt.Sprintf(" %dm %s next %s", t.Effort, t.Frequency, t.NextDue)
		title := truncate(fmt.Sprintf("#%d %s", t.ID, t.Title), width-lipgloss.Width(meta))
		lines = append(lines, tagStyle(t.Tag).Render(title)+dimStyle.Render(meta))
	}
	if s.skipped > 0 {
		lines = append(lines, "", errorStyle.Render(fmt.Sprintf("%d task files could not be read", s.skipped)))
	}
	return strings.Join(lines, "\n")
}

func (s *Session) renderPicks(width int) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Top picks"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d of %d fit", len(s.picks), s.candidates)))
	b.WriteString("\n")
	if len(s.picks) == 0 {
		b.WriteString(dimStyle.Render("No tasks fit the time available. Add tasks or increase your time."))
		return b.String()
	}
	inner := max(width-panelBorder-2, minPanel) //nolint:mnd // horizontal padding
	for i, p := range s.picks {
		line := truncate(share.PickLine(i+1, p), inner)
		b.WriteString(tagStyle(p.Task.Tag).Render(line))
		b.WriteString(dimStyle.Render(fmt.Sprintf("\n   score %.2f, urgency %d\n", p.Score, p.Urgency)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Session) viewSprint() string {
	var b strings.Builder
	if s.sprint == nil || len(s.sprint.Blocks) == 0 {
		b.WriteString(headingStyle.Render("Sprint") + "\n\n")
		b.WriteString("No tasks fit the time available.")
	} else {
		b.WriteString(share.SprintSummary(s.sprint.Blocks))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d of %d min planned", s.sprint.Used, s.sprint.Budget)))
		if s.sprint.Overflow {
			b.WriteString("\n" + errorStyle.Render("Nothing fit the sprint; scheduled the top task anyway."))
		}
	}
	dialog := dialogStyle.Render(b.String())
	return lipgloss.JoinVertical(lipgloss.Left, s.renderHeader(), "", dialog, "", s.renderStatusBar(
		keys.SprintDown, keys.SprintUp, keys.Sprint, keys.Export, keys.Back, keys.Quit))
}

func (s *Session) viewForm() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Add task"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  (energy: %s)", s.ctx.Energy)))
	b.WriteString("\n\n")
	for i, label := range fieldLabels {
		cursor := "  "
		if i == s.form.focus {
			cursor = "> "
		}
		fmt.Fprintf(&b, "%s%-13s %s\n", cursor, label+":", s.form.inputs[i].View())
	}
	if s.form.err != nil {
		b.WriteString("\n" + errorStyle.Render("Warning: "+s.form.err.Error()))
	}
	b.WriteString("\n" + dimStyle.Render("tab:next  shift+tab:prev  enter:next/save  ctrl+s:save  esc:cancel"))
	return dialogStyle.Render(b.String())
}

func (s *Session) renderStatusBar(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		parts = append(parts, kb.Help().Key+":"+kb.Help().Desc)
	}
	status := truncate(" "+strings.Join(parts, "  "), s.width)

	switch {
	case s.err != nil:
		return errorStyle.Render(truncate("Error: "+s.err.Error(), s.width)) + "\n" + statusBarStyle.Render(status)
	case s.flash != "":
		return flashStyle.Render(truncate(s.flash, s.width)) + "\n" + statusBarStyle.Render(status)
	}
	return statusBarStyle.Render(status)
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	target := min(maxLen-3, len(runes)) //nolint:mnd // room for "..."
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-3 {
		target--
	}
	return string(runes[:target]) + "..."
}
