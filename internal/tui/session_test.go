package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/twiced-technology-gmbh/lifereset/internal/config"
	"github.com/twiced-technology-gmbh/lifereset/internal/ics"
	"github.com/twiced-technology-gmbh/lifereset/internal/planner"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

var fixedNow = time.Date(2026, 10, 19, 15, 0, 0, 0, time.Local)

func writeTask(t *testing.T, cfg *config.Config, tk *task.Task) {
	t.Helper()
	if err := task.Write(filepath.Join(cfg.TasksPath(), task.Filename(tk)), tk); err != nil {
		t.Fatal(err)
	}
}

func newTestSession(t *testing.T) (*Session, *config.Config) {
	t.Helper()
	cfg, err := config.Init(t.TempDir(), "Life Reset")
	if err != nil {
		t.Fatal(err)
	}
	writeTask(t, cfg, &task.Task{ID: 1, Title: "Pay bill", Effort: 10, Frequency: task.Monthly,
		Tag: task.Money, Energy: task.Low, NextDue: "2026-10-19"})
	writeTask(t, cfg, &task.Task{ID: 2, Title: "Walk", Effort: 15, Frequency: task.Daily,
		Tag: task.Health, Energy: task.Medium, NextDue: "2026-11-08"})
	writeTask(t, cfg, &task.Task{ID: 3, Title: "Deep clean kitchen", Effort: 60, Frequency: task.Monthly,
		Tag: task.Home, Energy: task.High, NextDue: "2026-10-25"})
	cfg.NextID = 4
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	s := New(cfg)
	s.SetNow(func() time.Time { return fixedNow })
	s.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return s, cfg
}

func press(s *Session, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		s.Update(msg)
	}
}

func pickTitles(s *Session) []string {
	var out []string
	for _, p := range s.Picks() {
		out = append(out, p.Task.Title)
	}
	return out
}

func TestInitialPicks(t *testing.T) {
	s, _ := newTestSession(t)
	if ctx := s.Context(); ctx.TimeAvailable != 30 || ctx.Energy != task.Medium {
		t.Fatalf("context = %+v", ctx)
	}
	got := pickTitles(s)
	if len(got) != 2 || got[0] != "Pay bill" || got[1] != "Walk" {
		t.Errorf("picks = %v", got)
	}
	if !strings.Contains(s.View(), "Top picks") {
		t.Error("view has no picks panel")
	}
}

func TestTimeKeysClamp(t *testing.T) {
	s, _ := newTestSession(t)

	press(s, "+", "+")
	if got := s.Context().TimeAvailable; got != 40 {
		t.Errorf("after ++ time = %d, want 40", got)
	}
	for i := 0; i < 50; i++ {
		press(s, "+")
	}
	if got := s.Context().TimeAvailable; got != planner.MaxTimeAvailable {
		t.Errorf("time = %d, want %d", got, planner.MaxTimeAvailable)
	}
	if len(s.Picks()) != 3 {
		t.Errorf("picks at max time = %d, want 3", len(s.Picks()))
	}

	for i := 0; i < 50; i++ {
		press(s, "-")
	}
	if got := s.Context().TimeAvailable; got != planner.MinTimeAvailable {
		t.Errorf("time = %d, want %d", got, planner.MinTimeAvailable)
	}
	if got := pickTitles(s); len(got) != 1 || got[0] != "Pay bill" {
		t.Errorf("picks at 10 min = %v", got)
	}
}

func TestEnergyKeyCycles(t *testing.T) {
	s, _ := newTestSession(t)
	want := []task.Energy{task.High, task.Low, task.Medium}
	for _, e := range want {
		press(s, "e")
		if got := s.Context().Energy; got != e {
			t.Errorf("energy = %s, want %s", got, e)
		}
	}
}

func TestAddForm(t *testing.T) {
	s, cfg := newTestSession(t)

	press(s, "a")
	if s.view != viewForm {
		t.Fatal("a did not open the form")
	}
	press(s, "Renew passport")
	// Accept the prefilled effort, frequency and tag; leave due and notes empty.
	for i := 0; i < fieldCount; i++ {
		press(s, "enter")
	}

	if s.view != viewMain {
		t.Fatalf("form still open: %v", s.form.err)
	}
	path, err := task.FindByID(cfg.TasksPath(), 4)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	added, err := task.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if added.Title != "Renew passport" || added.Effort != config.DefaultEffort ||
		added.Frequency != config.DefaultFrequency || added.Energy != task.Medium {
		t.Errorf("added = %+v", added)
	}
	if added.NextDue != "2026-10-26" {
		t.Errorf("next due = %s, want 2026-10-26", added.NextDue)
	}
	if len(s.tasks) != 4 {
		t.Errorf("session has %d tasks, want 4", len(s.tasks))
	}
}

func TestAddFormEmptyTitleWarns(t *testing.T) {
	s, cfg := newTestSession(t)

	press(s, "a")
	for i := 0; i < fieldCount; i++ {
		press(s, "enter")
	}

	if s.view != viewForm || s.form.err == nil {
		t.Fatal("empty title should keep the form open with a warning")
	}
	if !strings.Contains(s.View(), "please enter a task title") {
		t.Errorf("warning not shown:\n%s", s.View())
	}
	entries, _ := os.ReadDir(cfg.TasksPath())
	if len(entries) != 3 {
		t.Errorf("tasks on disk = %d, want 3", len(entries))
	}

	press(s, "esc")
	if s.view != viewMain {
		t.Error("esc did not close the form")
	}
}

func TestSprintAndExport(t *testing.T) {
	s, cfg := newTestSession(t)

	press(s, "s")
	if s.view != viewSprint || s.sprint == nil {
		t.Fatal("s did not build a sprint")
	}
	if len(s.sprint.Blocks) != 2 || s.sprint.Used != 25 {
		t.Errorf("sprint = %+v", s.sprint)
	}
	if !strings.Contains(s.View(), "Life Reset — Sprint") {
		t.Errorf("sprint view:\n%s", s.View())
	}

	press(s, "x")
	f, err := os.Open(filepath.Join(cfg.Dir(), SprintFile))
	if err != nil {
		t.Fatalf("sprint file: %v", err)
	}
	defer f.Close()
	cal, err := ics.Decode(f, time.Local)
	if err != nil {
		t.Fatal(err)
	}
	if len(cal.Events) != 2 {
		t.Fatalf("events = %d", len(cal.Events))
	}
	if want := fixedNow.Add(5 * time.Minute); !cal.Events[0].Start.Equal(want) {
		t.Errorf("first start = %v, want %v", cal.Events[0].Start, want)
	}
	if cal.Events[0].Description != config.DefaultSprintDescription {
		t.Errorf("description = %q", cal.Events[0].Description)
	}

	press(s, "esc")
	if s.view != viewMain {
		t.Error("esc did not leave the sprint view")
	}
}

func TestReloadPicksUpNewFiles(t *testing.T) {
	s, cfg := newTestSession(t)
	writeTask(t, cfg, &task.Task{ID: 9, Title: "File taxes", Effort: 20, Frequency: task.Once,
		Tag: task.Money, Energy: task.High, NextDue: "2026-10-20"})

	s.Update(ReloadMsg{})
	if len(s.tasks) != 4 {
		t.Fatalf("tasks = %d, want 4", len(s.tasks))
	}
	if got := pickTitles(s); got[0] != "Pay bill" || got[1] != "File taxes" {
		t.Errorf("picks = %v", got)
	}
}

func TestQuit(t *testing.T) {
	s, _ := newTestSession(t)
	_, cmd := s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
