// Package tui implements the interactive lifereset planner session.
package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/twiced-technology-gmbh/lifereset/internal/board"
	"github.com/twiced-technology-gmbh/lifereset/internal/clierr"
	"github.com/twiced-technology-gmbh/lifereset/internal/config"
	"github.com/twiced-technology-gmbh/lifereset/internal/ics"
	"github.com/twiced-technology-gmbh/lifereset/internal/planner"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

// view represents the current screen state.
type view int

const (
	viewMain view = iota
	viewForm
	viewSprint
)

const (
	keyEsc = "esc"

	// SprintFile is the name of the calendar file written by the export key,
	// relative to the planner directory.
	SprintFile = "sprint.ics"

	tickInterval = time.Minute // urgency is recomputed so picks follow the clock
	icsFileMode  = 0o600
)

type keyMap struct {
	Quit       key.Binding
	More       key.Binding
	Less       key.Binding
	Energy     key.Binding
	SprintUp   key.Binding
	SprintDown key.Binding
	Add        key.Binding
	Sprint     key.Binding
	Export     key.Binding
	Back       key.Binding
}

var keys = keyMap{
	Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	More:       key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more time")),
	Less:       key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "less time")),
	Energy:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "energy")),
	SprintUp:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "longer sprint")),
	SprintDown: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "shorter sprint")),
	Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Sprint:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sprint")),
	Export:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "write .ics")),
	Back:       key.NewBinding(key.WithKeys(keyEsc), key.WithHelp("esc", "back")),
}

// Session is the top-level bubbletea model: the task list, the planning
// context and the picks derived from them.
type Session struct {
	cfg           *config.Config
	planner       *planner.Planner
	tasks         []*task.Task
	skipped       int
	ctx           planner.Context
	sprintMinutes int
	picks         []planner.Scored
	candidates    int
	sprint        *planner.SprintPlan
	view          view
	form          *form
	list          viewport.Model
	width         int
	height        int
	flash         string
	err           error
}

// New creates a Session from a config, starting from its default context.
func New(cfg *config.Config) *Session {
	s := &Session{
		cfg:           cfg,
		planner:       cfg.NewPlanner(),
		ctx:           cfg.DefaultContext(),
		sprintMinutes: cfg.Planner.SprintMinutes,
		list:          viewport.New(0, 0),
	}
	s.loadTasks()
	return s
}

// SetNow overrides the clock (for testing).
func (s *Session) SetNow(fn func() time.Time) {
	s.planner.Now = fn
	s.refresh()
}

// Context returns the current planning context.
func (s *Session) Context() planner.Context {
	return s.ctx
}

// Picks returns the current top picks.
func (s *Session) Picks() []planner.Scored {
	return s.picks
}

// WatchPaths returns the paths that should be watched for file changes.
func (s *Session) WatchPaths() []string {
	return []string{s.cfg.TasksPath(), s.cfg.Dir()}
}

// Init implements tea.Model.
func (s *Session) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (s *Session) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return s.handleKey(msg)
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.resize()
		return s, nil
	case ReloadMsg:
		s.loadTasks()
		return s, nil
	case TickMsg:
		s.refresh()
		return s, tickCmd()
	}

	// Cursor blink and other input messages belong to the form.
	if s.view == viewForm {
		return s, s.form.update(msg)
	}
	return s, nil
}

func (s *Session) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return s, tea.Quit
	}

	switch s.view {
	case viewForm:
		return s.handleFormKey(msg)
	case viewSprint:
		return s.handleSprintKey(msg)
	default:
		return s.handleMainKey(msg)
	}
}

func (s *Session) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s.flash = ""
	switch {
	case key.Matches(msg, keys.Quit, keys.Back):
		return s, tea.Quit
	case key.Matches(msg, keys.More):
		s.stepTime(planner.TimeStep)
	case key.Matches(msg, keys.Less):
		s.stepTime(-planner.TimeStep)
	case key.Matches(msg, keys.Energy):
		s.ctx.Energy = nextEnergy(s.ctx.Energy)
		s.refresh()
	case key.Matches(msg, keys.SprintUp):
		s.stepSprint(planner.SprintStep)
	case key.Matches(msg, keys.SprintDown):
		s.stepSprint(-planner.SprintStep)
	case key.Matches(msg, keys.Add):
		s.form = newForm(s.cfg)
		s.view = viewForm
		return s, s.form.init()
	case key.Matches(msg, keys.Sprint):
		s.buildSprint()
		s.view = viewSprint
	case key.Matches(msg, keys.Export):
		s.buildSprint()
		s.writeSprint()
	default:
		var cmd tea.Cmd
		s.list, cmd = s.list.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Session) handleSprintKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return s, tea.Quit
	case key.Matches(msg, keys.Back):
		s.view = viewMain
	case key.Matches(msg, keys.Export):
		s.writeSprint()
	case key.Matches(msg, keys.Sprint):
		s.buildSprint()
	case key.Matches(msg, keys.SprintUp):
		s.stepSprint(planner.SprintStep)
		s.buildSprint()
	case key.Matches(msg, keys.SprintDown):
		s.stepSprint(-planner.SprintStep)
		s.buildSprint()
	}
	return s, nil
}

func (s *Session) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		s.form = nil
		s.view = viewMain
		return s, nil
	case "tab", "down":
		return s, s.form.move(1)
	case "shift+tab", "up":
		return s, s.form.move(-1)
	case "ctrl+s":
		s.submitForm()
		return s, nil
	case "enter":
		if !s.form.onLastField() {
			return s, s.form.move(1)
		}
		s.submitForm()
		return s, nil
	}
	return s, s.form.update(msg)
}

func (s *Session) submitForm() {
	d, err := s.form.draft(s.ctx.Energy)
	if err != nil {
		s.form.err = err
		return
	}
	t, err := board.AddTask(s.cfg, d, s.now())
	if err != nil {
		s.form.err = err
		return
	}
	s.form = nil
	s.view = viewMain
	s.flash = fmt.Sprintf("Added #%d: %s", t.ID, t.Title)
	s.loadTasks()
}

func (s *Session) stepTime(delta int) {
	s.ctx.TimeAvailable = planner.Step(s.ctx.TimeAvailable, delta,
		planner.MinTimeAvailable, planner.MaxTimeAvailable)
	s.refresh()
}

func (s *Session) stepSprint(delta int) {
	s.sprintMinutes = planner.Step(s.sprintMinutes, delta,
		planner.MinSprintMinutes, planner.MaxSprintMinutes)
}

func nextEnergy(e task.Energy) task.Energy {
	for i, v := range task.Energies {
		if v == e {
			return task.Energies[(i+1)%len(task.Energies)]
		}
	}
	return task.Medium
}

func (s *Session) now() time.Time {
	if s.planner.Now == nil {
		return time.Now()
	}
	return s.planner.Now()
}

// loadTasks rereads the task files and recomputes the picks.
func (s *Session) loadTasks() {
	store, warnings, err := task.LoadStore(s.cfg.TasksPath())
	if err != nil {
		s.err = err
		return
	}
	s.err = nil
	s.tasks = store.Tasks()
	s.skipped = len(warnings)
	s.refresh()
}

// refresh recomputes the picks for the current context and clock.
func (s *Session) refresh() {
	pool := s.planner.Pool(s.tasks, s.ctx)
	s.candidates = len(pool)
	s.picks = planner.Top(pool, s.planner.TopK)
	s.list.SetContent(s.renderTaskList())
}

func (s *Session) buildSprint() {
	plan := s.planner.Sprint(s.tasks, s.ctx, s.sprintMinutes)
	s.sprint = &plan
	if len(plan.Blocks) > 0 {
		board.LogMutation(s.cfg.Dir(), board.ActionSprint, 0,
			fmt.Sprintf("%d tasks, %d of %d min", len(plan.Blocks), plan.Used, plan.Budget))
	}
}

// writeSprint writes the current sprint to SprintFile in the planner directory.
func (s *Session) writeSprint() {
	if s.sprint == nil || len(s.sprint.Blocks) == 0 {
		s.err = clierr.New(clierr.NothingToPlan, "no tasks fit the time available")
		return
	}
	path := filepath.Join(s.cfg.Dir(), SprintFile)
	cal := ics.Calendar{
		ProdID: s.cfg.Calendar.ProdID,
		Events: ics.FromBlocks(s.sprint.Blocks, s.cfg.Calendar.SprintDescription),
	}
	if err := writeCalendar(path, cal); err != nil {
		s.err = err
		return
	}
	s.err = nil
	s.flash = "Wrote " + path
	board.LogMutation(s.cfg.Dir(), board.ActionExport, 0, SprintFile)
}

func writeCalendar(path string, cal ics.Calendar) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, icsFileMode) //nolint:gosec // path inside planner dir
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return ics.Encode(f, cal)
}

// --- Messages ---

// ReloadMsg is sent by the file watcher to trigger a reload.
type ReloadMsg struct{}

// TickMsg is sent periodically so urgency follows the clock.
type TickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return TickMsg{} })
}
