package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/twiced-technology-gmbh/lifereset/internal/clierr"
	"github.com/twiced-technology-gmbh/lifereset/internal/config"
	"github.com/twiced-technology-gmbh/lifereset/internal/date"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

const (
	fieldTitle = iota
	fieldEffort
	fieldFrequency
	fieldTag
	fieldDue
	fieldNotes
	fieldCount
)

const inputCharLimit = 200

var fieldLabels = [fieldCount]string{"Title", "Effort (min)", "Frequency", "Tag", "Due", "Notes"}

// form is the add-task dialog. Energy is not asked for: a new task takes
// the energy level the session is set to.
type form struct {
	inputs [fieldCount]textinput.Model
	focus  int
	err    error
}

func newForm(cfg *config.Config) *form {
	f := &form{}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = inputCharLimit
		f.inputs[i] = in
	}
	f.inputs[fieldTitle].Placeholder = "e.g. Pay electricity bill"
	f.inputs[fieldEffort].SetValue(strconv.Itoa(cfg.Defaults.Effort))
	f.inputs[fieldFrequency].SetValue(cfg.Defaults.Frequency)
	f.inputs[fieldFrequency].Placeholder = joinValues(task.Frequencies)
	f.inputs[fieldTag].SetValue(cfg.Defaults.Tag)
	f.inputs[fieldTag].Placeholder = joinValues(task.Tags)
	f.inputs[fieldDue].Placeholder = "YYYY-MM-DD (optional)"
	f.inputs[fieldNotes].Placeholder = "optional"
	return f
}

func (f *form) init() tea.Cmd {
	return tea.Batch(f.inputs[f.focus].Focus(), textinput.Blink)
}

func (f *form) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	return f.inputs[f.focus].Focus()
}

func (f *form) onLastField() bool {
	return f.focus == fieldCount-1
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

// draft converts the inputs into a task draft. Enum fields are validated
// later by the store; only values that need parsing are checked here.
func (f *form) draft(energy task.Energy) (task.Draft, error) {
	if f.value(fieldTitle) == "" {
		return task.Draft{}, task.ErrEmptyTitle()
	}

	effort, err := strconv.Atoi(f.value(fieldEffort))
	if err != nil {
		return task.Draft{}, clierr.Newf(clierr.InvalidEffort,
			"effort must be a whole number of minutes, got %q", f.value(fieldEffort))
	}

	d := task.Draft{
		Title:     f.value(fieldTitle),
		Effort:    effort,
		Frequency: task.Frequency(strings.ToLower(f.value(fieldFrequency))),
		Tag:       task.Tag(strings.ToLower(f.value(fieldTag))),
		Energy:    energy,
		Notes:     f.value(fieldNotes),
	}
	if due := f.value(fieldDue); due != "" {
		parsed, err := date.Parse(due)
		if err != nil {
			return task.Draft{}, task.FormatDueDate(due, err)
		}
		d.Due = &parsed
	}
	return d, nil
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, "|")
}
