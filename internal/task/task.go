// Package task handles planner tasks, their recurrence, and their files.
package task

import (
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/lifereset/internal/date"
)

// Effort bounds in minutes.
const (
	MinEffort = 5
	MaxEffort = 240
)

// Frequency is how often a task recurs.
type Frequency string

// Recognised frequencies.
const (
	Once      Frequency = "once"
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Biweekly  Frequency = "biweekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
)

// Frequencies lists all frequencies in display order.
var Frequencies = []Frequency{Once, Daily, Weekly, Biweekly, Monthly, Quarterly}

// Tag is the life area a task belongs to.
type Tag string

// Recognised tags.
const (
	Money  Tag = "money"
	Home   Tag = "home"
	Health Tag = "health"
	Admin  Tag = "admin"
	Other  Tag = "other"
)

// Tags lists all tags in display order.
var Tags = []Tag{Money, Home, Health, Admin, Other}

// Energy is a self-reported energy level.
type Energy string

// Recognised energy levels.
const (
	Low    Energy = "low"
	Medium Energy = "medium"
	High   Energy = "high"
)

// Energies lists all energy levels from lowest to highest.
var Energies = []Energy{Low, Medium, High}

// Task is a single planner task. Notes live in the markdown body of the
// task file; everything else is frontmatter.
type Task struct {
	ID        int        `yaml:"id" json:"id"`
	Title     string     `yaml:"title" json:"title"`
	Effort    int        `yaml:"effort" json:"effort"`
	Frequency Frequency  `yaml:"frequency" json:"frequency"`
	Tag       Tag        `yaml:"tag" json:"tag"`
	Energy    Energy     `yaml:"energy" json:"energy"`
	Due       *date.Date `yaml:"due,omitempty" json:"due,omitempty"`
	NextDue   string     `yaml:"next_due" json:"next_due"`
	Created   time.Time  `yaml:"created" json:"created"`

	// Notes is the markdown content below the frontmatter (not in YAML).
	Notes string `yaml:"-" json:"notes,omitempty"`

	// File is the path to the task file (not in YAML).
	File string `yaml:"-" json:"file,omitempty"`
}

// NextDueDate parses NextDue. The second result is false when the stored
// value is missing or malformed.
func (t *Task) NextDueDate() (date.Date, bool) {
	d, err := date.Parse(strings.TrimSpace(t.NextDue))
	if err != nil {
		return date.Date{}, false
	}
	return d, true
}

// Draft is user input for a task that has not been accepted yet.
type Draft struct {
	Title     string
	Effort    int
	Frequency Frequency
	Tag       Tag
	Energy    Energy
	Due       *date.Date
	Notes     string
}

// Build validates the draft and turns it into a Task created at now.
// The next due date is derived from the frequency and now.
func (d Draft) Build(now time.Time) (*Task, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, ErrEmptyTitle()
	}
	if err := ValidateEffort(d.Effort); err != nil {
		return nil, err
	}
	if err := ValidateFrequency(string(d.Frequency)); err != nil {
		return nil, err
	}
	if err := ValidateTag(string(d.Tag)); err != nil {
		return nil, err
	}
	if err := ValidateEnergy(string(d.Energy)); err != nil {
		return nil, err
	}

	return &Task{
		Title:     title,
		Effort:    d.Effort,
		Frequency: d.Frequency,
		Tag:       d.Tag,
		Energy:    d.Energy,
		Due:       d.Due,
		NextDue:   NextDue(d.Frequency, now).Format(date.Layout),
		Created:   now,
		Notes:     d.Notes,
	}, nil
}
