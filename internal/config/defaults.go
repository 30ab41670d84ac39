// Package config handles planner configuration.
package config

import (
	"github.com/twiced-technology-gmbh/lifereset/internal/planner"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

const (
	// DefaultDir is the default planner directory name.
	DefaultDir = ".lifereset"
	// DefaultTasksDir is the default tasks subdirectory name.
	DefaultTasksDir = "tasks"
	// DefaultName is the planner name used when none is given.
	DefaultName = "Life Reset"

	// DefaultEffort is the default effort in minutes for new tasks.
	DefaultEffort = 20
	// DefaultFrequency is the default frequency for new tasks.
	DefaultFrequency = task.Weekly
	// DefaultTag is the default tag for new tasks.
	DefaultTag = task.Money

	// DefaultTimeAvailable is the default planning window in minutes.
	DefaultTimeAvailable = 30
	// DefaultEnergy is the default energy level.
	DefaultEnergy = task.Medium
	// DefaultSprintMinutes is the default sprint length in minutes.
	DefaultSprintMinutes = 90
	// DefaultTopK is how many picks the plan shows.
	DefaultTopK = 5
	// DefaultLeadMinutes is the gap between now and the first scheduled block.
	DefaultLeadMinutes = 5

	// DefaultProdID is the PRODID written to calendar exports.
	DefaultProdID = "-//Life Reset//EN"
	// DefaultTaskDescription is the event description for a task without notes.
	DefaultTaskDescription = "Life Reset task"
	// DefaultSprintDescription is the event description for a sprint block without notes.
	DefaultSprintDescription = "Life Reset sprint task"
	// DefaultCalendarID is the Google calendar sprint blocks are pushed to.
	DefaultCalendarID = "primary"
	// DefaultCredentialsFile is the OAuth client secrets file, relative to the planner dir.
	DefaultCredentialsFile = "credentials.json"
	// DefaultTokenFile is the stored OAuth token, relative to the planner dir.
	DefaultTokenFile = "token.json"

	// ConfigFileName is the name of the config file within the planner directory.
	ConfigFileName = "config.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 3
)

// DefaultEnergyWeights returns a fresh copy of the default energy multipliers.
func DefaultEnergyWeights() map[string]float64 {
	out := make(map[string]float64, len(planner.DefaultWeights.Energy))
	for k, v := range planner.DefaultWeights.Energy {
		out[string(k)] = v
	}
	return out
}

// DefaultTagWeights returns a fresh copy of the default tag multipliers.
func DefaultTagWeights() map[string]float64 {
	out := make(map[string]float64, len(planner.DefaultWeights.Tag))
	for k, v := range planner.DefaultWeights.Tag {
		out[string(k)] = v
	}
	return out
}
