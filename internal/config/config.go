package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/lifereset/internal/clierr"
	"github.com/twiced-technology-gmbh/lifereset/internal/planner"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

const (
	fileMode = 0o600
	dirMode  = 0o750
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("no planner found (run 'lifereset init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the planner configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Name     string         `yaml:"name"`
	TasksDir string         `yaml:"tasks_dir"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Planner  PlannerConfig  `yaml:"planner"`
	Weights  WeightsConfig  `yaml:"weights"`
	Calendar CalendarConfig `yaml:"calendar"`
	Google   GoogleConfig   `yaml:"google"`
	NextID   int            `yaml:"next_id"`

	// dir is the absolute path to the planner directory (not serialized).
	dir string `yaml:"-"`
}

// DefaultsConfig holds default values for new tasks.
type DefaultsConfig struct {
	Effort    int    `yaml:"effort" json:"effort"`
	Frequency string `yaml:"frequency" json:"frequency"`
	Tag       string `yaml:"tag" json:"tag"`
}

// PlannerConfig holds the default planning context.
type PlannerConfig struct {
	TimeAvailable int    `yaml:"time_available" json:"time_available"`
	Energy        string `yaml:"energy" json:"energy"`
	SprintMinutes int    `yaml:"sprint_minutes" json:"sprint_minutes"`
	TopK          int    `yaml:"top_k" json:"top_k"`
	LeadMinutes   int    `yaml:"lead_minutes" json:"lead_minutes"`
}

// WeightsConfig holds the scoring multipliers keyed by energy level and tag.
type WeightsConfig struct {
	Energy map[string]float64 `yaml:"energy" json:"energy"`
	Tag    map[string]float64 `yaml:"tag" json:"tag"`
}

// CalendarConfig holds .ics export settings.
type CalendarConfig struct {
	ProdID            string `yaml:"prodid" json:"prodid"`
	TaskDescription   string `yaml:"task_description" json:"task_description"`
	SprintDescription string `yaml:"sprint_description" json:"sprint_description"`
}

// GoogleConfig holds Google Calendar push settings. Relative file paths
// resolve against the planner directory.
type GoogleConfig struct {
	CalendarID      string `yaml:"calendar_id" json:"calendar_id"`
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file"`
	TokenFile       string `yaml:"token_file" json:"token_file"`
}

func defaultCalendar() CalendarConfig {
	return CalendarConfig{
		ProdID:            DefaultProdID,
		TaskDescription:   DefaultTaskDescription,
		SprintDescription: DefaultSprintDescription,
	}
}

func defaultGoogle() GoogleConfig {
	return GoogleConfig{
		CalendarID:      DefaultCalendarID,
		CredentialsFile: DefaultCredentialsFile,
		TokenFile:       DefaultTokenFile,
	}
}

// NewDefault creates a Config with default values.
func NewDefault(name string) *Config {
	return &Config{
		Version:  CurrentVersion,
		Name:     name,
		TasksDir: DefaultTasksDir,
		Defaults: DefaultsConfig{
			Effort:    DefaultEffort,
			Frequency: string(DefaultFrequency),
			Tag:       string(DefaultTag),
		},
		Planner: PlannerConfig{
			TimeAvailable: DefaultTimeAvailable,
			Energy:        string(DefaultEnergy),
			SprintMinutes: DefaultSprintMinutes,
			TopK:          DefaultTopK,
			LeadMinutes:   DefaultLeadMinutes,
		},
		Weights: WeightsConfig{
			Energy: DefaultEnergyWeights(),
			Tag:    DefaultTagWeights(),
		},
		Calendar: defaultCalendar(),
		Google:   defaultGoogle(),
		NextID:   1,
	}
}

// Dir returns the absolute path to the planner directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the planner directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// TasksPath returns the absolute path to the tasks directory.
func (c *Config) TasksPath() string {
	return filepath.Join(c.dir, c.TasksDir)
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// ResolvePath makes p absolute relative to the planner directory.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// ScoringWeights converts the configured multipliers for the planner.
func (c *Config) ScoringWeights() planner.Weights {
	w := planner.Weights{
		Energy: make(map[task.Energy]float64, len(c.Weights.Energy)),
		Tag:    make(map[task.Tag]float64, len(c.Weights.Tag)),
	}
	for k, v := range c.Weights.Energy {
		w.Energy[task.Energy(k)] = v
	}
	for k, v := range c.Weights.Tag {
		w.Tag[task.Tag(k)] = v
	}
	return w
}

// DefaultContext returns the planning context configured as default.
func (c *Config) DefaultContext() planner.Context {
	return planner.Context{
		TimeAvailable: c.Planner.TimeAvailable,
		Energy:        task.Energy(c.Planner.Energy),
	}
}

// NewPlanner returns a planner using the configured weights, shortlist size
// and lead time, on the wall clock.
func (c *Config) NewPlanner() *planner.Planner {
	p := planner.New()
	p.Weights = c.ScoringWeights()
	p.TopK = c.Planner.TopK
	p.Lead = time.Duration(c.Planner.LeadMinutes) * time.Minute
	return p
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if c.TasksDir == "" {
		return fmt.Errorf("%w: tasks_dir is required", ErrInvalid)
	}
	if err := c.validateDefaults(); err != nil {
		return err
	}
	if err := c.validatePlanner(); err != nil {
		return err
	}
	if err := c.validateWeights(); err != nil {
		return err
	}
	if c.NextID < 1 {
		return fmt.Errorf("%w: next_id must be >= 1", ErrInvalid)
	}
	return nil
}

func (c *Config) validateDefaults() error {
	if err := task.ValidateEffort(c.Defaults.Effort); err != nil {
		return fmt.Errorf("%w: defaults.effort: %w", ErrInvalid, err)
	}
	if err := task.ValidateFrequency(c.Defaults.Frequency); err != nil {
		return fmt.Errorf("%w: defaults.frequency: %w", ErrInvalid, err)
	}
	if err := task.ValidateTag(c.Defaults.Tag); err != nil {
		return fmt.Errorf("%w: defaults.tag: %w", ErrInvalid, err)
	}
	return nil
}

func (c *Config) validatePlanner() error {
	p := c.Planner
	if err := c.DefaultContext().Validate(); err != nil {
		return fmt.Errorf("%w: planner: %w", ErrInvalid, err)
	}
	if err := planner.ValidateSprintMinutes(p.SprintMinutes); err != nil {
		return fmt.Errorf("%w: planner.sprint_minutes: %w", ErrInvalid, err)
	}
	if p.TopK < 1 {
		return fmt.Errorf("%w: planner.top_k must be >= 1", ErrInvalid)
	}
	if p.LeadMinutes < 0 {
		return fmt.Errorf("%w: planner.lead_minutes must be >= 0", ErrInvalid)
	}
	return nil
}

func (c *Config) validateWeights() error {
	for k, v := range c.Weights.Energy {
		if err := task.ValidateEnergy(k); err != nil {
			return fmt.Errorf("%w: weights.energy: %w", ErrInvalid, err)
		}
		if v <= 0 {
			return fmt.Errorf("%w: weights.energy.%s must be > 0", ErrInvalid, k)
		}
	}
	for k, v := range c.Weights.Tag {
		if err := task.ValidateTag(k); err != nil {
			return fmt.Errorf("%w: weights.tag: %w", ErrInvalid, err)
		}
		if v <= 0 {
			return fmt.Errorf("%w: weights.tag.%s must be > 0", ErrInvalid, k)
		}
	}
	return nil
}

// Init creates a new planner in the given directory with default settings.
// It creates the planner directory, tasks subdirectory, and config file.
func Init(dir, name string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg := NewDefault(name)
	cfg.SetDir(absDir)

	if err := os.MkdirAll(cfg.TasksPath(), dirMode); err != nil {
		return nil, fmt.Errorf("creating tasks directory: %w", err)
	}

	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads and validates a config from the given planner directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.dir = absDir

	// Migrate old config versions forward before validating.
	oldVersion := cfg.Version
	if err := migrate(&cfg); err != nil {
		return nil, err
	}

	// Persist migrated config so future loads skip re-migration.
	if cfg.Version != oldVersion {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("saving migrated config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FindDir walks upward from startDir looking for a planner directory
// containing config.yml. Returns the absolute path to the planner directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the planner directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.PlannerNotFound,
				"no planner found (run 'lifereset init' to create one)")
		}
		dir = parent
	}
}
