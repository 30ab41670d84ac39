package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/lifereset/internal/clierr"
	"github.com/twiced-technology-gmbh/lifereset/internal/config"
	"github.com/twiced-technology-gmbh/lifereset/internal/filelock"
	"github.com/twiced-technology-gmbh/lifereset/internal/output"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify planner configuration",
	Long:  `View the full configuration, get a specific key, or set a writable value.`,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get      func(*config.Config) any
	set      func(*config.Config, string) error
	writable bool
}

func stringAccessor(field func(*config.Config) *string) configAccessor {
	return configAccessor{
		get:      func(c *config.Config) any { return *field(c) },
		set:      func(c *config.Config, v string) error { *field(c) = v; return nil },
		writable: true,
	}
}

// intAccessor parses the value as an integer; range checks are left to
// Config.Validate.
func intAccessor(key string, field func(*config.Config) *int) configAccessor {
	return configAccessor{
		get: func(c *config.Config) any { return *field(c) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return clierr.Newf(clierr.InvalidInput, "invalid %s %q: must be an integer", key, v)
			}
			*field(c) = n
			return nil
		},
		writable: true,
	}
}

func weightAccessor(key string, weights func(*config.Config) map[string]float64, name string) configAccessor {
	return configAccessor{
		get: func(c *config.Config) any { return weights(c)[name] },
		set: func(c *config.Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return clierr.Newf(clierr.InvalidInput, "invalid %s %q: must be a number", key, v)
			}
			weights(c)[name] = f
			return nil
		},
		writable: true,
	}
}

func configAccessors() map[string]configAccessor {
	accessors := map[string]configAccessor{
		"tasks_dir": {
			get: func(c *config.Config) any { return c.TasksDir },
		},
		"next_id": {
			get: func(c *config.Config) any { return c.NextID },
		},
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
	}

	accessors["name"] = stringAccessor(func(c *config.Config) *string { return &c.Name })
	accessors["defaults.effort"] = intAccessor("defaults.effort", func(c *config.Config) *int { return &c.Defaults.Effort })
	accessors["defaults.frequency"] = stringAccessor(func(c *config.Config) *string { return &c.Defaults.Frequency })
	accessors["defaults.tag"] = stringAccessor(func(c *config.Config) *string { return &c.Defaults.Tag })

	accessors["planner.time_available"] = intAccessor("planner.time_available",
		func(c *config.Config) *int { return &c.Planner.TimeAvailable })
	accessors["planner.energy"] = stringAccessor(func(c *config.Config) *string { return &c.Planner.Energy })
	accessors["planner.sprint_minutes"] = intAccessor("planner.sprint_minutes",
		func(c *config.Config) *int { return &c.Planner.SprintMinutes })
	accessors["planner.top_k"] = intAccessor("planner.top_k", func(c *config.Config) *int { return &c.Planner.TopK })
	accessors["planner.lead_minutes"] = intAccessor("planner.lead_minutes",
		func(c *config.Config) *int { return &c.Planner.LeadMinutes })

	accessors["calendar.prodid"] = stringAccessor(func(c *config.Config) *string { return &c.Calendar.ProdID })
	accessors["calendar.task_description"] = stringAccessor(
		func(c *config.Config) *string { return &c.Calendar.TaskDescription })
	accessors["calendar.sprint_description"] = stringAccessor(
		func(c *config.Config) *string { return &c.Calendar.SprintDescription })

	accessors["google.calendar_id"] = stringAccessor(func(c *config.Config) *string { return &c.Google.CalendarID })
	accessors["google.credentials_file"] = stringAccessor(
		func(c *config.Config) *string { return &c.Google.CredentialsFile })
	accessors["google.token_file"] = stringAccessor(func(c *config.Config) *string { return &c.Google.TokenFile })

	energyWeights := func(c *config.Config) map[string]float64 { return ensureWeights(&c.Weights.Energy) }
	for _, e := range task.Energies {
		key := "weights.energy." + string(e)
		accessors[key] = weightAccessor(key, energyWeights, string(e))
	}
	tagWeights := func(c *config.Config) map[string]float64 { return ensureWeights(&c.Weights.Tag) }
	for _, tg := range task.Tags {
		key := "weights.tag." + string(tg)
		accessors[key] = weightAccessor(key, tagWeights, string(tg))
	}
	return accessors
}

func ensureWeights(m *map[string]float64) map[string]float64 {
	if *m == nil {
		*m = make(map[string]float64)
	}
	return *m
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	keys := []string{
		"version",
		"name",
		"tasks_dir",
		"defaults.effort",
		"defaults.frequency",
		"defaults.tag",
		"planner.time_available",
		"planner.energy",
		"planner.sprint_minutes",
		"planner.top_k",
		"planner.lead_minutes",
	}
	for _, e := range task.Energies {
		keys = append(keys, "weights.energy."+string(e))
	}
	for _, tg := range task.Tags {
		keys = append(keys, "weights.tag."+string(tg))
	}
	return append(keys,
		"calendar.prodid",
		"calendar.task_description",
		"calendar.sprint_description",
		"google.calendar_id",
		"google.credentials_file",
		"google.token_file",
		"next_id",
	)
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(accessors))
		for _, key := range allConfigKeys() {
			m[key] = accessors[key].get(cfg)
		}
		return output.JSON(os.Stdout, m)
	}

	for _, key := range allConfigKeys() {
		val := accessors[key].get(cfg)
		fmt.Fprintf(os.Stdout, "%-28s %v\n", key, formatConfigValue(val))
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	acc, ok := configAccessors()[key]
	if !ok {
		return unknownConfigKey(key)
	}

	val := acc.get(cfg)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}

	fmt.Fprintln(os.Stdout, formatConfigValue(val))
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	acc, ok := configAccessors()[key]
	if !ok {
		return unknownConfigKey(key)
	}
	if !acc.writable {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Re-read under the lock so a concurrent add does not lose its next_id.
	err = filelock.Guard(cfg.ConfigPath(), func() error {
		fresh, err := config.Load(cfg.Dir())
		if err != nil {
			return err
		}
		if err := acc.set(fresh, value); err != nil {
			return err
		}
		if err := fresh.Validate(); err != nil {
			return clierr.New(clierr.InvalidInput, err.Error()).
				WithDetails(map[string]any{"key": key, "value": value})
		}
		if err := fresh.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		cfg = fresh
		return nil
	})
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": acc.get(cfg)})
	}

	output.Messagef(os.Stdout, "Set %s = %v", key, formatConfigValue(acc.get(cfg)))
	return nil
}

func unknownConfigKey(key string) error {
	return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key).
		WithDetails(map[string]any{"valid": allConfigKeys()})
}

func formatConfigValue(val any) string {
	switch v := val.(type) {
	case string:
		if v == "" {
			return "--"
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
