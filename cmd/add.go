package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/lifereset/internal/board"
	"github.com/twiced-technology-gmbh/lifereset/internal/clierr"
	"github.com/twiced-technology-gmbh/lifereset/internal/config"
	"github.com/twiced-technology-gmbh/lifereset/internal/date"
	"github.com/twiced-technology-gmbh/lifereset/internal/output"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

var addCmd = &cobra.Command{
	Use:     "add [TITLE]",
	Aliases: []string{"create"},
	Short:   "Add a new task",
	Long: `Adds a chore with the given title and optional fields.

Title can be provided as a positional argument or via --title flag.
Fields not given fall back to the defaults in config.yml; energy falls back to
the planner's default energy level.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().String("title", "", "task title (alternative to positional argument)")
	addCmd.Flags().Int("effort", 0, "effort in minutes (default from config)")
	addCmd.Flags().String("frequency", "", oneOf(task.Frequencies)+" (default from config)")
	addCmd.Flags().String("tag", "", oneOf(task.Tags)+" (default from config)")
	addCmd.Flags().String("energy", "", "energy the task needs: "+oneOf(task.Energies))
	addCmd.Flags().String("due", "", "due date (YYYY-MM-DD)")
	addCmd.Flags().String("notes", "", "free-form notes (markdown)")
	addCmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "minutes", "estimate":
			name = "effort"
		case "description", "body":
			name = "notes"
		case "repeat", "every":
			name = "frequency"
		}
		return pflag.NormalizedName(name)
	})
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	title, err := resolveAddTitle(cmd, args)
	if err != nil {
		return err
	}

	d, err := draftFromFlags(cmd, cfg, title)
	if err != nil {
		return err
	}

	t, err := board.AddTask(cfg, d, now())
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}
	output.Messagef(os.Stdout, "Added task #%d: %s", t.ID, t.Title)
	output.Messagef(os.Stdout, "  Next due: %s", t.NextDue)
	return nil
}

func resolveAddTitle(cmd *cobra.Command, args []string) (string, error) {
	titleFlag, _ := cmd.Flags().GetString("title")
	switch {
	case len(args) > 0 && titleFlag != "":
		return "", clierr.New(clierr.InvalidInput, "provide title as argument or --title, not both")
	case len(args) > 0:
		return args[0], nil
	default:
		if strings.TrimSpace(titleFlag) == "" {
			return "", task.ErrEmptyTitle()
		}
		return titleFlag, nil
	}
}

// draftFromFlags builds a draft from flags over the config defaults.
func draftFromFlags(cmd *cobra.Command, cfg *config.Config, title string) (task.Draft, error) {
	d := task.Draft{
		Title:     title,
		Effort:    cfg.Defaults.Effort,
		Frequency: task.Frequency(cfg.Defaults.Frequency),
		Tag:       task.Tag(cfg.Defaults.Tag),
		Energy:    task.Energy(cfg.Planner.Energy),
	}

	if cmd.Flags().Changed("effort") {
		d.Effort, _ = cmd.Flags().GetInt("effort")
	}
	if v, _ := cmd.Flags().GetString("frequency"); v != "" {
		d.Frequency = task.Frequency(v)
	}
	if v, _ := cmd.Flags().GetString("tag"); v != "" {
		d.Tag = task.Tag(v)
	}
	if v, _ := cmd.Flags().GetString("energy"); v != "" {
		d.Energy = task.Energy(v)
	}
	d.Notes, _ = cmd.Flags().GetString("notes")

	if v, _ := cmd.Flags().GetString("due"); v != "" {
		due, err := date.Parse(v)
		if err != nil {
			return task.Draft{}, task.FormatDueDate(v, err)
		}
		d.Due = &due
	}
	return d, nil
}
