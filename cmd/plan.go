package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/lifereset/internal/clierr"
	"github.com/twiced-technology-gmbh/lifereset/internal/output"
	"github.com/twiced-technology-gmbh/lifereset/internal/planner"
)

var planCmd = &cobra.Command{
	Use:     "plan",
	Aliases: []string{"now"},
	Short:   "Suggest what to do next",
	Long: `Ranks the tasks that fit in the time available and match the energy level,
and prints the top picks. Time and energy default to the planner config.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	addContextFlags(planCmd)
	planCmd.Flags().Int("top", 0, "number of picks to show (default from config)")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, err := contextFromFlags(cmd, cfg)
	if err != nil {
		return err
	}

	p := newPlanner(cfg)
	if top, _ := cmd.Flags().GetInt("top"); top != 0 {
		if top < 1 {
			return clierr.Newf(clierr.InvalidInput, "--top must be >= 1, got %d", top)
		}
		p.TopK = top
	}

	tasks, err := loadTasks(cfg)
	if err != nil {
		return err
	}

	pool := p.Pool(tasks, ctx)
	picks := planner.Top(pool, p.TopK)

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, output.NewPlanResponse(ctx, len(pool), picks))
	case output.FormatCompact:
		output.PickCompact(os.Stdout, picks)
	default:
		output.PickTable(os.Stdout, ctx, picks)
	}
	return nil
}
