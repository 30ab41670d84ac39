package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/lifereset/internal/clierr"
	"github.com/twiced-technology-gmbh/lifereset/internal/output"
	"github.com/twiced-technology-gmbh/lifereset/internal/planner"
	"github.com/twiced-technology-gmbh/lifereset/internal/share"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print a plain-text summary to share",
	Long: `Prints today's picks (or, with --sprint, the sprint schedule) as plain text
ready to paste into a message. With --email ADDR a mailto link carrying the
same text is printed instead.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	addContextFlags(summaryCmd)
	summaryCmd.Flags().Bool("sprint", false, "summarize a sprint instead of the top picks")
	summaryCmd.Flags().Int("sprint-minutes", 0, fmt.Sprintf("sprint length in minutes (%d-%d, default from config)",
		planner.MinSprintMinutes, planner.MaxSprintMinutes))
	summaryCmd.Flags().String("email", "", "print a mailto link addressed to ADDR")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, err := contextFromFlags(cmd, cfg)
	if err != nil {
		return err
	}

	tasks, err := loadTasks(cfg)
	if err != nil {
		return err
	}

	budget := 0
	sprint, _ := cmd.Flags().GetBool("sprint")
	if sprint {
		if budget, err = sprintBudget(cmd, cfg, "sprint-minutes"); err != nil {
			return err
		}
	}

	subject, text, err := summaryText(newPlanner(cfg), tasks, ctx, sprint, budget)
	if err != nil {
		return err
	}

	if addr, _ := cmd.Flags().GetString("email"); addr != "" {
		link := share.Mailto(addr, subject, text)
		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, map[string]string{"subject": subject, "body": text, "mailto": link})
		}
		fmt.Fprintln(os.Stdout, link)
		return nil
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{"subject": subject, "body": text})
	}
	fmt.Fprintln(os.Stdout, text)
	return nil
}

// summaryText builds the shareable text for the top picks or, with sprint,
// for a sprint of budget minutes.
func summaryText(p *planner.Planner, tasks []*task.Task, ctx planner.Context, sprint bool, budget int) (subject, text string, err error) {
	if sprint {
		plan := p.Sprint(tasks, ctx, budget)
		if len(plan.Blocks) == 0 {
			return "", "", nothingToPlan(ctx)
		}
		return share.SprintSubject, share.SprintSummary(plan.Blocks), nil
	}
	picks := p.Suggest(tasks, ctx)
	if len(picks) == 0 {
		return "", "", nothingToPlan(ctx)
	}
	return share.TodaySubject, share.Summary(ctx, picks, now()), nil
}

func nothingToPlan(ctx planner.Context) error {
	return clierr.Newf(clierr.NothingToPlan,
		"no task fits %d minutes at %s energy", ctx.TimeAvailable, ctx.Energy).
		WithDetails(map[string]any{"time_available": ctx.TimeAvailable, "energy": string(ctx.Energy)})
}
