package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/lifereset/internal/board"
	"github.com/twiced-technology-gmbh/lifereset/internal/clierr"
	"github.com/twiced-technology-gmbh/lifereset/internal/config"
	"github.com/twiced-technology-gmbh/lifereset/internal/gcal"
	"github.com/twiced-technology-gmbh/lifereset/internal/ics"
	"github.com/twiced-technology-gmbh/lifereset/internal/output"
	"github.com/twiced-technology-gmbh/lifereset/internal/planner"
)

var sprintCmd = &cobra.Command{
	Use:   "sprint",
	Short: "Pack a timed sprint of tasks",
	Long: `Greedily packs the ranked tasks into a sprint budget and lays them out back to
back, starting a few minutes from now.

Use --ics to write the sprint as an iCalendar file, or --push to insert the
blocks into Google Calendar (run 'lifereset calendar auth' first).`,
	Args: cobra.NoArgs,
	RunE: runSprint,
}

func init() {
	addContextFlags(sprintCmd)
	sprintCmd.Flags().Int("sprint", 0, fmt.Sprintf("sprint length in minutes (%d-%d, default from config)",
		planner.MinSprintMinutes, planner.MaxSprintMinutes))
	sprintCmd.Flags().String("ics", "", "write the sprint to this .ics file")
	sprintCmd.Flags().Bool("push", false, "insert the sprint into Google Calendar")
	rootCmd.AddCommand(sprintCmd)
}

func runSprint(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, err := contextFromFlags(cmd, cfg)
	if err != nil {
		return err
	}

	budget, err := sprintBudget(cmd, cfg, "sprint")
	if err != nil {
		return err
	}

	tasks, err := loadTasks(cfg)
	if err != nil {
		return err
	}

	plan := newPlanner(cfg).Sprint(tasks, ctx, budget)
	if len(plan.Blocks) == 0 {
		return nothingToPlan(ctx)
	}
	logActivity(cfg, board.ActionSprint, 0,
		fmt.Sprintf("%d tasks, %d/%d minutes", len(plan.Blocks), plan.Used, plan.Budget))

	if path, _ := cmd.Flags().GetString("ics"); path != "" {
		if err := writeICSFile(path, cfg, plan.Blocks, cfg.Calendar.SprintDescription); err != nil {
			return err
		}
		logActivity(cfg, board.ActionExport, 0, path)
	}

	if push, _ := cmd.Flags().GetBool("push"); push {
		if err := pushSprint(cmd.Context(), cfg, plan.Blocks); err != nil {
			return err
		}
	}

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, plan)
	case output.FormatCompact:
		output.SprintCompact(os.Stdout, plan)
	default:
		output.SprintTable(os.Stdout, plan)
	}
	return nil
}

// sprintBudget reads the sprint length from the named int flag, falling back
// to the planner config.
func sprintBudget(cmd *cobra.Command, cfg *config.Config, flag string) (int, error) {
	budget := cfg.Planner.SprintMinutes
	if cmd.Flags().Changed(flag) {
		budget, _ = cmd.Flags().GetInt(flag)
	}
	if err := planner.ValidateSprintMinutes(budget); err != nil {
		return 0, err
	}
	return budget, nil
}

// pushFailed reports a push that stopped after pushed of total events.
func pushFailed(pushed, total int, calendarID string, err error) error {
	return clierr.Newf(clierr.CalendarUnavailable,
		"pushed %d of %d events to %s before failing: %v", pushed, total, calendarID, err).
		WithDetails(map[string]any{"pushed": pushed, "total": total, "calendar_id": calendarID})
}

// writeICSFile encodes blocks as a calendar into path.
func writeICSFile(path string, cfg *config.Config, blocks []planner.Block, fallback string) error {
	f, err := os.Create(path) //nolint:gosec // path given by the user
	if err != nil {
		return fmt.Errorf("creating calendar file: %w", err)
	}
	cal := ics.Calendar{ProdID: cfg.Calendar.ProdID, Events: ics.FromBlocks(blocks, fallback)}
	if err := ics.Encode(f, cal); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func pushSprint(parent context.Context, cfg *config.Config, blocks []planner.Block) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	client, err := gcal.New(ctx, gcal.Options{
		CredentialsFile: cfg.ResolvePath(cfg.Google.CredentialsFile),
		TokenFile:       cfg.ResolvePath(cfg.Google.TokenFile),
		CalendarID:      cfg.Google.CalendarID,
	})
	if err != nil {
		return err
	}

	events, err := client.Push(ctx, blocks, cfg.Calendar.SprintDescription)
	if err != nil {
		if len(events) > 0 {
			logActivity(cfg, board.ActionPush, 0,
				fmt.Sprintf("%d of %d events to %s", len(events), len(blocks), cfg.Google.CalendarID))
		}
		return pushFailed(len(events), len(blocks), cfg.Google.CalendarID, err)
	}
	logActivity(cfg, board.ActionPush, 0,
		fmt.Sprintf("%d events to %s", len(events), cfg.Google.CalendarID))
	if outputFormat() != output.FormatJSON {
		output.Messagef(os.Stderr, "Pushed %d events to Google Calendar (%s)", len(events), cfg.Google.CalendarID)
	}
	return nil
}
