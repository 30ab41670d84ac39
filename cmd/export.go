package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/lifereset/internal/board"
	"github.com/twiced-technology-gmbh/lifereset/internal/clierr"
	"github.com/twiced-technology-gmbh/lifereset/internal/config"
	"github.com/twiced-technology-gmbh/lifereset/internal/ics"
	"github.com/twiced-technology-gmbh/lifereset/internal/output"
	"github.com/twiced-technology-gmbh/lifereset/internal/planner"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

var exportCmd = &cobra.Command{
	Use:   "export [ID[,ID,...]]",
	Short: "Export tasks as an iCalendar file",
	Long: `Writes one calendar event per task, back to back, with the first block
starting a few minutes from now. Each event lasts the task's effort.

Use --top to export the best pick for the time and energy instead of naming IDs.
The calendar goes to stdout unless --output is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	addContextFlags(exportCmd)
	exportCmd.Flags().Bool("top", false, "export the top pick for --minutes and --energy")
	exportCmd.Flags().StringP("output", "o", "", "write the calendar to this file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	top, _ := cmd.Flags().GetBool("top")
	if top == (len(args) == 1) {
		return clierr.New(clierr.InvalidInput, "provide task IDs or --top, not both or neither")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p := newPlanner(cfg)
	var chosen []planner.Scored
	if top {
		ctx, err := contextFromFlags(cmd, cfg)
		if err != nil {
			return err
		}
		tasks, err := loadTasks(cfg)
		if err != nil {
			return err
		}
		chosen = planner.Top(p.Pool(tasks, ctx), 1)
		if len(chosen) == 0 {
			return clierr.Newf(clierr.NothingToPlan,
				"no task fits %d minutes at %s energy", ctx.TimeAvailable, ctx.Energy)
		}
	} else {
		if chosen, err = readChosen(cfg, args[0]); err != nil {
			return err
		}
	}

	blocks := planner.Schedule(chosen, p.StartAt())
	cal := ics.Calendar{ProdID: cfg.Calendar.ProdID, Events: ics.FromBlocks(blocks, cfg.Calendar.TaskDescription)}

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		if err := ics.Encode(os.Stdout, cal); err != nil {
			return err
		}
	} else {
		if err := writeICSFile(path, cfg, blocks, cfg.Calendar.TaskDescription); err != nil {
			return err
		}
		output.Messagef(os.Stderr, "Wrote %d events to %s", len(blocks), path)
	}

	for _, b := range blocks {
		logActivity(cfg, board.ActionExport, b.Task.ID, b.Start.Format("2006-01-02 15:04"))
	}
	return nil
}

// readChosen loads the tasks named by a comma-separated ID list, in order.
func readChosen(cfg *config.Config, arg string) ([]planner.Scored, error) {
	ids, err := board.ParseIDs(arg)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, task.ValidateTaskID(strings.TrimSpace(arg))
	}

	chosen := make([]planner.Scored, 0, len(ids))
	for _, id := range ids {
		path, err := task.FindByID(cfg.TasksPath(), id)
		if err != nil {
			return nil, err
		}
		t, err := task.Read(path)
		if err != nil {
			return nil, fmt.Errorf("reading task #%d: %w", id, err)
		}
		chosen = append(chosen, planner.Scored{Task: t})
	}
	return chosen, nil
}
