package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/lifereset/internal/board"
	"github.com/twiced-technology-gmbh/lifereset/internal/clierr"
	"github.com/twiced-technology-gmbh/lifereset/internal/config"
	"github.com/twiced-technology-gmbh/lifereset/internal/output"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
	"github.com/twiced-technology-gmbh/lifereset/internal/watcher"
)

var flagWatch bool

var overviewCmd = &cobra.Command{
	Use:     "overview",
	Aliases: []string{"board"},
	Short:   "Show planner overview",
	Long: `Displays task counts and effort per tag and frequency, plus how many tasks
are overdue, due within a week, or have no readable next due date.

Use --watch to keep the display live-updating. The overview re-renders
whenever task files change on disk. Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runOverview,
}

func init() {
	rootCmd.AddCommand(overviewCmd)
	overviewCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "live-update the overview on file changes")
	overviewCmd.Flags().String("group-by", "", "group tasks by field ("+strings.Join(board.ValidGroupByFields(), ", ")+")")
}

func runOverview(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	groupBy, _ := cmd.Flags().GetString("group-by")
	if groupBy != "" && !slices.Contains(board.ValidGroupByFields(), groupBy) {
		return clierr.Newf(clierr.InvalidGroupBy, "invalid --group-by field %q; valid: %s",
			groupBy, strings.Join(board.ValidGroupByFields(), ", "))
	}

	if err := renderOverview(cfg, groupBy); err != nil {
		return err
	}

	if !flagWatch {
		return nil
	}

	return watchOverview(cfg, groupBy)
}

func renderOverview(cfg *config.Config, groupBy string) error {
	tasks, err := loadTasks(cfg)
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}

	if groupBy != "" {
		return outputGroupedList(tasks, groupBy)
	}

	summary := board.Summary(cfg, tasks, now())

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, summary)
	case output.FormatCompact:
		output.OverviewCompact(os.Stdout, summary)
	default:
		output.OverviewTable(os.Stdout, summary)
	}
	return nil
}

func watchOverview(cfg *config.Config, groupBy string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(cfg.TasksPath(), cfg.Dir())
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()

	go w.Run(ctx, func(watchErr error) {
		fmt.Fprintf(os.Stderr, "Warning: file watcher: %v\n", watchErr)
	})

	fmt.Fprintln(os.Stderr, "Watching for changes... (Ctrl+C to stop)")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Changes():
			clearScreen()
			// Re-load config in case the planner name or weights changed.
			freshCfg, loadErr := config.Load(cfg.Dir())
			if loadErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: reloading config: %v\n", loadErr)
				freshCfg = cfg
			}
			if renderErr := renderOverview(freshCfg, groupBy); renderErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: rendering overview: %v\n", renderErr)
			}
		}
	}
}

// clearScreen sends ANSI escape codes to clear the terminal and move the
// cursor to the top-left corner.
func clearScreen() {
	fmt.Fprint(os.Stdout, "\033[2J\033[H")
}
