package cmd

import (
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/lifereset/internal/board"
	"github.com/twiced-technology-gmbh/lifereset/internal/clierr"
	"github.com/twiced-technology-gmbh/lifereset/internal/output"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long:    `Lists tasks with optional filtering, sorting, and output format control.`,
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringSlice("tag", nil, "filter by tag (comma-separated)")
	listCmd.Flags().StringSlice("frequency", nil, "filter by frequency (comma-separated)")
	listCmd.Flags().StringSlice("energy", nil, "filter by energy level (comma-separated)")
	listCmd.Flags().StringP("search", "s", "", "search tasks by title or notes (case-insensitive)")
	listCmd.Flags().Int("due-within", 0, "show only tasks whose next due date is within N days")
	listCmd.Flags().String("sort", board.SortID, "sort field ("+strings.Join(board.ValidSortFields(), ", ")+")")
	listCmd.Flags().BoolP("reverse", "r", false, "reverse sort order")
	listCmd.Flags().IntP("limit", "n", 0, "limit number of results")
	listCmd.Flags().String("group-by", "", "group results by field ("+strings.Join(board.ValidGroupByFields(), ", ")+")")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	tags, _ := cmd.Flags().GetStringSlice("tag")
	frequencies, _ := cmd.Flags().GetStringSlice("frequency")
	energies, _ := cmd.Flags().GetStringSlice("energy")
	search, _ := cmd.Flags().GetString("search")
	sortBy, _ := cmd.Flags().GetString("sort")
	reverse, _ := cmd.Flags().GetBool("reverse")
	limit, _ := cmd.Flags().GetInt("limit")
	groupBy, _ := cmd.Flags().GetString("group-by")

	if groupBy != "" && !slices.Contains(board.ValidGroupByFields(), groupBy) {
		return clierr.Newf(clierr.InvalidGroupBy, "invalid --group-by field %q; valid: %s",
			groupBy, strings.Join(board.ValidGroupByFields(), ", "))
	}
	if !slices.Contains(board.ValidSortFields(), sortBy) {
		return clierr.Newf(clierr.InvalidInput, "invalid --sort field %q; valid: %s",
			sortBy, strings.Join(board.ValidSortFields(), ", "))
	}
	if err := validateEach(tags, task.ValidateTag); err != nil {
		return err
	}
	if err := validateEach(frequencies, task.ValidateFrequency); err != nil {
		return err
	}
	if err := validateEach(energies, task.ValidateEnergy); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	filter := board.FilterOptions{
		Tags:        tags,
		Frequencies: frequencies,
		Energies:    energies,
		Search:      search,
	}
	if cmd.Flags().Changed("due-within") {
		days, _ := cmd.Flags().GetInt("due-within")
		if days < 0 {
			return clierr.Newf(clierr.InvalidInput, "--due-within must be >= 0, got %d", days)
		}
		filter.DueWithin = &days
	}

	opts := board.ListOptions{
		Filter:  filter,
		SortBy:  sortBy,
		Reverse: reverse,
		Limit:   limit,
	}

	tasks, warnings, err := board.List(cfg, opts, now())
	if err != nil {
		return err
	}
	printWarnings(warnings)

	if groupBy != "" {
		return outputGroupedList(tasks, groupBy)
	}
	return outputTaskList(tasks)
}

func validateEach(values []string, validate func(string) error) error {
	for _, v := range values {
		if err := validate(v); err != nil {
			return err
		}
	}
	return nil
}

func outputGroupedList(tasks []*task.Task, groupBy string) error {
	grouped := board.GroupBy(tasks, groupBy)
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, grouped)
	case output.FormatCompact:
		output.GroupedCompact(os.Stdout, grouped)
	default:
		output.GroupedTable(os.Stdout, grouped)
	}
	return nil
}

func outputTaskList(tasks []*task.Task) error {
	format := outputFormat()
	if format == output.FormatJSON {
		if tasks == nil {
			tasks = []*task.Task{}
		}
		return output.JSON(os.Stdout, tasks)
	}
	if format == output.FormatCompact {
		output.TaskCompact(os.Stdout, tasks)
		return nil
	}

	output.TaskTable(os.Stdout, tasks)
	return nil
}
