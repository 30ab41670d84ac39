// Package cmd implements the lifereset CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/lifereset/internal/board"
	"github.com/twiced-technology-gmbh/lifereset/internal/clierr"
	"github.com/twiced-technology-gmbh/lifereset/internal/config"
	"github.com/twiced-technology-gmbh/lifereset/internal/output"
	"github.com/twiced-technology-gmbh/lifereset/internal/planner"
	"github.com/twiced-technology-gmbh/lifereset/internal/task"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagCompact bool
	flagDir     string
	flagNoColor bool
)

// now is the clock used by commands; tests replace it.
var now = time.Now

var rootCmd = &cobra.Command{
	Use:   "lifereset",
	Short: "Pick what to do with the time and energy you have",
	Long: `lifereset keeps a list of recurring and one-off chores and answers one
question: given N minutes and an energy level, what should I do now?

Run lifereset with no arguments to open the interactive planner.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runRoot,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || os.Getenv("NO_COLOR") != "" || !stdoutIsTerminal() {
			output.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to planner directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}
	os.Exit(reportError(err))
}

// reportError prints err in the active output mode and returns the exit code.
func reportError(err error) int {
	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		return silent.Code
	}

	jsonMode := flagJSON || output.FromEnv() == output.FormatJSON

	var cliErr *clierr.Error
	isCLIErr := errors.As(err, &cliErr)

	if jsonMode {
		if isCLIErr {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			return cliErr.ExitCode()
		}
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		return 2 //nolint:mnd // exit code 2 for internal errors
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	if isCLIErr {
		return cliErr.ExitCode()
	}
	return 1
}

// runRoot opens the interactive planner, or prints the plan when stdout is
// not a terminal.
func runRoot(cmd *cobra.Command, args []string) error {
	if !stdoutIsTerminal() {
		return runPlan(cmd, args)
	}
	return runTUI(cmd, args)
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// defaultHomeDir returns the path to ~/.config/lifereset.
func defaultHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "lifereset"), nil
}

// resolveDir returns the absolute path to the planner directory.
// Falls back to ~/.config/lifereset if no planner is found in the current directory tree.
func resolveDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	dir, err := config.FindDir(cwd)
	if err == nil {
		return dir, nil
	}

	return defaultHomeDir()
}

// loadConfig finds and loads the planner config.
// If the resolved directory is ~/.config/lifereset and it doesn't exist yet,
// it is created with defaults.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if err == nil {
		return cfg, nil
	}

	if !errors.Is(err, config.ErrNotFound) {
		return nil, err
	}
	homeDir, homeErr := defaultHomeDir()
	if homeErr != nil || dir != homeDir {
		return nil, clierr.Newf(clierr.PlannerNotFound,
			"no planner in %s (run 'lifereset init' to create one)", dir).
			WithDetails(map[string]any{"dir": dir})
	}

	return config.Init(homeDir, config.DefaultName)
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// printWarnings writes task read warnings to stderr.
func printWarnings(warnings []task.ReadWarning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: skipping malformed file %s: %v\n", w.File, w.Err)
	}
}

// logActivity appends an entry to the activity log. Errors are silently
// discarded because logging should never fail a command.
func logActivity(cfg *config.Config, action string, taskID int, detail string) {
	board.LogMutation(cfg.Dir(), action, taskID, detail)
}

// loadTasks reads every task file, reporting malformed ones as warnings.
func loadTasks(cfg *config.Config) ([]*task.Task, error) {
	store, warnings, err := task.LoadStore(cfg.TasksPath())
	if err != nil {
		return nil, err
	}
	printWarnings(warnings)
	return store.Tasks(), nil
}

// newPlanner returns the configured planner on the command clock.
func newPlanner(cfg *config.Config) *planner.Planner {
	p := cfg.NewPlanner()
	p.Now = now
	return p
}

// addContextFlags registers --minutes and --energy.
func addContextFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("minutes", "m", 0, fmt.Sprintf("time available in minutes (%d-%d, default from config)",
		planner.MinTimeAvailable, planner.MaxTimeAvailable))
	cmd.Flags().StringP("energy", "e", "", "energy level: "+oneOf(task.Energies)+" (default from config)")
}

// contextFromFlags builds the planning context from flags over config defaults.
func contextFromFlags(cmd *cobra.Command, cfg *config.Config) (planner.Context, error) {
	ctx := cfg.DefaultContext()
	if cmd.Flags().Changed("minutes") {
		ctx.TimeAvailable, _ = cmd.Flags().GetInt("minutes")
	}
	if v, _ := cmd.Flags().GetString("energy"); v != "" {
		ctx.Energy = task.Energy(v)
	}
	if err := ctx.Validate(); err != nil {
		return planner.Context{}, err
	}
	return ctx, nil
}

// names converts enum values to strings for help text and messages.
func names[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// oneOf renders values as "a, b or c".
func oneOf[T ~string](values []T) string {
	s := names(values)
	if len(s) < 2 { //nolint:mnd // nothing to join
		return strings.Join(s, "")
	}
	return strings.Join(s[:len(s)-1], ", ") + " or " + s[len(s)-1]
}
