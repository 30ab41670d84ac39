package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/lifereset/internal/clierr"
	"github.com/twiced-technology-gmbh/lifereset/internal/config"
	"github.com/twiced-technology-gmbh/lifereset/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new planner",
	Long:  `Creates a planner directory with config.yml and a tasks/ subdirectory.`,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().String("name", "", "planner name (defaults to \""+config.DefaultName+"\")")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if dir == "" {
		dir = config.DefaultDir
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	if _, err := os.Stat(filepath.Join(absDir, config.ConfigFileName)); err == nil {
		return clierr.Newf(clierr.PlannerAlreadyExists, "planner already initialized in %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = config.DefaultName
	}

	cfg, err := config.Init(absDir, name)
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status": "initialized",
			"dir":    absDir,
			"name":   name,
			"config": cfg.ConfigPath(),
			"tasks":  cfg.TasksPath(),
		})
	}

	output.Messagef(os.Stdout, "Initialized planner %q in %s", name, absDir)
	output.Messagef(os.Stdout, "  Config: %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Tasks:  %s", cfg.TasksPath())
	output.Messagef(os.Stdout, "  Hint:   Add a chore with: lifereset add --title \"Pay bill\" --effort 10")
	return nil
}
