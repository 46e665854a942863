package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/config"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new tracker",
	Long: `Creates a tracker directory with config.yml. The data and history files
are created on the first save.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("name", "", "tracker name (defaults to current directory name)")
	initCmd.Flags().String("description", "", "tracker description")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if dir == "" {
		dir = os.Getenv(config.EnvDir)
	}
	if dir == "" {
		dir = config.DefaultDir
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		name = filepath.Base(cwd)
	}

	cfg, err := config.Init(dir, name)
	if err != nil {
		return err
	}
	if desc, _ := cmd.Flags().GetString("description"); desc != "" {
		cfg.Tracker.Description = desc
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status":  "initialized",
			"dir":     cfg.Dir(),
			"name":    name,
			"config":  cfg.ConfigPath(),
			"data":    cfg.DataPath(),
			"history": cfg.HistoryPath(),
		})
	}

	output.Messagef(os.Stdout, "Initialized tracker %q in %s", name, cfg.Dir())
	output.Messagef(os.Stdout, "  Config:  %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Data:    %s", cfg.DataPath())
	output.Messagef(os.Stdout, "  History: %s", cfg.HistoryPath())
	return nil
}
