package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
	"github.com/twiced-technology-gmbh/tasktracker/internal/report"
)

const defaultExportFile = "tasks.xlsx"

var exportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Export the tracker to an Excel workbook",
	Long: `Writes an .xlsx workbook with a "Schedule" sheet (scheduled entities by
start time) and an "All" sheet (every entity by id). FILE defaults to
tasks.xlsx; use - to write to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, args []string) error {
	path := defaultExportFile
	if len(args) == 1 {
		path = args[0]
	}

	tr, err := openTracker()
	if err != nil {
		return err
	}
	s, err := tr.Load()
	if err != nil {
		return err
	}

	if path == "-" {
		return report.Write(os.Stdout, s.Prioritized(), s.All())
	}
	if err := writeReport(path, func(w io.Writer) error {
		return report.Write(w, s.Prioritized(), s.All())
	}); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"status": "exported", "file": path, "entities": len(s.All())})
	}
	output.Messagef(os.Stdout, "Exported %d entities to %s", len(s.All()), path)
	return nil
}

func writeReport(path string, write func(io.Writer) error) error {
	f, err := os.Create(path) //nolint:gosec // user-chosen output path
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
