package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/api"
	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tracker over HTTP",
	Long: `Loads the tracker and serves it as a JSON API:

  GET|POST|DELETE  /tasks, /epics, /subtasks
  GET|DELETE       /tasks/:id, /epics/:id, /subtasks/:id
  GET              /epics/:id/subtasks, /history, /prioritized

The data and history files are saved after every change. The server keeps
its own copy of the data, so edits made by other processes while it runs
are overwritten by its next save.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().String("log-format", string(logger.FormatConsole), "log format (console, json)")
	serveCmd.Flags().Bool("memory", false, "keep changes in memory only")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	tr, err := openTracker()
	if err != nil {
		return err
	}
	cfg := tr.Config()

	addr := cfg.Server.Addr
	if cmd.Flags().Changed("addr") {
		addr, _ = cmd.Flags().GetString("addr")
	}

	rawFormat, _ := cmd.Flags().GetString("log-format")
	format := logger.Format(rawFormat)
	if format != logger.FormatConsole && format != logger.FormatJSON {
		return clierr.Newf(clierr.InvalidInput, "invalid --log-format %q; valid: console, json", rawFormat)
	}
	log, err := logger.New(os.Stderr, cfg.Server.LogLevel, format)
	if err != nil {
		return clierr.Wrap(clierr.InvalidInput, err, "server.log_level %q", cfg.Server.LogLevel)
	}

	s, err := tr.Load()
	if err != nil {
		return err
	}
	counts := s.Counts()
	log.Info().
		Str("tracker", cfg.Tracker.Name).
		Str("data", cfg.DataPath()).
		Interface("counts", counts).
		Msg("loaded tracker")

	var p api.Persister = tr
	if memory, _ := cmd.Flags().GetBool("memory"); memory {
		p = nil
		log.Warn().Msg("changes will not be saved")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return api.New(s, p, log).Run(ctx, addr)
}
