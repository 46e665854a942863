package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/config"
	"github.com/twiced-technology-gmbh/tasktracker/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify tracker configuration",
	Long: `View the full configuration, get a specific key, or set a writable value.
Values shown include environment overrides; set writes the stored file only.`,
	RunE: runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get      func(*config.Config) any
	set      func(*config.Config, string) error
	writable bool
}

func configAccessors() map[string]configAccessor {
	return map[string]configAccessor{
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"tracker.name": {
			get:      func(c *config.Config) any { return c.Tracker.Name },
			set:      func(c *config.Config, v string) error { c.Tracker.Name = v; return nil },
			writable: true,
		},
		"tracker.description": {
			get:      func(c *config.Config) any { return c.Tracker.Description },
			set:      func(c *config.Config, v string) error { c.Tracker.Description = v; return nil },
			writable: true,
		},
		"data_file": {
			get: func(c *config.Config) any { return c.DataFile },
		},
		"history_file": {
			get: func(c *config.Config) any { return c.HistoryFile },
		},
		"history_limit": {
			get: func(c *config.Config) any { return c.HistoryLimit },
			set: func(c *config.Config, v string) error {
				n, err := atoiSetting("history_limit", v)
				c.HistoryLimit = n
				return err
			},
			writable: true,
		},
		"server.addr": {
			get:      func(c *config.Config) any { return c.Server.Addr },
			set:      func(c *config.Config, v string) error { c.Server.Addr = v; return nil },
			writable: true,
		},
		"server.log_level": {
			get:      func(c *config.Config) any { return c.Server.LogLevel },
			set:      func(c *config.Config, v string) error { c.Server.LogLevel = strings.ToLower(v); return nil },
			writable: true,
		},
		"tui.title_lines": {
			get: func(c *config.Config) any { return c.TitleLines() },
			set: func(c *config.Config, v string) error {
				n, err := atoiSetting("tui.title_lines", v)
				c.TUI.TitleLines = n
				return err // validation handles range check
			},
			writable: true,
		},
	}
}

func atoiSetting(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, clierr.Newf(clierr.InvalidInput, "invalid %s %q: must be an integer", key, v)
	}
	return n, nil
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	return []string{
		"version",
		"tracker.name",
		"tracker.description",
		"data_file",
		"history_file",
		"history_limit",
		"server.addr",
		"server.log_level",
		"tui.title_lines",
	}
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(accessors))
		for _, key := range allConfigKeys() {
			m[key] = accessors[key].get(cfg)
		}
		return output.JSON(os.Stdout, m)
	}

	for _, key := range allConfigKeys() {
		fmt.Fprintf(os.Stdout, "%-20s %v\n", key, accessors[key].get(cfg))
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	acc, err := lookupConfigKey(args[0])
	if err != nil {
		return err
	}
	val := acc.get(cfg)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}
	fmt.Fprintln(os.Stdout, val)
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := loadStoredConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	acc, err := lookupConfigKey(key)
	if err != nil {
		return err
	}
	if !acc.writable {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}

	if err := acc.set(cfg, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return clierr.Wrap(clierr.InvalidInput, err, "rejecting %s", key)
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": acc.get(cfg)})
	}
	output.Messagef(os.Stdout, "Set %s = %v", key, acc.get(cfg))
	return nil
}

func lookupConfigKey(key string) (configAccessor, error) {
	acc, ok := configAccessors()[key]
	if !ok {
		return configAccessor{}, clierr.Newf(clierr.InvalidInput, "unknown config key %q", key).
			WithDetails(map[string]any{"allowed": allConfigKeys()})
	}
	return acc, nil
}
