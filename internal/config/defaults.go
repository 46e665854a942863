// Package config handles tracker configuration.
package config

const (
	// DefaultDir is the default tracker directory name.
	DefaultDir = ".tasktracker"
	// DefaultDataFile is the default CSV data file name.
	DefaultDataFile = "tasks.csv"
	// DefaultHistoryFile is the default view history file name.
	DefaultHistoryFile = "history.yml"
	// DefaultAddr is the default listen address of the HTTP server.
	DefaultAddr = ":8080"
	// DefaultLogLevel is the default server log level.
	DefaultLogLevel = "info"
	// DefaultTitleLines is the default number of title lines in TUI cards.
	DefaultTitleLines = 2

	// ConfigFileName is the name of the config file within the tracker directory.
	ConfigFileName = "config.yml"
	// LockFileName guards load-modify-save cycles of the CLI.
	LockFileName = "tracker.lock"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 1
)

// Environment variables that override config values.
const (
	EnvDir      = "TASKTRACKER_DIR"
	EnvOutput   = "TASKTRACKER_OUTPUT"
	EnvAddr     = "TASKTRACKER_ADDR"
	EnvLogLevel = "TASKTRACKER_LOG_LEVEL"
)

// LogLevels are the accepted values of server.log_level.
var LogLevels = []string{"trace", "debug", "info", "warn", "error", "disabled"}
