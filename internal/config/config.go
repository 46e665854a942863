package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
)

const fileMode = 0o600

// Sentinel errors.
var (
	ErrNotFound = errors.New("no tracker found (run 'tasktracker init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the tracker configuration.
type Config struct {
	Version      int           `yaml:"version"`
	Tracker      TrackerConfig `yaml:"tracker"`
	DataFile     string        `yaml:"data_file"`
	HistoryFile  string        `yaml:"history_file"`
	HistoryLimit int           `yaml:"history_limit,omitempty"`
	Server       ServerConfig  `yaml:"server"`
	TUI          TUIConfig     `yaml:"tui,omitempty"`

	// dir is the absolute path to the tracker directory (not serialized).
	dir string `yaml:"-"`
}

// TrackerConfig holds tracker metadata.
type TrackerConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// ServerConfig holds settings of the HTTP server.
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	LogLevel string `yaml:"log_level"`
}

// TUIConfig holds TUI-specific display settings.
type TUIConfig struct {
	TitleLines int `yaml:"title_lines,omitempty"`
}

// NewDefault creates a Config with default values.
func NewDefault(name string) *Config {
	return &Config{
		Version:     CurrentVersion,
		Tracker:     TrackerConfig{Name: name},
		DataFile:    DefaultDataFile,
		HistoryFile: DefaultHistoryFile,
		Server:      ServerConfig{Addr: DefaultAddr, LogLevel: DefaultLogLevel},
		TUI:         TUIConfig{TitleLines: DefaultTitleLines},
	}
}

// fillDefaults sets the optional keys a hand-written config may omit.
func (c *Config) fillDefaults() {
	if c.HistoryFile == "" {
		c.HistoryFile = DefaultHistoryFile
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = DefaultLogLevel
	}
}

// Dir returns the absolute path to the tracker directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the tracker directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// DataPath returns the absolute path to the CSV data file.
func (c *Config) DataPath() string {
	return c.resolve(c.DataFile)
}

// HistoryPath returns the absolute path to the view history file.
func (c *Config) HistoryPath() string {
	return c.resolve(c.HistoryFile)
}

// LockPath returns the path of the lock file that serializes CLI writers.
func (c *Config) LockPath() string {
	return filepath.Join(c.dir, LockFileName)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.dir, name)
}

// TitleLines returns the configured number of title lines for TUI cards.
// Returns DefaultTitleLines if the value is unset (zero).
func (c *Config) TitleLines() int {
	if c.TUI.TitleLines == 0 {
		return DefaultTitleLines
	}
	return c.TUI.TitleLines
}

// ApplyEnv overrides server settings from TASKTRACKER_ADDR and
// TASKTRACKER_LOG_LEVEL. Overrides are not saved.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Server.LogLevel = strings.ToLower(v)
	}
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.Tracker.Name == "" {
		return fmt.Errorf("%w: tracker.name is required", ErrInvalid)
	}
	if c.DataFile == "" {
		return fmt.Errorf("%w: data_file is required", ErrInvalid)
	}
	if c.HistoryFile == "" {
		return fmt.Errorf("%w: history_file is required", ErrInvalid)
	}
	if c.resolve(c.DataFile) == c.resolve(c.HistoryFile) {
		return fmt.Errorf("%w: data_file and history_file must differ", ErrInvalid)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("%w: history_limit must be >= 0", ErrInvalid)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalid)
	}
	if !slices.Contains(LogLevels, c.Server.LogLevel) {
		return fmt.Errorf("%w: server.log_level %q must be one of %s",
			ErrInvalid, c.Server.LogLevel, strings.Join(LogLevels, ", "))
	}
	return c.validateTUI()
}

func (c *Config) validateTUI() error {
	const minTitleLines, maxTitleLines = 1, 3
	if c.TUI.TitleLines != 0 && (c.TUI.TitleLines < minTitleLines || c.TUI.TitleLines > maxTitleLines) {
		return fmt.Errorf("%w: tui.title_lines must be between %d and %d",
			ErrInvalid, minTitleLines, maxTitleLines)
	}
	return nil
}

// Init creates a new tracker in the given directory with default settings.
// It fails with ALREADY_INITIALIZED if a config file is already present.
func Init(dir, name string) (*Config, error) {
	const dirMode = 0o750

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg := NewDefault(name)
	cfg.SetDir(absDir)

	if _, err := os.Stat(cfg.ConfigPath()); err == nil {
		return nil, clierr.Newf(clierr.AlreadyInitialized, "tracker already initialized in %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}

	if err := os.MkdirAll(absDir, dirMode); err != nil {
		return nil, fmt.Errorf("creating tracker directory: %w", err)
	}

	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads and validates a config from the given tracker directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.dir = absDir

	if cfg.Version > CurrentVersion {
		return nil, fmt.Errorf(
			"%w: config version %d is newer than supported version %d (upgrade tasktracker)",
			ErrInvalid, cfg.Version, CurrentVersion,
		)
	}
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FindDir walks upward from startDir looking for a tracker directory
// containing config.yml. Returns the absolute path to the tracker directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the tracker directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.TrackerNotFound,
				"no tracker found (run 'tasktracker init' to create one)")
		}
		dir = parent
	}
}
