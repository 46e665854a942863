package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
)

func TestInitAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DefaultDir)

	cfg, err := Init(dir, "home")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultDataFile), cfg.DataPath())
	assert.Equal(t, filepath.Join(dir, DefaultHistoryFile), cfg.HistoryPath())

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "home", loaded.Tracker.Name)
	assert.Equal(t, CurrentVersion, loaded.Version)
	assert.Equal(t, DefaultAddr, loaded.Server.Addr)
	assert.Equal(t, dir, loaded.Dir())

	_, err = Init(dir, "again")
	assert.True(t, clierr.Is(err, clierr.AlreadyInitialized))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadFillsOmittedKeys(t *testing.T) {
	dir := t.TempDir()
	minimal := "version: 1\ntracker:\n  name: minimal\ndata_file: tasks.csv\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(minimal), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.Equal(t, DefaultHistoryFile, cfg.HistoryFile)
	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultLogLevel, cfg.Server.LogLevel)

	// loading does not rewrite the file
	raw, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, minimal, string(raw))
}

func TestLoadRejectsUnsupportedVersion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("version: 99\n"), 0o600))

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrInvalid)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("version: 0\ntracker:\n  name: x\n"), 0o600))
	_, err = Load(dir)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"missing name", func(c *Config) { c.Tracker.Name = "" }},
		{"missing data file", func(c *Config) { c.DataFile = "" }},
		{"same files", func(c *Config) { c.HistoryFile = c.DataFile }},
		{"negative history limit", func(c *Config) { c.HistoryLimit = -1 }},
		{"bad log level", func(c *Config) { c.Server.LogLevel = "loud" }},
		{"title lines", func(c *Config) { c.TUI.TitleLines = 7 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault("x")
			cfg.SetDir(t.TempDir())
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}

	cfg := NewDefault("x")
	assert.NoError(t, cfg.Validate())
}

func TestFindDir(t *testing.T) {
	root := t.TempDir()
	trackerDir := filepath.Join(root, DefaultDir)
	_, err := Init(trackerDir, "x")
	require.NoError(t, err)

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	found, err := FindDir(nested)
	require.NoError(t, err)
	assert.Equal(t, trackerDir, found)

	found, err = FindDir(trackerDir)
	require.NoError(t, err)
	assert.Equal(t, trackerDir, found)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvAddr, "127.0.0.1:9999")
	t.Setenv(EnvLogLevel, "DEBUG")

	cfg := NewDefault("x")
	cfg.ApplyEnv()
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
}

func TestAbsoluteDataFile(t *testing.T) {
	cfg := NewDefault("x")
	cfg.SetDir("/srv/tracker")
	cfg.DataFile = "/data/tasks.csv"
	assert.Equal(t, "/data/tasks.csv", cfg.DataPath())
	assert.Equal(t, "/srv/tracker/history.yml", cfg.HistoryPath())
}
