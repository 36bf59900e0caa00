package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvTargetDirectories, EnvCheckInterval, EnvSilenceThreshold,
		EnvPromptTimeout, EnvAudio, EnvMaxDepth, EnvScanWorkers, EnvConfigPath,
	} {
		t.Setenv(key, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 10*time.Minute, cfg.CheckInterval)
	assert.Equal(t, 30*time.Minute, cfg.SilenceThreshold)
	assert.Equal(t, 60*time.Second, cfg.PromptTimeout)
	assert.Equal(t, 60, cfg.MaxDepth)
	assert.Equal(t, 4, cfg.ScanWorkers)
	assert.Equal(t, []string{".md"}, cfg.Extensions)
	assert.True(t, cfg.Audio)
	assert.Empty(t, cfg.TargetDirectories)
}

func TestValidate_NoDirectories(t *testing.T) {
	tests := []struct {
		name string
		dirs []string
	}{
		{"nil", nil},
		{"empty", []string{}},
		{"only blanks", []string{"", "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.TargetDirectories = tt.dirs
			err := cfg.Validate()
			assert.True(t, errors.Is(err, ErrNoDirectories), "got %v", err)
		})
	}
}

func TestValidate_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero interval", func(c *Config) { c.CheckInterval = 0 }, "check_interval"},
		{"negative silence", func(c *Config) { c.SilenceThreshold = -time.Second }, "silence_threshold"},
		{"zero prompt timeout", func(c *Config) { c.PromptTimeout = 0 }, "prompt_timeout"},
		{"negative alert gap", func(c *Config) { c.AlertMinGap = -1 }, "alert_min_gap"},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }, "max_depth"},
		{"zero workers", func(c *Config) { c.ScanWorkers = 0 }, "scan_workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.TargetDirectories = []string{"/tmp"}
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_ZeroDepthIsUnbounded(t *testing.T) {
	cfg := Default()
	cfg.TargetDirectories = []string{"/tmp"}
	cfg.MaxDepth = 0
	assert.NoError(t, cfg.Validate())
}

func TestValidate_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := Default()
	cfg.TargetDirectories = []string{"~/notes", " /var/logs "}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{filepath.Join(home, "notes"), "/var/logs"}, cfg.TargetDirectories)
}

func TestSplitDirectories(t *testing.T) {
	assert.Equal(t, []string{"/a", "/b"}, SplitDirectories("/a;/b"))
	assert.Equal(t, []string{"/a", "/b"}, SplitDirectories(";/a;; /b ;"))
	assert.Nil(t, SplitDirectories(""))
}

func TestLoadFromFile_NonExistent(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromFile_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `target_directories:
  - /notes/work
  - /notes/personal
check_interval: 5m
silence_threshold: 20m
audio: false
extensions: [".md", ".markdown"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"/notes/work", "/notes/personal"}, cfg.TargetDirectories)
	assert.Equal(t, 5*time.Minute, cfg.CheckInterval)
	assert.Equal(t, 20*time.Minute, cfg.SilenceThreshold)
	assert.False(t, cfg.Audio)
	assert.Equal(t, []string{".md", ".markdown"}, cfg.Extensions)
	// Unset keys keep their defaults
	assert.Equal(t, 60*time.Second, cfg.PromptTimeout)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("check_interval: [not, a, duration]\n"), 0644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("target_directories: [/from/file]\ncheck_interval: 5m\n"), 0644))

	t.Setenv(EnvTargetDirectories, "/env/a;/env/b")
	t.Setenv(EnvCheckInterval, "2m")
	t.Setenv(EnvAudio, "off")
	t.Setenv(EnvMaxDepth, "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"/env/a", "/env/b"}, cfg.TargetDirectories)
	assert.Equal(t, 2*time.Minute, cfg.CheckInterval)
	assert.False(t, cfg.Audio)
	assert.Equal(t, 60, cfg.MaxDepth, "invalid env value should be ignored")
}

func TestLoad_MissingDirectoriesIsFatal(t *testing.T) {
	clearEnv(t)

	_, err := Load("")
	assert.ErrorIs(t, err, ErrNoDirectories)
}

func TestDefaultPath_Env(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/logudge.yaml")
	assert.Equal(t, "/etc/logudge.yaml", DefaultPath())
}
