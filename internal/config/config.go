package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNoDirectories is returned when no target directory is configured.
// It is the only fatal configuration error.
var ErrNoDirectories = errors.New("no target directories configured: set LOGUDGE_TARGET_DIRECTORIES or target_directories in the config file")

// Environment variables read by ApplyEnv
const (
	EnvTargetDirectories = "LOGUDGE_TARGET_DIRECTORIES"
	EnvCheckInterval     = "LOGUDGE_CHECK_INTERVAL"
	EnvSilenceThreshold  = "LOGUDGE_SILENCE_THRESHOLD"
	EnvPromptTimeout     = "LOGUDGE_PROMPT_TIMEOUT"
	EnvAudio             = "LOGUDGE_AUDIO"
	EnvMaxDepth          = "LOGUDGE_MAX_DEPTH"
	EnvScanWorkers       = "LOGUDGE_SCAN_WORKERS"
	EnvConfigPath        = "LOGUDGE_CONFIG"
)

// Config holds everything the monitor needs. It is built once at startup
// and passed into the monitor; nothing reads it from globals.
type Config struct {
	// TargetDirectories are scanned in this order every tick.
	// Order matters: on equal timestamps the earlier directory wins.
	TargetDirectories []string `yaml:"target_directories"`

	// CheckInterval is the base interval between ticks.
	// The effective interval is CheckInterval / depth.
	// Default: 10 minutes
	CheckInterval time.Duration `yaml:"check_interval"`

	// SilenceThreshold is how long the window may stay empty before the
	// monitor fires its escalation alert and stops alerting.
	// Default: 30 minutes
	SilenceThreshold time.Duration `yaml:"silence_threshold"`

	// PromptTimeout bounds every interactive question
	// Default: 60 seconds
	PromptTimeout time.Duration `yaml:"prompt_timeout"`

	// AlertMinGap is the minimum time between two spoken alerts
	// Default: 5 seconds
	AlertMinGap time.Duration `yaml:"alert_min_gap"`

	// MaxDepth caps the escalation depth (and so the shortest interval).
	// 0 means unbounded: every silent tick deepens.
	// Default: 60
	MaxDepth int `yaml:"max_depth"`

	// ScanWorkers bounds how many directories are scanned concurrently
	// Default: 4
	ScanWorkers int `yaml:"scan_workers"`

	// Extensions of files that hold log entries
	// Default: [".md"]
	Extensions []string `yaml:"extensions"`

	// Exclude patterns for paths that are never scanned
	// Default: [".git/"]
	Exclude []string `yaml:"exclude"`

	// Audio enables spoken alerts
	// Default: true
	Audio bool `yaml:"audio"`

	// SpeakCommand, NotifyCommand and OpenCommand override the platform
	// defaults of the notify package when non-empty.
	SpeakCommand  string `yaml:"speak_command,omitempty"`
	NotifyCommand string `yaml:"notify_command,omitempty"`
	OpenCommand   string `yaml:"open_command,omitempty"`
}

// Default returns a configuration with every tunable set and no directories
func Default() *Config {
	return &Config{
		CheckInterval:    10 * time.Minute,
		SilenceThreshold: 30 * time.Minute,
		PromptTimeout:    60 * time.Second,
		AlertMinGap:      5 * time.Second,
		MaxDepth:         60,
		ScanWorkers:      4,
		Extensions:       []string{".md"},
		Exclude:          []string{".git/"},
		Audio:            true,
	}
}

// DefaultPath returns $LOGUDGE_CONFIG, or ~/.config/logudge/config.yaml
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "logudge", "config.yaml")
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
// Returns the defaults if the file doesn't exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from LOGUDGE_* environment variables.
// Invalid values are ignored with a warning.
func (c *Config) ApplyEnv() {
	if val := os.Getenv(EnvTargetDirectories); val != "" {
		c.TargetDirectories = SplitDirectories(val)
	}

	c.CheckInterval = envDuration(EnvCheckInterval, c.CheckInterval)
	c.SilenceThreshold = envDuration(EnvSilenceThreshold, c.SilenceThreshold)
	c.PromptTimeout = envDuration(EnvPromptTimeout, c.PromptTimeout)
	c.MaxDepth = envInt(EnvMaxDepth, c.MaxDepth)
	c.ScanWorkers = envInt(EnvScanWorkers, c.ScanWorkers)

	if val := os.Getenv(EnvAudio); val != "" {
		c.Audio = parseBool(val)
	}
}

// Load builds the configuration: defaults, then the YAML file at path,
// then the environment. The result is validated.
func Load(path string) (*Config, error) {
	cfg, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and normalizes directory paths
func (c *Config) Validate() error {
	dirs := make([]string, 0, len(c.TargetDirectories))
	for _, d := range c.TargetDirectories {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		dirs = append(dirs, expandHome(d))
	}
	if len(dirs) == 0 {
		return ErrNoDirectories
	}
	c.TargetDirectories = dirs

	if c.CheckInterval <= 0 {
		return fmt.Errorf("check_interval must be positive, got %v", c.CheckInterval)
	}
	if c.SilenceThreshold <= 0 {
		return fmt.Errorf("silence_threshold must be positive, got %v", c.SilenceThreshold)
	}
	if c.PromptTimeout <= 0 {
		return fmt.Errorf("prompt_timeout must be positive, got %v", c.PromptTimeout)
	}
	if c.AlertMinGap < 0 {
		return fmt.Errorf("alert_min_gap cannot be negative, got %v", c.AlertMinGap)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth cannot be negative, got %d", c.MaxDepth)
	}
	if c.ScanWorkers < 1 {
		return fmt.Errorf("scan_workers must be at least 1, got %d", c.ScanWorkers)
	}
	if len(c.Extensions) == 0 {
		c.Extensions = Default().Extensions
	}
	return nil
}

// SplitDirectories splits a semicolon-delimited directory list,
// dropping empty elements.
func SplitDirectories(val string) []string {
	var dirs []string
	for _, d := range strings.Split(val, ";") {
		if d = strings.TrimSpace(d); d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

func envDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid duration %s=%q, using %v\n", key, val, fallback)
		return fallback
	}
	return d
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid integer %s=%q, using %d\n", key, val, fallback)
		return fallback
	}
	return n
}

// parseBool parses a boolean string with a default value of true
func parseBool(val string) bool {
	switch strings.ToLower(val) {
	case "false", "0", "no", "off":
		return false
	default:
		return true
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
