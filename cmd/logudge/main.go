package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/steveyegge/logudge/internal/config"
)

var (
	configPath   string
	directories  []string
	interval     time.Duration
	silenceAfter time.Duration
	noAudio      bool
)

var rootCmd = &cobra.Command{
	Use:   "logudge",
	Short: "Nudge yourself to keep a work log",
	Long: `logudge watches directories of markdown notes for timestamped log
headings such as

  ## 2024-03-01 14:05:00 wrote the release notes

and reminds you, more and more often, when you stop writing them.

Running logudge without a subcommand starts the watch loop.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		runWatch(cmd)
	},
}

func init() {
	addConfigFlags(rootCmd.PersistentFlags())
}

func addConfigFlags(flags *pflag.FlagSet) {
	flags.StringVar(&configPath, "config", "", "Config file (default $LOGUDGE_CONFIG or ~/.config/logudge/config.yaml)")
	flags.StringArrayVarP(&directories, "dir", "d", nil, "Directory to watch (repeatable, replaces configured directories)")
	flags.DurationVar(&interval, "interval", 0, "Base check interval (e.g. 10m)")
	flags.DurationVar(&silenceAfter, "silence-after", 0, "Pause alerts after this long without a log (e.g. 30m)")
	flags.BoolVar(&noAudio, "no-audio", false, "Do not speak alerts")
}

// loadConfig resolves the configuration: defaults, file, environment, then
// command line flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags overrides cfg with the flags the user actually set
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.TargetDirectories = append([]string(nil), directories...)
	}
	if flags.Changed("interval") {
		cfg.CheckInterval = interval
	}
	if flags.Changed("silence-after") {
		cfg.SilenceThreshold = silenceAfter
	}
	if flags.Changed("no-audio") {
		cfg.Audio = !noAudio
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
