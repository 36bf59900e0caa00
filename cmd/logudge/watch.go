package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/logudge/internal/config"
	"github.com/steveyegge/logudge/internal/display"
	"github.com/steveyegge/logudge/internal/monitor"
	"github.com/steveyegge/logudge/internal/notify"
	"github.com/steveyegge/logudge/internal/prompt"
	"github.com/steveyegge/logudge/internal/scanner"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch log directories and nudge when logs stop",
	Long: `Check the configured directories every interval for log entries newer
than the last check.

When a new entry appears the interval resets and you are offered to open
the last log file (y), pick a file to add to (i), or carry on (x).
When none appears you are alerted and the next check comes sooner:
the interval is the base interval divided by the number of silent checks.
After the silence threshold a final alert fires and alerts pause until
you write a new log.

Type 'quit' at any prompt or press Ctrl+C to stop.`,
	Run: func(cmd *cobra.Command, args []string) {
		runWatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		if errors.Is(err, config.ErrNoDirectories) {
			fmt.Fprintf(os.Stderr, "Error: %v\nSet %s or pass --dir.\n", err, config.EnvTargetDirectories)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	console := display.NewConsole(os.Stdout)

	prompter, err := prompt.New(&prompt.Config{
		Out:         os.Stdout,
		OnInterrupt: cancel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer prompter.Close()

	m, err := monitor.New(cfg, monitor.Deps{
		Scanner: scanner.New(scanner.Options{
			Extensions: cfg.Extensions,
			Exclude:    cfg.Exclude,
		}),
		Alerter: notify.NewSpeaker(notify.SpeakerConfig{
			Audio:         cfg.Audio,
			SpeakCommand:  cfg.SpeakCommand,
			NotifyCommand: cfg.NotifyCommand,
			MinGap:        cfg.AlertMinGap,
			Bell:          os.Stdout,
		}),
		Opener:   notify.NewOpener(cfg.OpenCommand),
		Prompter: prompter,
		Picker:   prompt.NewPicker(prompter, os.Stdout, cfg.PromptTimeout),
		Reporter: console,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = m.Run(ctx)
	switch {
	case errors.Is(err, monitor.ErrQuit):
		fmt.Printf("\n%s\n", color.CyanString("Quitting the log monitor."))
	case errors.Is(err, context.Canceled):
		fmt.Printf("\n\n%s\n", color.CyanString("Stopped watching"))
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
