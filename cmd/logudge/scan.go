package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/logudge/internal/display"
	"github.com/steveyegge/logudge/internal/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List recent log entries once and exit",
	Long: `Scan the configured directories once and print every log entry newer
than --since, grouped by file. The file holding the newest entry is
marked with '*'.

Useful to check that your headings are recognised.`,
	Run: func(cmd *cobra.Command, args []string) {
		since, _ := cmd.Flags().GetDuration("since")

		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		s := scanner.New(scanner.Options{
			Extensions: cfg.Extensions,
			Exclude:    cfg.Exclude,
		})
		threshold := time.Now().Add(-since)

		cycle, err := s.ScanAll(context.Background(), cfg.TargetDirectories, threshold, cfg.ScanWorkers)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		console := display.NewConsole(os.Stdout)
		console.Problems(cycle)

		if cycle.Empty() {
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Printf("\n%s No log entries in the last %s\n\n", yellow("✨"), since)
			return
		}
		fmt.Print(display.FormatEntries(cycle))
		fmt.Printf("\n%d entries in %d files, newest %s\n",
			cycle.EntryCount(), len(cycle.Files), cycle.MostRecent.Format("2006-01-02 15:04:05"))
	},
}

func init() {
	scanCmd.Flags().Duration("since", 24*time.Hour, "Only list entries newer than this")
	rootCmd.AddCommand(scanCmd)
}
