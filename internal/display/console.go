// Package display prints the monitor's activity to the terminal.
package display

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/steveyegge/logudge/internal/config"
	"github.com/steveyegge/logudge/internal/monitor"
	"github.com/steveyegge/logudge/internal/types"
)

// DefaultWidth is used when the output is not a terminal
const DefaultWidth = 60

// maxWidth caps separators on very wide terminals
const maxWidth = 100

// clockLayout is how tick times are shown
const clockLayout = "15:04:05"

// Console implements monitor.Reporter on a writer
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	width int
}

// NewConsole creates a console on out. Separator width follows the
// terminal when out is one.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out, width: terminalWidth(out)}
}

func terminalWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return DefaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	if w > maxWidth {
		return maxWidth
	}
	return w
}

func (c *Console) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) rule() string {
	return color.New(color.FgHiBlack).Sprint(strings.Repeat("─", c.width))
}

// Started prints the startup banner
func (c *Console) Started(cfg *config.Config, state monitor.MonitorState, next time.Time) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s Watching %d director%s (Ctrl+C to stop)\n", cyan("👁️"),
		len(cfg.TargetDirectories), pluralY(len(cfg.TargetDirectories)))
	for _, dir := range cfg.TargetDirectories {
		fmt.Fprintf(&b, "  • %s\n", dir)
	}
	fmt.Fprintf(&b, "  %s\n", gray(fmt.Sprintf("check every %s | silence after %s | prompt timeout %s",
		cfg.CheckInterval, cfg.SilenceThreshold, cfg.PromptTimeout)))
	if state.LastLogFile != "" {
		fmt.Fprintf(&b, "  %s %s\n", gray("last log:"), state.LastLogFile)
	}
	fmt.Fprintf(&b, "  %s %s\n\n", gray("first check at"), next.Format(clockLayout))
	c.printf("%s", b.String())
}

// TickStarted prints the tick header
func (c *Console) TickStarted(tick *monitor.TickReport) {
	magenta := color.New(color.FgMagenta).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()
	c.printf("%s\n[%s] %s %s\n", c.rule(), tick.At.Format(clockLayout), magenta("tick "+tick.ID),
		gray("looking for logs after "+tick.Threshold.Format(types.TimestampLayout)))
}

// Problems prints directories and files that could not be read
func (c *Console) Problems(cycle *types.CycleResult) {
	if cycle == nil {
		return
	}
	for _, de := range cycle.DirErrors {
		c.Warn("scan "+de.Directory, de.Err)
	}
	for _, err := range cycle.Problems {
		c.Warn("scan", err)
	}
}

// EntriesFound prints every retained entry grouped by file
func (c *Console) EntriesFound(cycle *types.CycleResult) {
	c.printf("%s", FormatEntries(cycle))
}

// WindowReset prints the reset after a fresh log
func (c *Console) WindowReset(state monitor.MonitorState) {
	green := color.New(color.FgGreen).SprintFunc()
	msg := "Found recent log"
	if state.LastSeen != nil {
		msg = fmt.Sprintf("Found recent log at %s: %s", state.LastSeen.Timestamp.Format(clockLayout),
			truncate(state.LastSeen.Text, c.width-30))
	}
	c.printf("%s %s\n", green("✓"), msg)
}

// NoRecentLog prints a normal silent tick
func (c *Console) NoRecentLog(elapsed time.Duration, state monitor.MonitorState) {
	yellow := color.New(color.FgYellow).SprintFunc()
	c.printf("%s No recent logs in the last %s %s\n", yellow("⚠"), monitor.SpokenDuration(elapsed),
		depthLabel(state))
}

// Silenced prints the one-time escalation
func (c *Console) Silenced(elapsed time.Duration, state monitor.MonitorState) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	c.printf("%s No logs for %s; alerts paused until a new log appears %s\n", red("✗"),
		monitor.SpokenDuration(elapsed), depthLabel(state))
}

// Suppressed prints a silent tick while alerts are paused
func (c *Console) Suppressed(elapsed time.Duration, state monitor.MonitorState) {
	gray := color.New(color.FgHiBlack).SprintFunc()
	c.printf("%s\n", gray(fmt.Sprintf("… still no logs (%s), alerts paused %s",
		monitor.SpokenDuration(elapsed), depthLabel(state))))
}

// NextTick prints when the loop checks again
func (c *Console) NextTick(tick *monitor.TickReport) {
	gray := color.New(color.FgHiBlack).SprintFunc()
	c.printf("%s\n", gray(fmt.Sprintf("state %s | depth %d | next check at %s (every %s)",
		tick.State, tick.Depth, tick.NextTick.Format(clockLayout), tick.Interval.Round(time.Second))))
}

// Info prints a plain message
func (c *Console) Info(msg string) {
	c.printf("%s\n", msg)
}

// Warn prints a non-fatal failure
func (c *Console) Warn(what string, err error) {
	yellow := color.New(color.FgYellow).SprintFunc()
	c.printf("%s %s: %v\n", yellow("Warning:"), what, err)
}

// FormatEntries renders a cycle's entries grouped by file, newest file marked
func FormatEntries(cycle *types.CycleResult) string {
	if cycle == nil || cycle.Empty() {
		return ""
	}
	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	var b strings.Builder
	for _, file := range cycle.Files {
		marker := " "
		if file == cycle.MostRecentFile {
			marker = green("*")
		}
		fmt.Fprintf(&b, "%s %s\n", marker, cyan(file))

		entries := append([]types.LogEntry(nil), cycle.EntriesByFile[file]...)
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Timestamp.Before(entries[j].Timestamp)
		})
		for _, e := range entries {
			fmt.Fprintf(&b, "    %s %s\n", gray(e.Timestamp.Format(types.TimestampLayout)), e.Text)
		}
	}
	return b.String()
}

func depthLabel(state monitor.MonitorState) string {
	return color.New(color.FgHiBlack).Sprintf("(depth %d)", state.Depth)
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func truncate(s string, maxLen int) string {
	if maxLen < 10 {
		maxLen = 10
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
