// Package monitor runs the accountability loop: scan every directory once
// per tick, reset the window when a newer log appears, and otherwise alert
// with an interval that shortens (BaseInterval / depth) the longer the user
// stays silent. Past the silence threshold alerts stop until a log appears.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/steveyegge/logudge/internal/config"
	"github.com/steveyegge/logudge/internal/notify"
	"github.com/steveyegge/logudge/internal/prompt"
	"github.com/steveyegge/logudge/internal/types"
)

// ErrQuit is returned by Run and Tick when the user asks to quit
var ErrQuit = errors.New("quit requested")

// Alert messages
const (
	MessageFound = "Found recent log, continuing."
)

// Prompts shown to the user
const (
	FollowUpPrompt = "Open the last log file or find a log file to add to? (y/i/x/quit): "
	ContinuePrompt = "Press enter to continue (or type quit): "
)

// Scanner finds entries across all directories
type Scanner interface {
	ScanAll(ctx context.Context, dirs []string, threshold time.Time, workers int) (*types.CycleResult, error)
	LatestFile(ctx context.Context, dirs []string) (string, time.Time)
}

// Alerter makes the user notice
type Alerter interface {
	Alert(ctx context.Context, message string) error
}

// Opener opens a file in the user's viewer
type Opener interface {
	Open(ctx context.Context, path string) error
}

// Prompter asks a question with a deadline
type Prompter interface {
	Ask(ctx context.Context, question string, timeout time.Duration) (prompt.Answer, error)
}

// Picker lets the user choose one of files
type Picker interface {
	Pick(ctx context.Context, files []string) (string, bool, error)
}

// Reporter prints what the loop does. It is the only audit trail.
type Reporter interface {
	Started(cfg *config.Config, state MonitorState, next time.Time)
	TickStarted(tick *TickReport)
	Problems(cycle *types.CycleResult)
	EntriesFound(cycle *types.CycleResult)
	WindowReset(state MonitorState)
	NoRecentLog(elapsed time.Duration, state MonitorState)
	Silenced(elapsed time.Duration, state MonitorState)
	Suppressed(elapsed time.Duration, state MonitorState)
	NextTick(tick *TickReport)
	Info(msg string)
	Warn(what string, err error)
}

// Deps are the monitor's collaborators. All are required except Now.
type Deps struct {
	Scanner  Scanner
	Alerter  Alerter
	Opener   Opener
	Prompter Prompter
	Picker   Picker
	Reporter Reporter

	// Now defaults to time.Now
	Now func() time.Time
}

// Monitor owns the loop state. It is not safe for concurrent use: one
// goroutine runs the loop and nothing else touches the state.
type Monitor struct {
	cfg  *config.Config
	deps Deps

	state    MonitorState
	nextTick time.Time
}

// New creates a monitor whose window starts now
func New(cfg *config.Config, deps Deps) (*Monitor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	switch {
	case deps.Scanner == nil:
		return nil, fmt.Errorf("scanner is required")
	case deps.Alerter == nil:
		return nil, fmt.Errorf("alerter is required")
	case deps.Opener == nil:
		return nil, fmt.Errorf("opener is required")
	case deps.Prompter == nil:
		return nil, fmt.Errorf("prompter is required")
	case deps.Picker == nil:
		return nil, fmt.Errorf("picker is required")
	case deps.Reporter == nil:
		return nil, fmt.Errorf("reporter is required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	start := deps.Now()
	m := &Monitor{
		cfg:  cfg,
		deps: deps,
		state: MonitorState{
			WindowStart:   start,
			CheckInterval: cfg.CheckInterval,
			Depth:         1,
		},
	}
	m.nextTick = start.Add(cfg.CheckInterval)
	return m, nil
}

// Snapshot returns a copy of the current state
func (m *Monitor) Snapshot() MonitorState {
	s := m.state
	if s.LastSeen != nil {
		e := *s.LastSeen
		s.LastSeen = &e
	}
	return s
}

// State returns the current alert state
func (m *Monitor) State() State {
	return m.state.State()
}

// NextTick returns when the next tick is due
func (m *Monitor) NextTick() time.Time {
	return m.nextTick
}

// Run ticks until ctx is done or the user quits.
// It returns ErrQuit or the context's error.
func (m *Monitor) Run(ctx context.Context) error {
	if m.state.LastLogFile == "" {
		if path, _ := m.deps.Scanner.LatestFile(ctx, m.cfg.TargetDirectories); path != "" {
			m.state.LastLogFile = path
		}
	}
	m.deps.Reporter.Started(m.cfg, m.Snapshot(), m.nextTick)

	for {
		if wait := m.nextTick.Sub(m.deps.Now()); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := m.Tick(ctx, m.deps.Now()); err != nil {
			return err
		}
	}
}

// Tick performs one evaluation at now: scan, merge, transition, and
// schedule the next tick. The returned error is ErrQuit or a context error;
// scan and collaborator failures are reported and absorbed.
func (m *Monitor) Tick(ctx context.Context, now time.Time) (*TickReport, error) {
	tick := &TickReport{
		ID:        uuid.New().String()[:8],
		At:        now,
		Threshold: now.Add(-m.state.CheckInterval),
	}
	m.deps.Reporter.TickStarted(tick)

	cycle, err := m.deps.Scanner.ScanAll(ctx, m.cfg.TargetDirectories, tick.Threshold, m.cfg.ScanWorkers)
	if err != nil {
		return tick, err
	}
	tick.Cycle = cycle
	m.deps.Reporter.Problems(cycle)

	var actErr error
	switch {
	case m.isFresh(cycle):
		tick.Outcome = OutcomeFresh
		actErr = m.onFresh(ctx, cycle)
	case !m.state.Silenced:
		tick.Outcome, actErr = m.onSilent(ctx, now)
	default:
		tick.Outcome = OutcomeSuppressed
		m.deepen()
		m.deps.Reporter.Suppressed(now.Sub(m.state.WindowStart), m.Snapshot())
	}

	m.state.CheckInterval = m.cfg.CheckInterval / time.Duration(m.state.Depth)
	if tick.Outcome == OutcomeFresh {
		// The window is measured from the newest entry, not from now
		m.nextTick = m.state.WindowStart.Add(m.state.CheckInterval)
	} else {
		m.nextTick = now.Add(m.state.CheckInterval)
	}

	tick.State = m.state.State()
	tick.Depth = m.state.Depth
	tick.Interval = m.state.CheckInterval
	tick.NextTick = m.nextTick
	m.deps.Reporter.NextTick(tick)

	return tick, actErr
}

// isFresh reports whether cycle holds a log newer than anything seen
func (m *Monitor) isFresh(cycle *types.CycleResult) bool {
	newest := cycle.Newest()
	if newest == nil || !newest.Timestamp.After(m.state.WindowStart) {
		return false
	}
	return m.state.LastSeen == nil || newest.Timestamp.After(m.state.LastSeen.Timestamp)
}

func (m *Monitor) onFresh(ctx context.Context, cycle *types.CycleResult) error {
	newest := cycle.Newest()
	m.deps.Reporter.EntriesFound(cycle)

	m.state.WindowStart = newest.Timestamp
	m.state.Depth = 1
	m.state.Silenced = false
	m.state.LastSeen = newest
	m.state.LastLogFile = cycle.MostRecentFile
	m.deps.Reporter.WindowReset(m.Snapshot())

	m.alert(ctx, MessageFound)
	return m.followUp(ctx, cycle.Files)
}

func (m *Monitor) onSilent(ctx context.Context, now time.Time) (Outcome, error) {
	elapsed := now.Sub(m.state.WindowStart)

	outcome := OutcomeSilent
	if elapsed > m.cfg.SilenceThreshold {
		outcome = OutcomeEscalated
		m.state.Silenced = true
		m.deps.Reporter.Silenced(elapsed, m.Snapshot())
		m.alert(ctx, EscalationMessage(elapsed))
	} else {
		m.deps.Reporter.NoRecentLog(elapsed, m.Snapshot())
		m.alert(ctx, NoRecentLogMessage(elapsed))
	}
	m.deepen()
	m.open(ctx, m.state.LastLogFile)

	ans, err := m.deps.Prompter.Ask(ctx, ContinuePrompt, m.cfg.PromptTimeout)
	if err != nil {
		return outcome, err
	}
	if ans.Answered && isQuit(ans.Text) {
		return outcome, ErrQuit
	}
	return outcome, nil
}

// followUp offers to open files until the user dismisses it or stops answering
func (m *Monitor) followUp(ctx context.Context, files []string) error {
	for {
		ans, err := m.deps.Prompter.Ask(ctx, FollowUpPrompt, m.cfg.PromptTimeout)
		if err != nil {
			return err
		}
		if !ans.Answered {
			return nil
		}

		switch choice := strings.ToLower(strings.TrimSpace(ans.Text)); {
		case choice == "y":
			m.open(ctx, m.state.LastLogFile)
		case choice == "i":
			path, ok, err := m.deps.Picker.Pick(ctx, files)
			if err != nil {
				return err
			}
			if ok {
				m.open(ctx, path)
			}
		case choice == "x":
			return nil
		case isQuit(choice):
			return ErrQuit
		default:
			m.deps.Reporter.Info("Invalid input. Please enter y, i, x, or quit.")
		}
	}
}

// deepen increments depth, saturating at MaxDepth unless it is 0
func (m *Monitor) deepen() {
	if m.cfg.MaxDepth == 0 || m.state.Depth < m.cfg.MaxDepth {
		m.state.Depth++
	}
}

func (m *Monitor) alert(ctx context.Context, message string) {
	if err := m.deps.Alerter.Alert(ctx, message); err != nil {
		m.deps.Reporter.Warn("alert", err)
	}
}

func (m *Monitor) open(ctx context.Context, path string) {
	if err := m.deps.Opener.Open(ctx, path); err != nil {
		if errors.Is(err, notify.ErrNoFile) {
			m.deps.Reporter.Info("No last log file found.")
			return
		}
		m.deps.Reporter.Warn("open "+path, err)
	}
}

func isQuit(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "quit", "q":
		return true
	}
	return false
}

// NoRecentLogMessage is the normal silent-tick alert
func NoRecentLogMessage(elapsed time.Duration) string {
	return fmt.Sprintf("No recent logs found in the last %s. Please add a new log.", SpokenDuration(elapsed))
}

// EscalationMessage is the one-time alert fired when silence passes the threshold
func EscalationMessage(elapsed time.Duration) string {
	return fmt.Sprintf("No logs for %s. Pausing alerts until you write a new log.", SpokenDuration(elapsed))
}

// SpokenDuration renders d for speech: "10 minutes", "1 hour 5 minutes", "45 seconds"
func SpokenDuration(d time.Duration) string {
	if d < time.Minute {
		return plural(int(d.Round(time.Second)/time.Second), "second")
	}
	d = d.Round(time.Minute)
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	switch {
	case hours == 0:
		return plural(minutes, "minute")
	case minutes == 0:
		return plural(hours, "hour")
	default:
		return plural(hours, "hour") + " " + plural(minutes, "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
