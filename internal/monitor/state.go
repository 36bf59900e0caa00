package monitor

import (
	"time"

	"github.com/steveyegge/logudge/internal/types"
)

// State is the monitor's position in its alert cycle
type State int

const (
	// StateActive is the normal cadence: depth 1, alerts enabled
	StateActive State = iota
	// StateEscalating means silent ticks are shortening the interval
	StateEscalating
	// StateSuppressed means the silence threshold passed; no more alerts
	// until a fresh log appears, but ticks continue at the short interval
	StateSuppressed
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateEscalating:
		return "escalating"
	case StateSuppressed:
		return "suppressed"
	default:
		return "unknown"
	}
}

// Outcome says what a tick did
type Outcome string

const (
	// OutcomeFresh means a newer log was found and the window was reset
	OutcomeFresh Outcome = "fresh"
	// OutcomeSilent means no log was found and the normal alert fired
	OutcomeSilent Outcome = "silent"
	// OutcomeEscalated means silence crossed the threshold: the one-time
	// escalation alert fired and further alerts are suppressed
	OutcomeEscalated Outcome = "escalated"
	// OutcomeSuppressed means no log was found and no alert fired
	OutcomeSuppressed Outcome = "suppressed"
)

// MonitorState is the mutable state of the monitor loop.
// Only the loop goroutine touches it; Snapshot hands out copies.
type MonitorState struct {
	// WindowStart is where the current no-log window began.
	// It only moves forward, to the newest discovered entry.
	WindowStart time.Time

	// CheckInterval is always BaseInterval / Depth
	CheckInterval time.Duration

	// Depth is the escalation counter (>= 1)
	Depth int

	// Silenced suppresses alerts; only a fresh log clears it
	Silenced bool

	// LastSeen is the newest entry reported so far
	LastSeen *types.LogEntry

	// LastLogFile is the file offered for opening
	LastLogFile string
}

// State derives the alert state from the counters
func (s MonitorState) State() State {
	switch {
	case s.Silenced:
		return StateSuppressed
	case s.Depth > 1:
		return StateEscalating
	default:
		return StateActive
	}
}

// TickReport describes one evaluation of the loop
type TickReport struct {
	// ID is a short identifier for correlating console output
	ID string

	// At is the tick time and Threshold the exclusive lower bound scanned
	At        time.Time
	Threshold time.Time

	// Cycle is the merged scan of every directory
	Cycle *types.CycleResult

	Outcome  Outcome
	State    State
	Depth    int
	Interval time.Duration
	NextTick time.Time
}
