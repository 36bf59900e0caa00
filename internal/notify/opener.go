package notify

import (
	"context"
	"runtime"
	"time"
)

// Opener opens files with the platform's default application
type Opener struct {
	// Command overrides the platform default ("open", "xdg-open").
	// The path is appended as the last argument.
	Command string

	// Timeout bounds the open command (default: DefaultTimeout)
	Timeout time.Duration

	// OS selects platform defaults (default: runtime.GOOS)
	OS string

	// Run executes commands (default: ExecRunner)
	Run Runner
}

// NewOpener creates an opener using command, or the platform default if empty
func NewOpener(command string) *Opener {
	return &Opener{
		Command: command,
		Timeout: DefaultTimeout,
		OS:      runtime.GOOS,
		Run:     ExecRunner,
	}
}

// Open opens path. An empty path returns ErrNoFile without running anything.
func (o *Opener) Open(ctx context.Context, path string) error {
	if path == "" {
		return ErrNoFile
	}

	name, args := o.command()
	run := o.Run
	if run == nil {
		run = ExecRunner
	}
	return runWithTimeout(ctx, run, o.Timeout, name, append(args, path)...)
}

func (o *Opener) command() (string, []string) {
	if o.Command != "" {
		return splitCommand(o.Command)
	}
	switch o.OS {
	case "darwin":
		return "open", nil
	case "windows":
		return "cmd", []string{"/c", "start", ""}
	default:
		return "xdg-open", nil
	}
}
