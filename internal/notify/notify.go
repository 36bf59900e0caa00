// Package notify talks to the desktop: spoken alerts, notifications and
// opening files in the user's viewer. Every call is bounded by a timeout and
// every failure is returned for the caller to log; nothing here is fatal.
package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrCommandUnavailable means the external program is not installed
	ErrCommandUnavailable = errors.New("command unavailable")

	// ErrNoFile means there is no file to open yet
	ErrNoFile = errors.New("no log file to open")
)

// DefaultTimeout bounds each external command
const DefaultTimeout = 30 * time.Second

// Runner runs an external command to completion
type Runner func(ctx context.Context, name string, args ...string) error

// ExecRunner runs the command with os/exec
func ExecRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrCommandUnavailable, name)
		}
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

// splitCommand splits a configured command line into name and arguments
func splitCommand(command string) (string, []string) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

func runWithTimeout(ctx context.Context, run Runner, timeout time.Duration, name string, args ...string) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return run(ctx, name, args...)
}
