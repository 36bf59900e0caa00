package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// AlertTitle is the title of desktop notifications
const AlertTitle = "logudge"

// SpeakerConfig configures a Speaker
type SpeakerConfig struct {
	// Audio enables the spoken message; the bell and the notification
	// are emitted either way.
	Audio bool

	// SpeakCommand overrides the platform speech program ("say", "spd-say")
	SpeakCommand string

	// NotifyCommand overrides the platform notification program.
	// It is called with the title and the message as its last two arguments.
	NotifyCommand string

	// MinGap is the minimum time between two alerts. A closer alert waits
	// out the gap. 0 disables spacing.
	MinGap time.Duration

	// Timeout bounds each external command (default: DefaultTimeout)
	Timeout time.Duration

	// Bell receives the terminal bell (default: os.Stdout)
	Bell io.Writer

	// OS selects platform defaults (default: runtime.GOOS)
	OS string

	// Run executes commands (default: ExecRunner)
	Run Runner
}

// Speaker alerts the user audibly and visually
type Speaker struct {
	cfg     SpeakerConfig
	limiter *rate.Limiter
}

// NewSpeaker creates a speaker
func NewSpeaker(cfg SpeakerConfig) *Speaker {
	if cfg.OS == "" {
		cfg.OS = runtime.GOOS
	}
	if cfg.Run == nil {
		cfg.Run = ExecRunner
	}
	if cfg.Bell == nil {
		cfg.Bell = os.Stdout
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	limit := rate.Inf
	if cfg.MinGap > 0 {
		limit = rate.Every(cfg.MinGap)
	}
	return &Speaker{
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Alert rings the bell, speaks message and posts a notification.
// Failures of the individual channels are joined and returned. An alert
// arriving within MinGap of the previous one is delayed, never dropped;
// only ctx ending while it waits prevents it.
func (s *Speaker) Alert(ctx context.Context, message string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("alert not delivered: %w", err)
	}

	fmt.Fprint(s.cfg.Bell, "\a")

	var errs []error
	if s.cfg.Audio {
		if name, args := s.speakCommand(message); name != "" {
			if err := runWithTimeout(ctx, s.cfg.Run, s.cfg.Timeout, name, args...); err != nil {
				errs = append(errs, fmt.Errorf("speak: %w", err))
			}
		}
	}
	if name, args := s.notifyCommand(message); name != "" {
		if err := runWithTimeout(ctx, s.cfg.Run, s.cfg.Timeout, name, args...); err != nil {
			errs = append(errs, fmt.Errorf("notify: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (s *Speaker) speakCommand(message string) (string, []string) {
	if s.cfg.SpeakCommand != "" {
		name, args := splitCommand(s.cfg.SpeakCommand)
		return name, append(args, message)
	}
	switch s.cfg.OS {
	case "darwin":
		return "say", []string{message}
	case "windows":
		return "", nil
	default:
		return "spd-say", []string{message}
	}
}

func (s *Speaker) notifyCommand(message string) (string, []string) {
	if s.cfg.NotifyCommand != "" {
		name, args := splitCommand(s.cfg.NotifyCommand)
		return name, append(args, AlertTitle, message)
	}
	switch s.cfg.OS {
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s",
			appleScriptString(message), appleScriptString(AlertTitle))
		return "osascript", []string{"-e", script}
	case "windows":
		return "", nil
	default:
		return "notify-send", []string{AlertTitle, message}
	}
}

// appleScriptString quotes s as an AppleScript string literal
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
