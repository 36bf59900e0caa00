package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
)

// Answer is the outcome of a bounded question: either the user answered
// with Text, or the deadline passed first.
type Answer struct {
	Text     string
	Answered bool
}

// Answered returns an answer carrying text
func Answered(text string) Answer {
	return Answer{Text: text, Answered: true}
}

// TimedOut returns the no-response answer
func TimedOut() Answer {
	return Answer{}
}

// LineReader is the part of *readline.Instance the prompter uses
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Refresh()
	Close() error
}

// Config holds prompter configuration
type Config struct {
	// Stdin defaults to os.Stdin
	Stdin io.ReadCloser

	// Out receives prompter messages; defaults to os.Stdout
	Out io.Writer

	// OnInterrupt is called when the user presses Ctrl+C at a prompt.
	// The line editor swallows the signal, so this is how it reaches the
	// rest of the process.
	OnInterrupt func()
}

// Prompter asks questions that cannot block forever.
//
// A single goroutine owns the blocking read for the prompter's lifetime.
// Ask waits for that goroutine's next line, the deadline, or ctx. A line
// that arrives after the deadline stays queued and is discarded by the next
// Ask, so a late answer is never applied to a different question.
type Prompter struct {
	rl          LineReader
	out         io.Writer
	onInterrupt func()

	lines  chan string
	done   chan struct{}
	start  sync.Once
	closed sync.Once
}

// New creates a prompter on a readline line editor
func New(cfg *Config) (*Prompter, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	stdin := cfg.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 "",
		Stdin:                  stdin,
		InterruptPrompt:        "^C",
		EOFPrompt:              "",
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	p := NewWithReader(rl, cfg.Out)
	p.onInterrupt = cfg.OnInterrupt
	return p, nil
}

// NewWithReader creates a prompter reading from rl
func NewWithReader(rl LineReader, out io.Writer) *Prompter {
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		rl:    rl,
		out:   out,
		lines: make(chan string, 1),
		done:  make(chan struct{}),
	}
}

// Ask shows question and waits up to timeout for a line.
// It returns TimedOut() if the deadline passes or input has ended, and an
// error only if ctx is done.
func (p *Prompter) Ask(ctx context.Context, question string, timeout time.Duration) (Answer, error) {
	p.start.Do(func() { go p.readLoop() })

	// Anything typed before the question is not an answer to it
	p.drain()

	select {
	case <-p.done:
		return TimedOut(), nil
	default:
	}

	p.rl.SetPrompt(question)
	p.rl.Refresh()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case line := <-p.lines:
		return Answered(strings.TrimSpace(line)), nil
	case <-p.done:
		return TimedOut(), nil
	case <-timer.C:
		p.rl.SetPrompt("")
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintf(p.out, "\n%s no response after %s, moving on\n", yellow("⏱"), timeout)
		return TimedOut(), nil
	case <-ctx.Done():
		return TimedOut(), ctx.Err()
	}
}

// Close releases the line editor. Pending and later Asks time out.
func (p *Prompter) Close() error {
	p.closed.Do(func() { close(p.done) })
	return p.rl.Close()
}

func (p *Prompter) readLoop() {
	for {
		line, err := p.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if p.onInterrupt != nil {
					p.onInterrupt()
				}
				continue
			}
			// EOF or a closed editor: no more answers will come
			p.closed.Do(func() { close(p.done) })
			return
		}

		p.rl.SetPrompt("")
		select {
		case p.lines <- line:
		default:
			// Nobody asked and one line is already queued
		}
	}
}

func (p *Prompter) drain() {
	for {
		select {
		case <-p.lines:
		default:
			return
		}
	}
}
