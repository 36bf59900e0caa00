package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/steveyegge/logudge/internal/config"
	"github.com/steveyegge/logudge/internal/notify"
	"github.com/steveyegge/logudge/internal/prompt"
	"github.com/steveyegge/logudge/internal/types"
)

// fakeScanner returns queued cycles, then empty ones
type fakeScanner struct {
	mu         sync.Mutex
	cycles     []*types.CycleResult
	thresholds []time.Time
	latest     string
	err        error
}

func (f *fakeScanner) ScanAll(_ context.Context, _ []string, threshold time.Time, _ int) (*types.CycleResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.thresholds = append(f.thresholds, threshold)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.cycles) == 0 {
		return types.NewCycleResult(), nil
	}
	c := f.cycles[0]
	f.cycles = f.cycles[1:]
	return c, nil
}

func (f *fakeScanner) LatestFile(context.Context, []string) (string, time.Time) {
	return f.latest, time.Time{}
}

// queue adds a cycle holding entries, merged in the order given
func (f *fakeScanner) queue(entries ...types.LogEntry) {
	res := types.NewScanResult("/dir")
	for _, e := range entries {
		res.Add(e)
	}
	cycle := types.NewCycleResult()
	cycle.Merge(res)
	f.mu.Lock()
	f.cycles = append(f.cycles, cycle)
	f.mu.Unlock()
}

type fakeAlerter struct {
	messages []string
	err      error
}

func (f *fakeAlerter) Alert(_ context.Context, message string) error {
	f.messages = append(f.messages, message)
	return f.err
}

type fakeOpener struct {
	opened []string
	err    error
}

func (f *fakeOpener) Open(_ context.Context, path string) error {
	f.opened = append(f.opened, path)
	if path == "" {
		return notify.ErrNoFile
	}
	return f.err
}

// fakePrompter replays answers in order, then times out
type fakePrompter struct {
	answers   []prompt.Answer
	questions []string
}

func (f *fakePrompter) Ask(_ context.Context, question string, _ time.Duration) (prompt.Answer, error) {
	f.questions = append(f.questions, question)
	if len(f.answers) == 0 {
		return prompt.TimedOut(), nil
	}
	a := f.answers[0]
	f.answers = f.answers[1:]
	return a, nil
}

func (f *fakePrompter) say(answers ...string) {
	for _, a := range answers {
		f.answers = append(f.answers, prompt.Answered(a))
	}
}

type fakePicker struct {
	choice string
	files  [][]string
}

func (f *fakePicker) Pick(_ context.Context, files []string) (string, bool, error) {
	f.files = append(f.files, files)
	return f.choice, f.choice != "", nil
}

// recordingReporter keeps the names of the events it saw
type recordingReporter struct {
	events []string
	infos  []string
	warns  []error
}

func (r *recordingReporter) Started(*config.Config, MonitorState, time.Time) {
	r.events = append(r.events, "started")
}
func (r *recordingReporter) TickStarted(*TickReport) { r.events = append(r.events, "tick") }
func (r *recordingReporter) Problems(*types.CycleResult) {}
func (r *recordingReporter) EntriesFound(*types.CycleResult) { r.events = append(r.events, "entries") }
func (r *recordingReporter) WindowReset(MonitorState) { r.events = append(r.events, "reset") }
func (r *recordingReporter) NoRecentLog(time.Duration, MonitorState) {
	r.events = append(r.events, "no-log")
}
func (r *recordingReporter) Silenced(time.Duration, MonitorState) {
	r.events = append(r.events, "silenced")
}
func (r *recordingReporter) Suppressed(time.Duration, MonitorState) {
	r.events = append(r.events, "suppressed")
}
func (r *recordingReporter) NextTick(*TickReport) {}
func (r *recordingReporter) Info(msg string) { r.infos = append(r.infos, msg) }
func (r *recordingReporter) Warn(_ string, err error) { r.warns = append(r.warns, err) }

// harness bundles a monitor with its fakes
type harness struct {
	m        *Monitor
	cfg      *config.Config
	scanner  *fakeScanner
	alerter  *fakeAlerter
	opener   *fakeOpener
	prompter *fakePrompter
	picker   *fakePicker
	reporter *recordingReporter
	start    time.Time
}

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newHarness(mutate func(*config.Config)) *harness {
	cfg := config.Default()
	cfg.TargetDirectories = []string{"/dir"}
	cfg.CheckInterval = 600 * time.Second
	cfg.SilenceThreshold = 20 * time.Minute
	if mutate != nil {
		mutate(cfg)
	}

	h := &harness{
		cfg:      cfg,
		scanner:  &fakeScanner{},
		alerter:  &fakeAlerter{},
		opener:   &fakeOpener{},
		prompter: &fakePrompter{},
		picker:   &fakePicker{},
		reporter: &recordingReporter{},
		start:    t0,
	}
	m, err := New(cfg, Deps{
		Scanner:  h.scanner,
		Alerter:  h.alerter,
		Opener:   h.opener,
		Prompter: h.prompter,
		Picker:   h.picker,
		Reporter: h.reporter,
		Now:      func() time.Time { return t0 },
	})
	if err != nil {
		panic(err)
	}
	h.m = m
	return h
}

func entry(ts time.Time, text, file string) types.LogEntry {
	return types.LogEntry{Timestamp: ts, Text: text, SourceFile: file}
}
