package types

import (
	"fmt"
	"time"
)

// TimestampLayout is the layout of the timestamp in a log heading
const TimestampLayout = "2006-01-02 15:04:05"

// LogEntry is a single timestamped entry parsed from a log file.
// Entries are immutable once parsed.
type LogEntry struct {
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	Text       string    `json:"text" yaml:"text"`
	SourceFile string    `json:"source_file" yaml:"source_file"`
}

// String renders the entry the way it appears in a log heading
func (e LogEntry) String() string {
	return fmt.Sprintf("%s %s", e.Timestamp.Format(TimestampLayout), e.Text)
}

// ScanResult holds the qualifying entries found in one directory.
type ScanResult struct {
	// Directory is the root that was scanned
	Directory string

	// MostRecent is the newest retained entry timestamp (zero if none)
	MostRecent time.Time

	// MostRecentFile is the file holding the newest entry ("" if none)
	MostRecentFile string

	// Files lists files with retained entries in discovery order
	Files []string

	// EntriesByFile maps each file to its entries, top to bottom
	EntriesByFile map[string][]LogEntry

	// Problems collects non-fatal per-file and per-entry failures
	Problems []error
}

// NewScanResult creates an empty result for dir
func NewScanResult(dir string) *ScanResult {
	return &ScanResult{
		Directory:     dir,
		EntriesByFile: make(map[string][]LogEntry),
	}
}

// Add appends an entry, keeping file order and the newest-entry markers.
// On equal timestamps the first entry seen stays the newest.
func (r *ScanResult) Add(e LogEntry) {
	if _, ok := r.EntriesByFile[e.SourceFile]; !ok {
		r.Files = append(r.Files, e.SourceFile)
	}
	r.EntriesByFile[e.SourceFile] = append(r.EntriesByFile[e.SourceFile], e)
	if r.MostRecent.IsZero() || e.Timestamp.After(r.MostRecent) {
		r.MostRecent = e.Timestamp
		r.MostRecentFile = e.SourceFile
	}
}

// Empty reports whether no entry was retained
func (r *ScanResult) Empty() bool {
	return r == nil || len(r.Files) == 0
}

// EntryCount returns the total number of retained entries
func (r *ScanResult) EntryCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, entries := range r.EntriesByFile {
		n += len(entries)
	}
	return n
}

// Newest returns the newest entry, or nil if the result is empty
func (r *ScanResult) Newest() *LogEntry {
	if r.Empty() {
		return nil
	}
	for _, e := range r.EntriesByFile[r.MostRecentFile] {
		if e.Timestamp.Equal(r.MostRecent) {
			entry := e
			return &entry
		}
	}
	return nil
}

// DirError records a directory that could not be scanned during a cycle
type DirError struct {
	Directory string
	Err       error
}

func (e DirError) Error() string {
	return fmt.Sprintf("%s: %v", e.Directory, e.Err)
}

func (e DirError) Unwrap() error {
	return e.Err
}

// CycleResult is the merge of every directory's ScanResult for one tick.
type CycleResult struct {
	ScanResult

	// DirErrors lists directories skipped for this tick
	DirErrors []DirError
}

// NewCycleResult creates an empty cycle result
func NewCycleResult() *CycleResult {
	return &CycleResult{ScanResult: *NewScanResult("")}
}

// Merge folds one directory's result into the cycle. Directories must be
// merged in configured order: a later directory only takes over the newest
// markers when its newest entry is strictly newer. A file already merged
// from an earlier, overlapping directory is not added again.
func (c *CycleResult) Merge(r *ScanResult) {
	if r == nil {
		return
	}
	for _, file := range r.Files {
		if _, ok := c.EntriesByFile[file]; ok {
			continue
		}
		c.Files = append(c.Files, file)
		c.EntriesByFile[file] = append([]LogEntry(nil), r.EntriesByFile[file]...)
	}
	c.Problems = append(c.Problems, r.Problems...)
	if r.Empty() {
		return
	}
	if c.MostRecent.IsZero() || r.MostRecent.After(c.MostRecent) {
		c.MostRecent = r.MostRecent
		c.MostRecentFile = r.MostRecentFile
	}
}
