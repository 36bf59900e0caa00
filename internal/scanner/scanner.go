// Package scanner finds timestamped log entries in markdown files.
//
// A log entry is a heading line of the form
//
//	## 2024-03-01 14:05:00 wrote the release notes
//
// one or more '#', whitespace, a YYYY-MM-DD HH:MM:SS timestamp, one space or
// tab, and the rest of the line verbatim as free text. The scanner walks a
// directory tree, opens only files modified after a threshold, and keeps only
// entries whose own timestamp is after the threshold: touching a file is not
// logging.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/steveyegge/logudge/internal/types"
)

// ErrScanIO is returned when a directory cannot be scanned at all
var ErrScanIO = errors.New("scan failed")

// entryPattern matches a log heading. Group 1 is the timestamp, group 2 the
// text, verbatim after the single separator and possibly empty.
var entryPattern = regexp.MustCompile(`#+[ \t]+(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})[ \t](.*)`)

// ParseError reports a heading whose timestamp could not be parsed.
// The entry is skipped; the rest of the file is still parsed.
type ParseError struct {
	File  string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: malformed timestamp %q: %v", e.File, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Options configures a Scanner
type Options struct {
	// Extensions of files to parse, compared case-insensitively (default: [".md"])
	Extensions []string

	// Exclude patterns for paths to skip, matched like ShouldExcludePath
	Exclude []string

	// Location used to interpret entry timestamps (default: time.Local)
	Location *time.Location
}

// Scanner extracts log entries from directory trees. It holds no mutable
// state, so one Scanner can serve concurrent scans.
type Scanner struct {
	extensions map[string]bool
	exclude    []string
	loc        *time.Location
}

// New creates a scanner
func New(opts Options) *Scanner {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".md"}
	}
	s := &Scanner{
		extensions: make(map[string]bool, len(exts)),
		exclude:    opts.Exclude,
		loc:        opts.Location,
	}
	for _, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.extensions[strings.ToLower(ext)] = true
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	return s
}

// Scan walks dir and returns every entry strictly after threshold.
//
// Only the directory itself failing is an error (wrapping ErrScanIO).
// Unreadable files, unreadable subdirectories and malformed timestamps are
// recorded in the result's Problems and skipped.
func (s *Scanner) Scan(ctx context.Context, dir string, threshold time.Time) (*types.ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanIO, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrScanIO, dir)
	}

	result := types.NewScanResult(dir)
	err = s.walk(ctx, dir, result, func(path string, d fs.DirEntry) error {
		fi, err := d.Info()
		if err != nil {
			result.Problems = append(result.Problems, err)
			return nil
		}
		// Untouched files cannot hold new entries
		if !fi.ModTime().After(threshold) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			result.Problems = append(result.Problems, err)
			return nil
		}
		entries, problems := s.ParseEntries(content, path, threshold)
		for _, e := range entries {
			result.Add(e)
		}
		result.Problems = append(result.Problems, problems...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ParseEntries extracts entries after threshold from content, in order.
// Malformed timestamps are returned as *ParseError values.
func (s *Scanner) ParseEntries(content []byte, file string, threshold time.Time) ([]types.LogEntry, []error) {
	var entries []types.LogEntry
	var problems []error

	for _, m := range entryPattern.FindAllSubmatch(content, -1) {
		stamp := string(m[1])
		ts, err := time.ParseInLocation(types.TimestampLayout, stamp, s.loc)
		if err != nil {
			problems = append(problems, &ParseError{File: file, Value: stamp, Err: err})
			continue
		}
		if !ts.After(threshold) {
			continue
		}
		entries = append(entries, types.LogEntry{
			Timestamp:  ts,
			Text:       strings.TrimSuffix(string(m[2]), "\r"),
			SourceFile: file,
		})
	}
	return entries, problems
}

// LatestFile returns the most recently modified log file across dirs,
// whether or not it holds entries. Directories that fail are skipped.
func (s *Scanner) LatestFile(ctx context.Context, dirs []string) (string, time.Time) {
	var latest string
	var latestMod time.Time

	for _, dir := range dirs {
		_ = s.walk(ctx, dir, types.NewScanResult(dir), func(path string, d fs.DirEntry) error {
			fi, err := d.Info()
			if err != nil {
				return nil
			}
			if fi.ModTime().After(latestMod) {
				latest = path
				latestMod = fi.ModTime()
			}
			return nil
		})
	}
	return latest, latestMod
}

// walk calls fn for every non-excluded log file under root in lexical order
func (s *Scanner) walk(ctx context.Context, root string, result *types.ScanResult, fn func(path string, d fs.DirEntry) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("%w: %w", ErrScanIO, err)
			}
			// Unreadable subtree: note it and keep walking
			result.Problems = append(result.Problems, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Check context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if relPath != "." && ShouldExcludePath(filepath.ToSlash(relPath), d.IsDir(), s.exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !s.isLogFile(path) {
			return nil
		}
		return fn(path, d)
	})
}

func (s *Scanner) isLogFile(path string) bool {
	return s.extensions[strings.ToLower(filepath.Ext(path))]
}

// ShouldExcludePath checks if a slash-separated relative path matches any
// exclude pattern. Patterns can be:
//   - Directory prefixes: ".git/" matches ".git/config"
//   - Anywhere in path: ".git/" matches "notes/.git/HEAD"
//   - File suffixes: ".draft.md" matches "today.draft.md"
//
// Directories are matched with a trailing slash so ".git/" prunes the
// whole tree.
func ShouldExcludePath(relPath string, isDir bool, patterns []string) bool {
	if isDir && !strings.HasSuffix(relPath, "/") {
		relPath += "/"
	}
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if strings.HasPrefix(relPath, pattern) ||
			strings.Contains(relPath, "/"+pattern) ||
			strings.HasSuffix(relPath, pattern) {
			return true
		}
	}
	return false
}
