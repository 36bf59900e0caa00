package prompt

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sahilm/fuzzy"
)

// Asker asks a bounded question
type Asker interface {
	Ask(ctx context.Context, question string, timeout time.Duration) (Answer, error)
}

// Picker lets the user fuzzy-select one of a set of files
type Picker struct {
	asker   Asker
	out     io.Writer
	timeout time.Duration

	// Limit is the maximum number of matches listed
	Limit int
}

// NewPicker creates a picker that asks through asker
func NewPicker(asker Asker, out io.Writer, timeout time.Duration) *Picker {
	if out == nil {
		out = os.Stdout
	}
	return &Picker{
		asker:   asker,
		out:     out,
		timeout: timeout,
		Limit:   10,
	}
}

// Pick asks for a filter, lists the best matches and asks for a choice.
// It returns ok=false when the user cancels, times out or nothing matches.
func (p *Picker) Pick(ctx context.Context, files []string) (string, bool, error) {
	if len(files) == 0 {
		fmt.Fprintln(p.out, "No files to pick from")
		return "", false, nil
	}

	ans, err := p.asker.Ask(ctx, "Filter files (enter for all): ", p.timeout)
	if err != nil || !ans.Answered {
		return "", false, err
	}

	matches := Rank(ans.Text, files)
	if len(matches) == 0 {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintf(p.out, "%s No file matches %q\n", yellow("⚠"), ans.Text)
		return "", false, nil
	}
	if p.Limit > 0 && len(matches) > p.Limit {
		matches = matches[:p.Limit]
	}

	for i, m := range matches {
		fmt.Fprintf(p.out, "  %2d) %s\n", i+1, highlight(m))
	}

	ans, err = p.asker.Ask(ctx, fmt.Sprintf("Pick a file [1-%d, enter for 1, x to cancel]: ", len(matches)), p.timeout)
	if err != nil || !ans.Answered {
		return "", false, err
	}

	choice := strings.TrimSpace(ans.Text)
	switch strings.ToLower(choice) {
	case "":
		return matches[0].Str, true, nil
	case "x":
		return "", false, nil
	}

	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(matches) {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(p.out, "%s invalid choice %q\n", red("✗"), choice)
		return "", false, nil
	}
	return matches[n-1].Str, true, nil
}

// Rank orders files by fuzzy match against query, best first.
// An empty query keeps every file in its original order.
func Rank(query string, files []string) fuzzy.Matches {
	query = strings.TrimSpace(query)
	if query == "" {
		matches := make(fuzzy.Matches, len(files))
		for i, f := range files {
			matches[i] = fuzzy.Match{Str: f, Index: i}
		}
		return matches
	}
	return fuzzy.Find(query, files)
}

func highlight(m fuzzy.Match) string {
	if len(m.MatchedIndexes) == 0 {
		return m.Str
	}
	bold := color.New(color.FgCyan, color.Bold).SprintFunc()
	matched := make(map[int]bool, len(m.MatchedIndexes))
	for _, i := range m.MatchedIndexes {
		matched[i] = true
	}

	var b strings.Builder
	for i, r := range m.Str {
		if matched[i] {
			b.WriteString(bold(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
