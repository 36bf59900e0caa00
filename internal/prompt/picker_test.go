package prompt

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedAsker replays answers in order, then times out
type scriptedAsker struct {
	answers   []Answer
	questions []string
	err       error
}

func (s *scriptedAsker) Ask(_ context.Context, question string, _ time.Duration) (Answer, error) {
	s.questions = append(s.questions, question)
	if s.err != nil {
		return TimedOut(), s.err
	}
	if len(s.answers) == 0 {
		return TimedOut(), nil
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

var files = []string{
	"/notes/work/standup.md",
	"/notes/personal/journal.md",
	"/notes/work/retro.md",
}

func TestPicker_FilterAndChoose(t *testing.T) {
	asker := &scriptedAsker{answers: []Answer{Answered("journal"), Answered("1")}}
	var out bytes.Buffer
	p := NewPicker(asker, &out, time.Second)

	path, ok, err := p.Pick(context.Background(), files)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/notes/personal/journal.md", path)
	assert.Len(t, asker.questions, 2)
	assert.Contains(t, out.String(), "1)")
}

func TestPicker_EmptyFilterListsAllAndEnterPicksFirst(t *testing.T) {
	asker := &scriptedAsker{answers: []Answer{Answered(""), Answered("")}}
	var out bytes.Buffer
	p := NewPicker(asker, &out, time.Second)

	path, ok, err := p.Pick(context.Background(), files)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, files[0], path)
	for _, f := range files {
		assert.Contains(t, out.String(), f)
	}
}

func TestPicker_ChooseByNumber(t *testing.T) {
	asker := &scriptedAsker{answers: []Answer{Answered(""), Answered("3")}}
	p := NewPicker(asker, &bytes.Buffer{}, time.Second)

	path, ok, err := p.Pick(context.Background(), files)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, files[2], path)
}

func TestPicker_NoSelection(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		answers []Answer
	}{
		{"no files", nil, nil},
		{"filter times out", files, nil},
		{"choice times out", files, []Answer{Answered("")}},
		{"no match", files, []Answer{Answered("zzzz")}},
		{"cancel", files, []Answer{Answered(""), Answered("x")}},
		{"out of range", files, []Answer{Answered(""), Answered("9")}},
		{"not a number", files, []Answer{Answered(""), Answered("two")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asker := &scriptedAsker{answers: tt.answers}
			p := NewPicker(asker, &bytes.Buffer{}, time.Second)

			path, ok, err := p.Pick(context.Background(), tt.files)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, path)
		})
	}
}

func TestPicker_PropagatesContextError(t *testing.T) {
	asker := &scriptedAsker{err: context.Canceled}
	p := NewPicker(asker, &bytes.Buffer{}, time.Second)

	_, ok, err := p.Pick(context.Background(), files)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPicker_Limit(t *testing.T) {
	asker := &scriptedAsker{answers: []Answer{Answered(""), Answered("3")}}
	p := NewPicker(asker, &bytes.Buffer{}, time.Second)
	p.Limit = 2

	_, ok, err := p.Pick(context.Background(), files)
	require.NoError(t, err)
	assert.False(t, ok, "choice beyond the listed matches is rejected")
	assert.Contains(t, asker.questions[1], "[1-2")
}

func TestRank(t *testing.T) {
	matches := Rank("retro", files)
	require.NotEmpty(t, matches)
	assert.Equal(t, "/notes/work/retro.md", matches[0].Str)

	all := Rank("  ", files)
	require.Len(t, all, len(files))
	for i, m := range all {
		assert.Equal(t, files[i], m.Str)
	}
}
