package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrompter(input string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return NewPrompter(strings.NewReader(input), &out), &out
}

func TestPrompter_Ask(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   string
		want  string
	}{
		{name: "answer", input: "Checking\n", want: "Checking"},
		{name: "blank uses default", input: "\n", def: "2024-01-15", want: "2024-01-15"},
		{name: "answer overrides default", input: "2024-02-01\n", def: "2024-01-15", want: "2024-02-01"},
		{name: "eof uses default", input: "", def: "0", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, out := newTestPrompter(tt.input)

			got, err := p.Ask(context.Background(), "Opening date", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Opening date")
		})
	}
}

func TestPrompter_AskNoInput(t *testing.T) {
	p, _ := newTestPrompter("")

	_, err := p.Ask(context.Background(), "Name", "")
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestPrompter_AskRequired(t *testing.T) {
	p, out := newTestPrompter("\n  \nSavings\n")

	got, err := p.AskRequired(context.Background(), "Account name")
	require.NoError(t, err)
	assert.Equal(t, "Savings", got)
	assert.Equal(t, 2, strings.Count(out.String(), "Account name is required."))
}

func TestPrompter_AskRequiredGivesUp(t *testing.T) {
	p, _ := newTestPrompter("\n\n\nlate\n")

	_, err := p.AskRequired(context.Background(), "Account name")
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "full yes", input: "YES\n", want: true},
		{name: "no", input: "n\n", def: true, want: false},
		{name: "blank default true", input: "\n", def: true, want: true},
		{name: "blank default false", input: "\n", want: false},
		{name: "eof uses default", input: "", def: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPrompter(tt.input)

			got, err := p.Confirm(context.Background(), "Create account?", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrompter_Choose(t *testing.T) {
	options := []string{"daily", "weekly", "monthly"}

	tests := []struct {
		name  string
		input string
		def   string
		want  string
	}{
		{name: "by number", input: "3\n", want: "monthly"},
		{name: "free text", input: "every other tuesday\n", want: "every other tuesday"},
		{name: "out of range then valid", input: "9\n1\n", want: "daily"},
		{name: "blank uses default", input: "\n", def: "weekly", want: "weekly"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, out := newTestPrompter(tt.input)

			got, err := p.Choose(context.Background(), "Frequency", options, tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "[2] weekly")
		})
	}
}

func TestPrompter_Cancelled(t *testing.T) {
	p, _ := newTestPrompter("Checking\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Ask(ctx, "Name", "")
	assert.ErrorIs(t, err, ErrInputCancelled)
}

func TestNewProgressBar(t *testing.T) {
	var out bytes.Buffer
	bar := NewProgressBar(&out, 2, "Importing")

	require.NoError(t, bar.Add(1))
	require.NoError(t, bar.Add(1))
	require.NoError(t, bar.Finish())

	assert.Contains(t, out.String(), "Importing")
}
