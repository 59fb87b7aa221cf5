package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrNoInput is returned when input ends before a required answer is given.
var ErrNoInput = errors.New("no input")

// maxAttempts bounds how often a required field is asked again.
const maxAttempts = 3

// Prompter asks for command fields that were not supplied as flags.
type Prompter struct {
	reader *NonBlockingReader
	writer io.Writer
}

// NewPrompter creates a prompter reading answers from reader and writing
// prompts to writer. Nil arguments default to stdin and stdout.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader: NewNonBlockingReader(reader),
		writer: writer,
	}
}

// Ask prints label and returns the answer, or def when the answer is blank.
func (p *Prompter) Ask(ctx context.Context, label, def string) (string, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt(label, def)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	answer, err := p.reader.ReadLine(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			if def != "" {
				return def, nil
			}
			return "", ErrNoInput
		}
		return "", err
	}

	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// AskRequired asks until a non-blank answer is given.
func (p *Prompter) AskRequired(ctx context.Context, label string) (string, error) {
	for range maxAttempts {
		answer, err := p.Ask(ctx, label, "")
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
		if _, err := fmt.Fprintln(p.writer, FormatWarning(label+" is required.")); err != nil {
			return "", fmt.Errorf("failed to write warning: %w", err)
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoInput, label)
}

// Confirm asks a yes/no question. A blank answer selects def.
func (p *Prompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}

	answer, err := p.Ask(ctx, question+" ("+hint+")", "")
	if err != nil {
		if errors.Is(err, ErrNoInput) {
			return def, nil
		}
		return false, err
	}

	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Choose lists options numbered from 1 and returns the selected one. The
// answer may be a number or free text; free text is returned as typed so
// callers can accept values outside options.
func (p *Prompter) Choose(ctx context.Context, label string, options []string, def string) (string, error) {
	for i, option := range options {
		if _, err := fmt.Fprintf(p.writer, "  [%d] %s\n", i+1, option); err != nil {
			return "", fmt.Errorf("failed to write option: %w", err)
		}
	}

	for range maxAttempts {
		answer, err := p.Ask(ctx, label, def)
		if err != nil {
			return "", err
		}
		if answer == "" {
			if _, err := fmt.Fprintln(p.writer, FormatWarning(label+" is required.")); err != nil {
				return "", fmt.Errorf("failed to write warning: %w", err)
			}
			continue
		}

		if n, convErr := strconv.Atoi(answer); convErr == nil {
			if n >= 1 && n <= len(options) {
				return options[n-1], nil
			}
			if _, err := fmt.Fprintln(p.writer, FormatWarning(fmt.Sprintf("Choose a number between 1 and %d.", len(options)))); err != nil {
				return "", fmt.Errorf("failed to write warning: %w", err)
			}
			continue
		}
		return answer, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoInput, label)
}
