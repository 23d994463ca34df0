package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNotConfirmed is returned by Require when the user declines.
var ErrNotConfirmed = errors.New("not confirmed")

// Prompter asks yes/no questions before destructive commands.
type Prompter struct {
	writer io.Writer
	reader *LineReader
}

// NewPrompter creates a prompter reading answers from reader.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader: NewLineReader(reader),
		writer: writer,
	}
}

// Confirm asks question and reports whether the answer was yes. Anything
// other than y or yes, including end of input, counts as no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	if _, err := fmt.Fprintf(p.writer, "%s", FormatPrompt(question)); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}

	answer, err := p.reader.ReadLine(ctx)
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Close releases the input reader. The prompter cannot be used afterwards.
func (p *Prompter) Close() {
	p.reader.Close()
}

// Require is Confirm that turns a "no" into ErrNotConfirmed.
func (p *Prompter) Require(ctx context.Context, question string) error {
	ok, err := p.Confirm(ctx, question)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotConfirmed
	}
	return nil
}
