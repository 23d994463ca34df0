package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when the context ends before a line arrives.
var ErrInputCancelled = errors.New("input canceled")

// ErrReaderClosed is returned by ReadLine after Close.
var ErrReaderClosed = errors.New("reader closed")

// LineReader reads trimmed lines from an io.Reader without blocking past
// context cancellation. A single goroutine owns the underlying reader, so an
// abandoned read is picked up by the next ReadLine instead of being lost.
type LineReader struct {
	src       *bufio.Reader
	lines     chan string
	done      chan struct{}
	err       error
	once      sync.Once
	closeOnce sync.Once
}

// NewLineReader wraps src.
func NewLineReader(src io.Reader) *LineReader {
	if src == nil {
		panic("reader cannot be nil")
	}
	return &LineReader{
		src:   bufio.NewReader(src),
		lines: make(chan string),
		done:  make(chan struct{}),
	}
}

// ReadLine returns the next line with surrounding whitespace removed. A last
// line without a trailing newline is returned as is; after that the reader's
// error (usually io.EOF) is returned.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}
	select {
	case <-r.done:
		return "", ErrReaderClosed
	default:
	}
	r.once.Do(func() { go r.pump() })

	select {
	case <-r.done:
		return "", ErrReaderClosed
	case <-ctx.Done():
		return "", ErrInputCancelled
	case line, ok := <-r.lines:
		if !ok {
			return "", r.err
		}
		return line, nil
	}
}

// Close stops handing out lines and lets the pump goroutine exit once its
// pending read returns. It does not close the underlying reader.
func (r *LineReader) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

func (r *LineReader) pump() {
	defer close(r.lines)
	for {
		line, err := r.src.ReadString('\n')
		if line != "" {
			select {
			case <-r.done:
				r.err = ErrReaderClosed
				return
			default:
			}
			select {
			case r.lines <- strings.TrimSpace(line):
			case <-r.done:
				r.err = ErrReaderClosed
				return
			}
		}
		if err != nil {
			// Read by ReadLine only after the channel is closed
			r.err = err
			return
		}
	}
}
