package cli

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader_ReadLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantEOF bool
	}{
		{name: "plain answer", input: "yes\n", want: "yes"},
		{name: "surrounding whitespace", input: "  y \t\n", want: "y"},
		{name: "blank line", input: "\n", want: ""},
		{name: "windows line ending", input: "n\r\n", want: "n"},
		{name: "no trailing newline", input: "no", want: "no"},
		{name: "empty input", input: "", wantEOF: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewLineReader(strings.NewReader(tt.input))

			got, err := r.ReadLine(context.Background())
			if tt.wantEOF {
				assert.ErrorIs(t, err, io.EOF)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineReader_Sequence(t *testing.T) {
	r := NewLineReader(strings.NewReader("first\nsecond"))
	ctx := context.Background()

	for _, want := range []string{"first", "second"} {
		got, err := r.ReadLine(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := r.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)

	// Stays at EOF
	_, err = r.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReader_Cancellation(t *testing.T) {
	t.Run("already cancelled", func(t *testing.T) {
		r := NewLineReader(strings.NewReader("y\n"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := r.ReadLine(ctx)
		assert.ErrorIs(t, err, ErrInputCancelled)
	})

	t.Run("line arrives after cancelled read", func(t *testing.T) {
		pr, pw := io.Pipe()
		t.Cleanup(func() { _ = pr.Close() })

		r := NewLineReader(pr)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := r.ReadLine(ctx)
		require.ErrorIs(t, err, ErrInputCancelled)

		go func() {
			_, _ = pw.Write([]byte("late\n"))
			_ = pw.Close()
		}()

		got, err := r.ReadLine(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "late", got)
	})
}

func TestLineReader_Close(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pr.Close() })

	r := NewLineReader(pr)
	go func() { _, _ = pw.Write([]byte("first\n")) }()

	got, err := r.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	r.Close()
	r.Close()

	_, err = r.ReadLine(context.Background())
	assert.ErrorIs(t, err, ErrReaderClosed)

	// Returns once the pump has consumed the line
	_, err = pw.Write([]byte("unread\n"))
	require.NoError(t, err)

	// The pump gives up on the unread line instead of blocking forever
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-r.lines:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}
