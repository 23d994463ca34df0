package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "y", input: "y\n", want: true},
		{name: "yes uppercase", input: "YES\n", want: true},
		{name: "n", input: "n\n", want: false},
		{name: "empty answer", input: "\n", want: false},
		{name: "end of input", input: "", want: false},
		{name: "anything else", input: "sure\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)

			got, err := p.Confirm(context.Background(), "Delete category Food?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Delete category Food? [y/N]")
		})
	}
}

func TestPrompter_Require(t *testing.T) {
	p := NewPrompter(strings.NewReader("no\n"), &bytes.Buffer{})
	assert.ErrorIs(t, p.Require(context.Background(), "Restore?"), ErrNotConfirmed)

	p = NewPrompter(strings.NewReader("y\n"), &bytes.Buffer{})
	assert.NoError(t, p.Require(context.Background(), "Restore?"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p = NewPrompter(strings.NewReader("y\n"), &bytes.Buffer{})
	assert.ErrorIs(t, p.Require(ctx, "Restore?"), ErrInputCancelled)
}
