package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// fixedNow pins "today" to 2024-03-15 for the duration of the test.
func fixedNow(t *testing.T) {
	t.Helper()
	original := now
	now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = original })
}

type cmdResult struct {
	out string
	err error
}

func runCLI(t *testing.T, dbPath, stdin string, args ...string) cmdResult {
	t.Helper()

	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--db", dbPath, "--log-level", "error"}, args...))

	err := root.Execute()
	return cmdResult{out: out.String(), err: err}
}

func newTestDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "pocketbook.db")
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	want := []string{"init", "categories", "ops", "summary", "stats", "series", "budget", "checkpoint", "version"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		assert.True(t, found, "subcommand %q should exist", name)
	}

	for _, flag := range []string{"config", "db", "log-level", "log-format"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "flag --%s", flag)
	}
}

func TestSubcommandTree(t *testing.T) {
	tests := []struct {
		parent func() *cobra.Command
		want   []string
	}{
		{parent: categoriesCmd, want: []string{"list", "add", "delete"}},
		{parent: operationsCmd, want: []string{"add", "list", "edit", "delete"}},
		{parent: budgetCmd, want: []string{"add", "list", "edit", "delete"}},
		{parent: checkpointCmd, want: []string{"create", "list", "restore", "delete"}},
	}

	for _, tt := range tests {
		cmd := tt.parent()
		t.Run(cmd.Name(), func(t *testing.T) {
			var names []string
			for _, sub := range cmd.Commands() {
				names = append(names, sub.Name())
			}
			assert.ElementsMatch(t, tt.want, names)
		})
	}
}

func TestRangeFlags(t *testing.T) {
	for _, cmd := range []*cobra.Command{summaryCmd(), statsCmd(), seriesCmd()} {
		for _, flag := range []string{"period", "from", "to"} {
			assert.NotNil(t, cmd.Flag(flag), "%s --%s", cmd.Name(), flag)
		}
	}
	assert.Equal(t, "month", seriesCmd().Flag("bucket").DefValue)
}

func TestVersionCmd(t *testing.T) {
	res := runCLI(t, newTestDBPath(t), "", "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "pocketbook dev")
}
