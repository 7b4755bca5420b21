package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/doing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "doing version "+strings.TrimSpace(doing.Version)+"\n", out)
}

func TestStepCommand(t *testing.T) {
	out, err := execute(t, "step", "--json", "enter", "exit")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n"))
	assert.Contains(t, out, `"to":"exited"`)
}

func TestRunCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tock: 1ms\ndoers:\n  - name: once\n    recurs: 1\n"), 0o644))

	out, err := execute(t, "run", "--json", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"doer":"once"`)
}

func TestRunCommand_RequiresPlan(t *testing.T) {
	_, err := execute(t, "run")
	assert.Error(t, err)
}

func TestGraphCommand(t *testing.T) {
	out, err := execute(t, "graph")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "stateDiagram-v2\n"))
	assert.Contains(t, out, "recurring --> entered: enter")
}
