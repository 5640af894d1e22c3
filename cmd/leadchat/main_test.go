package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "leadchat version")
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Flow is valid!")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("nodes:\n  welcome:\n    message: Hi\n    options:\n      - {label: Go, next: nowhere}\n"), 0o600))
	_, err = execute(t, "validate", bad)
	assert.ErrorContains(t, err, "nowhere")
}

func TestGraphCommand(t *testing.T) {
	out, err := execute(t, "graph")
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
}

func TestExportCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "flow")
	out, err := execute(t, "export", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported")

	out, err = execute(t, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Flow is valid!")
}

func TestSessionCommands(t *testing.T) {
	t.Setenv("LEADCHAT_SESSION_DIR", t.TempDir())

	out, err := execute(t, "session", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "No active sessions found.")

	_, err = execute(t, "session", "inspect", "ghost")
	assert.Error(t, err)
}
