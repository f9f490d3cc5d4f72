package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSession(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_SessionLoadError(t *testing.T) {
	t.Parallel()

	// Missing closing brace.
	path := writeSession(t, `processor "tone" "track.a" {`)
	err := run(context.Background(), &bytes.Buffer{}, []string{path})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse")
}

func TestRun_ShortSession(t *testing.T) {
	t.Parallel()

	path := writeSession(t, `
processor "tone" "track.a" {}
processor "passthrough" "master" { channels = 1 }
connection {
  src  = "track.a/out/audio[0]"
  dest = "master/in/audio[0]"
}
`)
	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{"-duration", "30ms", "-workers", "1", path})
	require.NoError(t, err)
	require.Contains(t, out.String(), "Engine run finished.")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{"-h"})
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}
