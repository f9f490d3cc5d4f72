package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// writeFiles writes files relative to a fresh temp dir and returns the dir.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

const sessionHCL = `
engine {
  sample_rate = 44100
  block_size  = 128
  workers     = 2
}

telemetry {
  nats_url     = "nats://127.0.0.1:4222"
  nats_subject = "studio.a"
}

processor "tone" "track.a" {
  frequency = 220
  amplitude = 0.25
}

processor "passthrough" "master" {
  channels = 1
}

connection {
  src        = "track.a/out/audio[0]"
  dest       = "master/in/audio[0]"
  multiplier = 0.5
}

connection {
  src     = "track.a/out/audio[0]"
  dest    = "master/in/audio[1]"
  enabled = false
  locked  = true
}
`

func TestLoad_FullSession(t *testing.T) {
	dir := writeFiles(t, map[string]string{"session.hcl": sessionHCL})

	m, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	require.NotNil(t, m.Engine)
	assert.Equal(t, 44100, m.Engine.SampleRate)
	assert.Equal(t, 128, m.Engine.BlockSize)
	assert.Equal(t, 2, m.Engine.Workers)
	assert.Zero(t, m.Engine.EventCapacity)

	require.NotNil(t, m.Telemetry)
	assert.Equal(t, "nats://127.0.0.1:4222", m.Telemetry.NATSURL)
	assert.Equal(t, "studio.a", m.Telemetry.NATSSubject)

	require.Len(t, m.Processors, 2)
	assert.Equal(t, "tone", m.Processors[0].Kind)
	assert.Equal(t, "track.a", m.Processors[0].ID)
	assert.True(t, m.Processors[0].Params["frequency"].RawEquals(cty.NumberIntVal(220)))
	assert.Equal(t, "master", m.Processors[1].ID)

	require.Len(t, m.Connections, 2)
	assert.Equal(t, 0.5, m.Connections[0].Multiplier)
	assert.True(t, m.Connections[0].Enabled)
	assert.False(t, m.Connections[0].Locked)
	assert.Equal(t, 1.0, m.Connections[1].Multiplier)
	assert.False(t, m.Connections[1].Enabled)
	assert.True(t, m.Connections[1].Locked)
}

func TestLoad_MergesFilesInLexicalOrder(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"b/bus.hcl":    `processor "latency" "bus.fx" { frames = 64 }`,
		"a/tracks.hcl": `processor "tone" "track.a" {}`,
		"notes.txt":    `not hcl`,
	})

	m, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, m.Processors, 2)
	assert.Equal(t, "track.a", m.Processors[0].ID)
	assert.Equal(t, "bus.fx", m.Processors[1].ID)
	assert.Nil(t, m.Engine)
}

func TestLoad_SingleFileAndDuplicatePaths(t *testing.T) {
	dir := writeFiles(t, map[string]string{"s.hcl": `processor "tone" "track.a" {}`})
	file := filepath.Join(dir, "s.hcl")

	m, err := NewLoader().Load(context.Background(), file, dir)
	require.NoError(t, err)
	assert.Len(t, m.Processors, 1)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "syntax error",
			files:   map[string]string{"s.hcl": `processor "tone" {`},
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "unknown block",
			files:   map[string]string{"s.hcl": `track "a" {}`},
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "missing label",
			files:   map[string]string{"s.hcl": `processor "tone" {}`},
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "connection without dest",
			files:   map[string]string{"s.hcl": `connection { src = "a/out/audio[0]" }`},
			wantErr: "failed to decode HCL file",
		},
		{
			name: "duplicate engine",
			files: map[string]string{
				"a.hcl": `engine { block_size = 64 }`,
				"b.hcl": `engine { block_size = 128 }`,
			},
			wantErr: "duplicate engine block",
		},
		{
			name: "duplicate processor",
			files: map[string]string{
				"a.hcl": `processor "tone" "x" {}`,
				"b.hcl": `processor "gain" "x" {}`,
			},
			wantErr: "declared more than once",
		},
		{
			name:    "parameter referencing a variable",
			files:   map[string]string{"s.hcl": `processor "gain" "g" { gain = var.level }`},
			wantErr: "parameter 'gain'",
		},
		{
			name:    "no files",
			files:   map[string]string{"readme.md": "#"},
			wantErr: ErrNoFiles.Error(),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := writeFiles(t, tc.files)
			_, err := NewLoader().Load(context.Background(), dir)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoad_MissingPath(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorContains(t, err, "error accessing path")
}
