package error_handling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/dawgraph/internal/testutil"
)

// Sessions that describe an impossible topology are rejected before the
// engine starts.
func TestErrorHandling_InvalidSessionIsRejected(t *testing.T) {
	tests := []struct {
		name    string
		session string
		wantErr string
	}{
		{
			name:    "unknown processor kind",
			session: `processor "reverb" "bus.verb" {}`,
			wantErr: "unknown processor kind",
		},
		{
			name:    "unknown parameter",
			session: `processor "gain" "fader" { volume = 3 }`,
			wantErr: "has no parameter 'volume'",
		},
		{
			name: "feedback loop",
			session: `
processor "gain" "a" {}
processor "gain" "b" {}
connection {
  src  = "a/out/audio[0]"
  dest = "b/in/audio[0]"
}
connection {
  src  = "b/out/audio[0]"
  dest = "a/in/audio[0]"
}`,
			wantErr: "cycle",
		},
		{
			name: "incompatible signal types",
			session: `
processor "notegen" "seq" {}
processor "gain" "fader" {}
connection {
  src  = "seq/out/event[0]"
  dest = "fader/in/audio[0]"
}`,
			wantErr: "incompatible",
		},
		{
			name: "wrong direction",
			session: `
processor "gain" "a" {}
processor "gain" "b" {}
connection {
  src  = "a/in/audio[0]"
  dest = "b/in/audio[0]"
}`,
			wantErr: "from an output port",
		},
		{
			name:    "invalid hcl",
			session: `processor "gain" "a" {`,
			wantErr: "failed to parse HCL file",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := testutil.RunIntegrationTest(t, map[string]string{"session.hcl": tc.session}, testutil.Options{})
			require.Error(t, result.Err)
			assert.Contains(t, result.Err.Error(), tc.wantErr)
			assert.NotContains(t, result.LogOutput, "Engine activated.")
		})
	}
}

// An empty session is valid: the engine runs cycles over an empty graph.
func TestErrorHandling_EmptySessionRuns(t *testing.T) {
	result := testutil.RunIntegrationTest(t, map[string]string{"session.hcl": `engine { block_size = 32 }`}, testutil.Options{})
	require.NoError(t, result.Err, result.LogOutput)
	assert.Positive(t, result.App.Engine().Stats().Cycles)
}
