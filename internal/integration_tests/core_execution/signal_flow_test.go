package core_execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/dawgraph/internal/registry"
	"github.com/vk/dawgraph/internal/testutil"
	"github.com/vk/dawgraph/modules/tone"
)

const busSession = `
engine {
  sample_rate = 48000
  block_size  = 64
}

processor "tone" "track.a" {
  frequency = 440
  amplitude = 0.5
}

processor "tone" "track.b" {
  frequency = 660
  amplitude = 0.25
}

processor "latency" "bus.fx" {
  frames = 64
}

processor "passthrough" "master" {
  channels = 1
}

processor "probe" "hw.out" {}

connection {
  src  = "track.a/out/audio[0]"
  dest = "bus.fx/in/audio[0]"
}

connection {
  src  = "track.b/out/audio[0]"
  dest = "bus.fx/in/audio[0]"
}

connection {
  src  = "bus.fx/out/audio[0]"
  dest = "master/in/audio[0]"
}

connection {
  src  = "master/out/audio[0]"
  dest = "hw.out/in/audio[0]"
}
`

// Two tracks summed on a bus with 64 frames of latency reach the hardware
// output delayed by exactly that latency.
func TestCoreExecution_TwoTracksThroughLatentBus(t *testing.T) {
	probes := &testutil.ProbeModule{}
	result := testutil.RunIntegrationTest(t, map[string]string{"session.hcl": busSession}, testutil.Options{
		Modules: []registry.Module{probes},
	})
	require.NoError(t, result.Err, result.LogOutput)
	testutil.AssertLogged(t, result, "Engine run finished.")

	stats := result.App.Engine().Stats()
	assert.Equal(t, 64, stats.MaxPlaybackLatency)

	a, err := tone.New(tone.Params{Frequency: 440, Amplitude: 0.5})
	require.NoError(t, err)
	b, err := tone.New(tone.Params{Frequency: 660, Amplitude: 0.25})
	require.NoError(t, err)

	probe := probes.Last()
	require.NotNil(t, probe)
	got := probe.Samples()
	require.Greater(t, len(got), 2*64, "too few cycles ran")

	for i, pos := range probe.Playheads() {
		assert.Equal(t, int64(i*64), pos)
	}
	for f, v := range got {
		if f < 64 {
			assert.Zero(t, v, "frame %d", f)
			continue
		}
		src := int64(f - 64)
		assert.InDelta(t, a.Sample(src, 48000)+b.Sample(src, 48000), v, 1e-9, "frame %d", f)
	}
}

// A disabled connection contributes nothing, and multipliers scale each
// source independently.
func TestCoreExecution_MultipliersAndDisabledConnections(t *testing.T) {
	session := `
engine {
  block_size = 32
}

processor "tone" "track.a" {
  frequency = 100
  amplitude = 1
}

processor "tone" "track.b" {
  frequency = 250
  amplitude = 1
}

processor "probe" "hw.out" {}

connection {
  src        = "track.a/out/audio[0]"
  dest       = "hw.out/in/audio[0]"
  multiplier = 0.25
}

connection {
  src     = "track.b/out/audio[0]"
  dest    = "hw.out/in/audio[0]"
  enabled = false
}
`
	probes := &testutil.ProbeModule{}
	result := testutil.RunIntegrationTest(t, map[string]string{"session.hcl": session}, testutil.Options{
		Modules: []registry.Module{probes},
	})
	require.NoError(t, result.Err, result.LogOutput)

	a, err := tone.New(tone.Params{Frequency: 100, Amplitude: 1})
	require.NoError(t, err)
	got := probes.Last().Samples()
	require.NotEmpty(t, got)
	for f, v := range got {
		assert.InDelta(t, 0.25*a.Sample(int64(f), 48000), v, 1e-9, "frame %d", f)
	}
}
