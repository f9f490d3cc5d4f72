package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/dawgraph/internal/node"
	"github.com/vk/dawgraph/internal/portid"
)

func mustPort(t *testing.T, s string) portid.ID {
	t.Helper()
	id, err := portid.Parse(s)
	require.NoError(t, err)
	return id
}

// failing always returns an error from Process.
type failing struct{}

func (failing) Ports() ([]portid.SignalType, []portid.SignalType) {
	return []portid.SignalType{portid.Audio}, []portid.SignalType{portid.Audio}
}
func (failing) Latency() int { return 0 }
func (failing) Process(pc *node.ProcessContext) error {
	pc.Outputs[0].Samples[0] = 1
	return errors.New("plugin crashed")
}
