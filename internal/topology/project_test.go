package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/dawgraph/internal/node"
	"github.com/vk/dawgraph/internal/portid"
)

type stubUnit struct {
	ins, outs []portid.SignalType
}

func (u stubUnit) Ports() ([]portid.SignalType, []portid.SignalType) { return u.ins, u.outs }
func (u stubUnit) Latency() int                                       { return 0 }
func (u stubUnit) Process(*node.ProcessContext) error                 { return nil }

var audioIO = stubUnit{
	ins:  []portid.SignalType{portid.Audio},
	outs: []portid.SignalType{portid.Audio},
}

func out(owner string) portid.ID { return portid.MustNew(owner, portid.Out, portid.Audio, 0) }
func in(owner string) portid.ID  { return portid.MustNew(owner, portid.In, portid.Audio, 0) }

func newProject(t *testing.T, ids ...string) *Project {
	t.Helper()
	p := NewProject()
	for _, id := range ids {
		_, err := p.AddProcessor(id, "stub", audioIO)
		require.NoError(t, err)
	}
	return p
}

func TestAddProcessor_DerivesPortsPerType(t *testing.T) {
	p := NewProject()
	unit := stubUnit{
		ins:  []portid.SignalType{portid.Audio, portid.Audio, portid.Event, portid.Control},
		outs: []portid.SignalType{portid.Audio},
	}

	proc, err := p.AddProcessor("plugin.synth", "stub", unit)
	require.NoError(t, err)

	want := []string{
		"plugin.synth/in/audio[0]",
		"plugin.synth/in/audio[1]",
		"plugin.synth/in/event[0]",
		"plugin.synth/in/control[0]",
	}
	var got []string
	for _, id := range proc.Inputs {
		got = append(got, id.String())
	}
	assert.Equal(t, want, got)
	assert.Equal(t, "plugin.synth/out/audio[0]", proc.Outputs[0].String())
}

func TestAddProcessor_Errors(t *testing.T) {
	p := newProject(t, "track.1")

	_, err := p.AddProcessor("track.1", "stub", audioIO)
	assert.ErrorIs(t, err, ErrDuplicateProcessor)

	_, err = p.AddProcessor("bad..id", "stub", audioIO)
	assert.Error(t, err)

	_, err = p.AddProcessor("track.2", "stub", nil)
	assert.Error(t, err)
}

func TestConnect_Validation(t *testing.T) {
	tests := []struct {
		name    string
		src     portid.ID
		dest    portid.ID
		wantErr error
	}{
		{"wrong direction", in("a"), out("b"), ErrDirection},
		{"unknown source", out("nope"), in("b"), ErrUnknownPort},
		{"unknown destination", out("a"), portid.MustNew("b", portid.In, portid.Audio, 3), ErrUnknownPort},
		{"self loop", out("a"), in("a"), ErrSelfLoop},
		{"incompatible", out("a"), portid.MustNew("ev", portid.In, portid.Event, 0), ErrIncompatible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProject(t, "a", "b")
			_, err := p.AddProcessor("ev", "stub", stubUnit{ins: []portid.SignalType{portid.Event}})
			require.NoError(t, err)

			err = p.Connect(tt.src, tt.dest, 1)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConnect_CVDrivesControl(t *testing.T) {
	p := NewProject()
	_, err := p.AddProcessor("lfo", "stub", stubUnit{outs: []portid.SignalType{portid.CV}})
	require.NoError(t, err)
	_, err = p.AddProcessor("fader", "stub", stubUnit{ins: []portid.SignalType{portid.Control}})
	require.NoError(t, err)

	err = p.Connect(
		portid.MustNew("lfo", portid.Out, portid.CV, 0),
		portid.MustNew("fader", portid.In, portid.Control, 0),
		1,
	)
	assert.NoError(t, err)
}

func TestConnect_RejectsDuplicateAndCycle(t *testing.T) {
	p := newProject(t, "a", "b", "c")
	require.NoError(t, p.Connect(out("a"), in("b"), 1))
	require.NoError(t, p.Connect(out("b"), in("c"), 1))

	assert.ErrorIs(t, p.Connect(out("a"), in("b"), 1), ErrExists)
	assert.ErrorIs(t, p.Connect(out("c"), in("a"), 1), ErrCycle)
}

func TestConnect_DisabledConnectionsStillCountForCycles(t *testing.T) {
	p := newProject(t, "a", "b")
	require.NoError(t, p.Connect(out("a"), in("b"), 1))
	require.NoError(t, p.SetEnabled(out("a"), in("b"), false))

	assert.ErrorIs(t, p.Connect(out("b"), in("a"), 1), ErrCycle)
}

func TestLockedConnections(t *testing.T) {
	p := newProject(t, "a", "b")
	require.NoError(t, p.Connect(out("a"), in("b"), 1))
	require.NoError(t, p.SetLocked(out("a"), in("b"), true))

	assert.ErrorIs(t, p.Disconnect(out("a"), in("b")), ErrLocked)
	assert.ErrorIs(t, p.SetMultiplier(out("a"), in("b"), 0.5), ErrLocked)
	assert.ErrorIs(t, p.SetEnabled(out("a"), in("b"), false), ErrLocked)

	require.NoError(t, p.SetLocked(out("a"), in("b"), false))
	assert.NoError(t, p.SetMultiplier(out("a"), in("b"), 0.5))
	c, ok := p.Connection(out("a"), in("b"))
	require.True(t, ok)
	assert.Equal(t, 0.5, c.Multiplier)
	assert.NoError(t, p.Disconnect(out("a"), in("b")))
	assert.ErrorIs(t, p.Disconnect(out("a"), in("b")), ErrNotConnected)
}

func TestRemoveProcessor_DropsItsConnections(t *testing.T) {
	p := newProject(t, "a", "b", "c")
	require.NoError(t, p.Connect(out("a"), in("b"), 1))
	require.NoError(t, p.Connect(out("b"), in("c"), 1))

	require.NoError(t, p.RemoveProcessor("b"))

	s := p.Snapshot()
	assert.Len(t, s.Processors, 2)
	assert.Empty(t, s.Connections)
	assert.ErrorIs(t, p.RemoveProcessor("b"), ErrUnknownProcessor)

	// a -> c is now legal in both directions again.
	assert.NoError(t, p.Connect(out("c"), in("a"), 1))
}

func TestSnapshot_IsIsolatedFromLaterEdits(t *testing.T) {
	p := newProject(t, "a", "b")
	require.NoError(t, p.Connect(out("a"), in("b"), 0.5))
	v := p.Version()

	s := p.Snapshot()
	require.NoError(t, p.SetMultiplier(out("a"), in("b"), 2))
	_, err := p.AddProcessor("c", "stub", audioIO)
	require.NoError(t, err)

	assert.Equal(t, v, s.Version)
	assert.Greater(t, p.Version(), v)
	assert.Len(t, s.Processors, 2)
	assert.Equal(t, 0.5, s.Connections[0].Multiplier)

	proc, ok := s.Port(in("b"))
	require.True(t, ok)
	assert.Equal(t, "b", proc.ID)
	_, ok = s.Port(in("c"))
	assert.False(t, ok)
}
