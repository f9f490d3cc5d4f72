package node

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/dawgraph/internal/portid"
	"github.com/vk/dawgraph/internal/signal"
	"github.com/vk/dawgraph/internal/telemetry"
)

const blockSize = 8

// fnUnit is a Unit backed by a function.
type fnUnit struct {
	ins, outs []portid.SignalType
	latency   int
	fn        func(pc *ProcessContext) error
}

func (u *fnUnit) Ports() ([]portid.SignalType, []portid.SignalType) { return u.ins, u.outs }
func (u *fnUnit) Latency() int                                       { return u.latency }
func (u *fnUnit) Process(pc *ProcessContext) error                   { return u.fn(pc) }

func audioPort(t *testing.T, index int32, owner string, dir portid.Direction) *Node {
	t.Helper()
	id, err := portid.New(owner, dir, portid.Audio, 0)
	require.NoError(t, err)
	return NewPort(index, id, signal.New(portid.Audio, blockSize, 0))
}

func newCycle(nodes []*Node, q *telemetry.Queue) (*Cycle, chan int32) {
	ready := make(chan int32, len(nodes))
	return &Cycle{
		Time:    TimeInfo{NFrames: blockSize, SampleRate: 48000},
		Nodes:   nodes,
		Ready:   ready,
		Reports: q,
	}, ready
}

func fill(b *signal.Buffer, v float64) {
	for i := range b.Samples {
		b.Samples[i] = v
	}
}

func TestPort_SumsSourcesWithMultipliers(t *testing.T) {
	a := audioPort(t, 0, "track.a", portid.Out)
	b := audioPort(t, 1, "track.b", portid.Out)
	dst := audioPort(t, 2, "bus", portid.In)
	dst.AddSource(0, 0.5)
	dst.AddSource(1, 2)

	fill(a.Buffer(), 1)
	fill(b.Buffer(), 3)
	fill(dst.Buffer(), 100) // stale data from a previous cycle

	c, _ := newCycle([]*Node{a, b, dst}, nil)
	dst.Process(c)

	for _, v := range dst.Buffer().Samples {
		assert.InDelta(t, 6.5, v, 1e-12)
	}
}

func TestPort_OutputIsNotCleared(t *testing.T) {
	out := audioPort(t, 0, "track.a", portid.Out)
	fill(out.Buffer(), 0.25)

	c, _ := newCycle([]*Node{out}, nil)
	out.Process(c)

	assert.Equal(t, 0.25, out.Buffer().Samples[0])
}

func TestPort_CompensatesOnlyItsOwnConnection(t *testing.T) {
	a := audioPort(t, 0, "track.a", portid.Out)
	b := audioPort(t, 1, "track.b", portid.Out)
	late := audioPort(t, 2, "bus.late", portid.In)
	direct := audioPort(t, 3, "bus.direct", portid.In)
	late.AddSource(0, 1)
	late.AddSource(1, 1)
	direct.AddSource(0, 1)
	a.Buffer().Samples[0] = 1
	b.Buffer().Samples[0] = 10

	comp, err := NewCompensation(portid.Audio, 3, blockSize, 0)
	require.NoError(t, err)
	c, _ := newCycle([]*Node{a, b, late, direct}, nil)
	c.Compensation = make([][]*Compensation, 4)
	c.Compensation[2] = []*Compensation{comp, nil}

	late.Process(c)
	direct.Process(c)

	assert.Equal(t, []float64{10, 0, 0, 1, 0, 0, 0, 0}, late.Buffer().Samples)
	assert.Equal(t, []float64{1, 0, 0, 0, 0, 0, 0, 0}, direct.Buffer().Samples)
	assert.Equal(t, []float64{1, 0, 0, 0, 0, 0, 0, 0}, a.Buffer().Samples)
	assert.Equal(t, 3, comp.Frames())
}

func TestNewCompensation_ControlOnlyRecordsFrames(t *testing.T) {
	comp, err := NewCompensation(portid.Control, 4, blockSize, 0)
	require.NoError(t, err)
	src := signal.New(portid.Control, blockSize, 0)
	src.Value = 0.5

	assert.Same(t, src, comp.apply(src, 0, blockSize))
	assert.Equal(t, 4, comp.Frames())
}

func TestPort_ReportsEventOverflow(t *testing.T) {
	srcID := portid.MustNew("seq", portid.Out, portid.Event, 0)
	dstID := portid.MustNew("synth", portid.In, portid.Event, 0)
	src := NewPort(0, srcID, signal.New(portid.Event, blockSize, 4))
	dst := NewPort(1, dstID, signal.New(portid.Event, blockSize, 2))
	dst.AddSource(0, 1)
	for i := range 4 {
		src.Buffer().AppendEvent(signal.Event{Frame: uint32(i)})
	}

	q := telemetry.NewQueue(4)
	c, _ := newCycle([]*Node{src, dst}, q)
	dst.Process(c)

	assert.Len(t, dst.Buffer().Events, 2)
	require.Equal(t, uint64(1), q.Pushed())
}

func TestProcessor_RunsUnitOnPortBuffers(t *testing.T) {
	in := audioPort(t, 0, "fx", portid.In)
	out := audioPort(t, 2, "fx", portid.Out)
	unit := &fnUnit{
		ins:  []portid.SignalType{portid.Audio},
		outs: []portid.SignalType{portid.Audio},
		fn: func(pc *ProcessContext) error {
			for i, v := range pc.Inputs[0].Samples {
				pc.Outputs[0].Samples[i] = -v
			}
			return nil
		},
	}
	proc := NewProcessor(1, "fx", unit, []*Node{in}, []*Node{out})
	fill(in.Buffer(), 2)

	c, _ := newCycle([]*Node{in, proc, out}, nil)
	proc.Process(c)

	assert.Equal(t, -2.0, out.Buffer().Samples[blockSize-1])
	assert.Equal(t, []int32{0}, proc.Inputs())
	assert.Equal(t, []int32{2}, proc.Outputs())
}

func TestProcessor_FailureSilencesOutputs(t *testing.T) {
	tests := []struct {
		name string
		fn   func(pc *ProcessContext) error
	}{
		{
			name: "error",
			fn: func(pc *ProcessContext) error {
				fill(pc.Outputs[0], 1)
				return errors.New("plugin crashed")
			},
		},
		{
			name: "panic",
			fn: func(pc *ProcessContext) error {
				fill(pc.Outputs[0], 1)
				panic("index out of range")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := audioPort(t, 1, "fx", portid.Out)
			unit := &fnUnit{outs: []portid.SignalType{portid.Audio}, fn: tt.fn}
			proc := NewProcessor(0, "fx", unit, nil, []*Node{out})

			q := telemetry.NewQueue(1)
			c, _ := newCycle([]*Node{proc, out}, q)
			c.Time.Cycle = 9

			assert.NotPanics(t, func() { proc.Process(c) })
			assert.Equal(t, make([]float64, blockSize), out.Buffer().Samples)
			assert.Equal(t, uint64(1), q.Pushed())
		})
	}
}

func TestComplete_QueuesNodesWhenLastPredecessorFinishes(t *testing.T) {
	a := audioPort(t, 0, "a", portid.Out)
	b := audioPort(t, 1, "b", portid.Out)
	sum := audioPort(t, 2, "sum", portid.In)
	Link(a, sum)
	Link(b, sum)
	nodes := []*Node{a, b, sum}
	for _, n := range nodes {
		n.Reset()
	}

	c, ready := newCycle(nodes, nil)
	assert.Equal(t, int32(2), sum.Initial())

	a.Complete(c)
	assert.Equal(t, int32(1), sum.Pending())
	assert.Empty(t, ready)

	b.Complete(c)
	assert.Equal(t, int32(0), sum.Pending())
	require.Len(t, ready, 1)
	assert.Equal(t, int32(2), <-ready)
}

func TestDeclaredLatency(t *testing.T) {
	port := audioPort(t, 0, "a", portid.In)
	proc := NewProcessor(1, "p", &fnUnit{latency: 64}, nil, nil)
	neg := NewProcessor(2, "q", &fnUnit{latency: -3}, nil, nil)

	assert.Equal(t, 0, port.DeclaredLatency())
	assert.Equal(t, 64, proc.DeclaredLatency())
	assert.Equal(t, 0, neg.DeclaredLatency())
	assert.Equal(t, "processor", proc.Kind().String())
}
