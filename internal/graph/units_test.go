package graph

import (
	"sync/atomic"

	"github.com/vk/dawgraph/internal/node"
	"github.com/vk/dawgraph/internal/portid"
	"github.com/vk/dawgraph/internal/signal"
)

var (
	audio1 = []portid.SignalType{portid.Audio}
	audio2 = []portid.SignalType{portid.Audio, portid.Audio}
)

// source writes fn(absolute frame) to its only output.
type source struct {
	fn    func(frame int64) float64
	calls atomic.Int64
}

func (u *source) Ports() ([]portid.SignalType, []portid.SignalType) { return nil, audio1 }
func (u *source) Latency() int                                       { return 0 }
func (u *source) Process(pc *node.ProcessContext) error {
	u.calls.Add(1)
	out := pc.Outputs[0].Samples
	for i := range pc.Time.NFrames {
		out[pc.Time.LocalOffset+i] = u.fn(pc.Time.Playhead + int64(i))
	}
	return nil
}

func constant(v float64) *source {
	return &source{fn: func(int64) float64 { return v }}
}

func impulse() *source {
	return &source{fn: func(f int64) float64 {
		if f == 0 {
			return 1
		}
		return 0
	}}
}

// delayer copies its input to its output delayed by latency frames and
// declares that latency.
type delayer struct {
	latency atomic.Int64
	line    *signal.Delay
}

func newDelayer(frames int) *delayer {
	d := &delayer{}
	d.latency.Store(int64(frames))
	if frames > 0 {
		d.line, _ = signal.NewDelay(portid.Audio, frames, 0)
	}
	return d
}

func (u *delayer) Ports() ([]portid.SignalType, []portid.SignalType) { return audio1, audio1 }
func (u *delayer) Latency() int                                       { return int(u.latency.Load()) }
func (u *delayer) Process(pc *node.ProcessContext) error {
	off, n := pc.Time.LocalOffset, pc.Time.NFrames
	pc.Outputs[0].CopyFrom(pc.Inputs[0], off, n)
	if u.line != nil {
		u.line.Apply(pc.Outputs[0], off, n)
	}
	return nil
}

// sink is a terminal processor with two audio inputs.
type sink struct {
	calls atomic.Int64
}

func (u *sink) Ports() ([]portid.SignalType, []portid.SignalType) { return audio2, nil }
func (u *sink) Latency() int                                       { return 0 }
func (u *sink) Process(*node.ProcessContext) error {
	u.calls.Add(1)
	return nil
}
