// Package latency provides a processor that delays audio by a fixed number
// of frames and declares that delay as its latency, like a look-ahead
// limiter or a linear-phase plugin would.
package latency

import (
	"fmt"

	"github.com/vk/dawgraph/internal/node"
	"github.com/vk/dawgraph/internal/portid"
	"github.com/vk/dawgraph/internal/registry"
	"github.com/vk/dawgraph/internal/signal"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Params are the session parameters of a latency processor.
type Params struct {
	Frames   int `param:"frames"`
	Channels int `param:"channels"`
}

// Unit delays every channel by Frames.
type Unit struct {
	frames int
	lines  []*signal.Delay
}

// New creates a latency unit.
func New(p Params) (*Unit, error) {
	if p.Frames < 0 {
		return nil, fmt.Errorf("frames cannot be negative: %d", p.Frames)
	}
	if p.Channels <= 0 {
		return nil, fmt.Errorf("channels must be positive: %d", p.Channels)
	}
	u := &Unit{frames: p.Frames, lines: make([]*signal.Delay, p.Channels)}
	if p.Frames == 0 {
		return u, nil
	}
	for i := range u.lines {
		d, err := signal.NewDelay(portid.Audio, p.Frames, 0)
		if err != nil {
			return nil, err
		}
		u.lines[i] = d
	}
	return u, nil
}

// Ports implements node.Unit.
func (u *Unit) Ports() ([]portid.SignalType, []portid.SignalType) {
	ports := make([]portid.SignalType, len(u.lines))
	for i := range ports {
		ports[i] = portid.Audio
	}
	return ports, ports
}

// Latency implements node.Unit.
func (u *Unit) Latency() int { return u.frames }

// Process implements node.Unit.
func (u *Unit) Process(pc *node.ProcessContext) error {
	off, n := pc.Time.LocalOffset, pc.Time.NFrames
	for i, line := range u.lines {
		pc.Outputs[i].CopyFrom(pc.Inputs[i], off, n)
		if line != nil {
			line.Apply(pc.Outputs[i], off, n)
		}
	}
	return nil
}

// Register registers the processor kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterProcessor("latency", &registry.Processor{
		NewParams: func() any { return &Params{Channels: 1} },
		New:       func(p any) (node.Unit, error) { return New(*p.(*Params)) },
	})
}
