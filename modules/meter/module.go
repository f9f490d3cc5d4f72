// Package meter provides a peak meter. It is a terminal processor: it reads
// its input and publishes the level for non real-time readers.
package meter

import (
	"math"
	"sync/atomic"

	"github.com/vk/dawgraph/internal/node"
	"github.com/vk/dawgraph/internal/portid"
	"github.com/vk/dawgraph/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Params are the session parameters of a meter.
type Params struct{}

// Unit measures the peak of its input.
type Unit struct {
	peak atomic.Uint64
	hold atomic.Uint64
}

// New creates a meter.
func New() *Unit {
	return &Unit{}
}

// Ports implements node.Unit.
func (u *Unit) Ports() ([]portid.SignalType, []portid.SignalType) {
	return []portid.SignalType{portid.Audio}, nil
}

// Latency implements node.Unit.
func (u *Unit) Latency() int { return 0 }

// Process implements node.Unit.
func (u *Unit) Process(pc *node.ProcessContext) error {
	p := pc.Inputs[0].Peak(pc.Time.LocalOffset, pc.Time.NFrames)
	u.peak.Store(math.Float64bits(p))
	if p > math.Float64frombits(u.hold.Load()) {
		u.hold.Store(math.Float64bits(p))
	}
	return nil
}

// Peak returns the peak of the most recent cycle.
func (u *Unit) Peak() float64 {
	return math.Float64frombits(u.peak.Load())
}

// Hold returns the highest peak seen since the last ResetHold.
func (u *Unit) Hold() float64 {
	return math.Float64frombits(u.hold.Load())
}

// ResetHold clears the peak hold.
func (u *Unit) ResetHold() {
	u.hold.Store(0)
}

// Register registers the processor kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterProcessor("meter", &registry.Processor{
		NewParams: func() any { return &Params{} },
		New:       func(any) (node.Unit, error) { return New(), nil },
	})
}
