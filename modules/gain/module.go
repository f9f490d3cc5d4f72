// Package gain provides a fader: it scales an audio signal by a gain that
// can be changed while the engine runs, optionally modulated by a control
// input.
package gain

import (
	"math"
	"sync/atomic"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/vk/dawgraph/internal/node"
	"github.com/vk/dawgraph/internal/portid"
	"github.com/vk/dawgraph/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Params are the session parameters of a gain processor.
type Params struct {
	// Gain is the linear gain factor.
	Gain float64 `param:"gain"`
	// Modulated adds a control input whose value multiplies Gain.
	Modulated bool `param:"modulated"`
}

// Unit is a gain processor.
type Unit struct {
	gain      atomic.Uint64
	modulated bool
}

// New creates a gain unit.
func New(p Params) *Unit {
	u := &Unit{modulated: p.Modulated}
	u.SetGain(p.Gain)
	return u
}

// SetGain changes the gain from any thread; the next cycle picks it up.
func (u *Unit) SetGain(g float64) {
	u.gain.Store(math.Float64bits(g))
}

// Gain returns the current gain.
func (u *Unit) Gain() float64 {
	return math.Float64frombits(u.gain.Load())
}

// Ports implements node.Unit.
func (u *Unit) Ports() ([]portid.SignalType, []portid.SignalType) {
	ins := []portid.SignalType{portid.Audio}
	if u.modulated {
		ins = append(ins, portid.Control)
	}
	return ins, []portid.SignalType{portid.Audio}
}

// Latency implements node.Unit.
func (u *Unit) Latency() int { return 0 }

// Process implements node.Unit.
func (u *Unit) Process(pc *node.ProcessContext) error {
	g := u.Gain()
	if u.modulated {
		g *= pc.Inputs[1].Value
	}
	lo, hi := pc.Time.LocalOffset, pc.Time.LocalOffset+pc.Time.NFrames
	vecmath.ScaleBlock(pc.Outputs[0].Samples[lo:hi], pc.Inputs[0].Samples[lo:hi], g)
	return nil
}

// Register registers the processor kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterProcessor("gain", &registry.Processor{
		NewParams: func() any { return &Params{Gain: 1} },
		New:       func(p any) (node.Unit, error) { return New(*p.(*Params)), nil },
	})
}
