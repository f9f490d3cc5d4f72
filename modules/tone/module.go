// Package tone provides a sine generator, used as a stand-in for a track
// playing back audio.
package tone

import (
	"fmt"
	"math"

	"github.com/vk/dawgraph/internal/node"
	"github.com/vk/dawgraph/internal/portid"
	"github.com/vk/dawgraph/internal/registry"
)

// DefaultSampleRate is assumed when a cycle carries no sample rate.
const DefaultSampleRate = 48000

// Module implements the registry.Module interface for this package.
type Module struct{}

// Params are the session parameters of a tone processor.
type Params struct {
	Frequency float64 `param:"frequency"`
	Amplitude float64 `param:"amplitude"`
}

// Unit writes a sine wave whose phase follows the transport position, so the
// output only depends on the playhead.
type Unit struct {
	freq, amp float64
}

// New creates a tone unit.
func New(p Params) (*Unit, error) {
	if p.Frequency <= 0 {
		return nil, fmt.Errorf("frequency must be positive: %g", p.Frequency)
	}
	return &Unit{freq: p.Frequency, amp: p.Amplitude}, nil
}

// Sample returns the value at transport frame f.
func (u *Unit) Sample(f int64, sampleRate int) float64 {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return u.amp * math.Sin(2*math.Pi*u.freq*float64(f)/float64(sampleRate))
}

// Ports implements node.Unit.
func (u *Unit) Ports() ([]portid.SignalType, []portid.SignalType) {
	return nil, []portid.SignalType{portid.Audio}
}

// Latency implements node.Unit.
func (u *Unit) Latency() int { return 0 }

// Process implements node.Unit.
func (u *Unit) Process(pc *node.ProcessContext) error {
	t := pc.Time
	out := pc.Outputs[0].Samples[t.LocalOffset : t.LocalOffset+t.NFrames]
	for i := range out {
		out[i] = u.Sample(t.Playhead+int64(i), t.SampleRate)
	}
	return nil
}

// Register registers the processor kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterProcessor("tone", &registry.Processor{
		NewParams: func() any { return &Params{Frequency: 440, Amplitude: 0.5} },
		New:       func(p any) (node.Unit, error) { return New(*p.(*Params)) },
	})
}
