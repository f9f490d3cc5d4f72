// Package passthrough provides a processor that copies each input to the
// matching output. It models buses and hardware I/O adapters: the master
// output of a session is a passthrough whose outputs nobody consumes.
package passthrough

import (
	"fmt"

	"github.com/vk/dawgraph/internal/node"
	"github.com/vk/dawgraph/internal/portid"
	"github.com/vk/dawgraph/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Params are the session parameters of a passthrough.
type Params struct {
	Type     string `param:"type"`
	Channels int    `param:"channels"`
}

// Unit copies inputs to outputs.
type Unit struct {
	ports []portid.SignalType
}

// New creates a passthrough.
func New(p Params) (*Unit, error) {
	typ, err := portid.ParseSignalType(p.Type)
	if err != nil {
		return nil, err
	}
	if p.Channels <= 0 {
		return nil, fmt.Errorf("channels must be positive: %d", p.Channels)
	}
	ports := make([]portid.SignalType, p.Channels)
	for i := range ports {
		ports[i] = typ
	}
	return &Unit{ports: ports}, nil
}

// Ports implements node.Unit.
func (u *Unit) Ports() ([]portid.SignalType, []portid.SignalType) {
	return u.ports, u.ports
}

// Latency implements node.Unit.
func (u *Unit) Latency() int { return 0 }

// Process implements node.Unit.
func (u *Unit) Process(pc *node.ProcessContext) error {
	for i, in := range pc.Inputs {
		pc.Outputs[i].CopyFrom(in, pc.Time.LocalOffset, pc.Time.NFrames)
	}
	return nil
}

// Register registers the processor kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterProcessor("passthrough", &registry.Processor{
		NewParams: func() any { return &Params{Type: "audio", Channels: 2} },
		New:       func(p any) (node.Unit, error) { return New(*p.(*Params)) },
	})
}
