package topology

import (
	"github.com/vk/dawgraph/internal/node"
	"github.com/vk/dawgraph/internal/portid"
)

// Processor is one processing entity of the project and the owner of its
// ports.
type Processor struct {
	// ID is the owner address shared by all of the processor's ports.
	ID string
	// Kind names the module that created the unit, e.g. "gain".
	Kind string
	// Unit is the processing implementation.
	Unit node.Unit
	// Inputs and Outputs are the processor's ports in declaration order.
	Inputs  []portid.ID
	Outputs []portid.ID
}

// Connection is a directed, typed edge from an output port to an input port.
type Connection struct {
	Src        portid.ID
	Dest       portid.ID
	Multiplier float64
	Enabled    bool
	Locked     bool
}

// Key identifies a connection by its endpoints.
type Key struct {
	Src  portid.ID
	Dest portid.ID
}

// Key returns the connection's endpoints.
func (c Connection) Key() Key {
	return Key{Src: c.Src, Dest: c.Dest}
}

// Snapshot is an immutable copy of a project's topology at one point in time.
type Snapshot struct {
	// Version is the project's edit counter when the snapshot was taken.
	Version uint64
	// Processors in insertion order.
	Processors []Processor
	// Connections in insertion order.
	Connections []Connection
}

// Port looks up which processor owns a port and whether the port exists.
func (s *Snapshot) Port(id portid.ID) (*Processor, bool) {
	for i := range s.Processors {
		p := &s.Processors[i]
		if p.ID != id.Owner {
			continue
		}
		ports := p.Inputs
		if id.Dir == portid.Out {
			ports = p.Outputs
		}
		for _, port := range ports {
			if port == id {
				return p, true
			}
		}
		return p, false
	}
	return nil, false
}
