package node

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/vk/dawgraph/internal/portid"
	"github.com/vk/dawgraph/internal/signal"
	"github.com/vk/dawgraph/internal/telemetry"
)

// Kind distinguishes the two node variants.
type Kind uint8

const (
	// PortKind nodes combine incoming connections into their buffer.
	PortKind Kind = iota
	// ProcessorKind nodes run a Unit over already-filled input ports.
	ProcessorKind
)

func (k Kind) String() string {
	if k == PortKind {
		return "port"
	}
	return "processor"
}

// Source is one enabled incoming connection of an input port.
type Source struct {
	// Node is the arena index of the source output port.
	Node       int32
	Multiplier float64
}

// Node is a single vertex of the processing graph. Nodes live in an arena and
// refer to each other by index; they are immutable for the lifetime of the
// graph that built them except for the pending counter.
type Node struct {
	kind  Kind
	index int32
	// name is the port's canonical ID or the processor ID.
	name string

	// outgoing holds the arena indices of dependent nodes, in build order.
	outgoing []int32
	// initial is the number of distinct predecessors.
	initial int32
	// pending counts predecessors that have not completed in this cycle.
	pending atomic.Int32

	// Port fields.
	port    portid.ID
	buffer  *signal.Buffer
	sources []Source

	// Processor fields.
	unit    Unit
	pc      *ProcessContext
	inputs  []int32
	outputs []int32
}

// NewPort creates a port node owning buf.
func NewPort(index int32, id portid.ID, buf *signal.Buffer) *Node {
	return &Node{
		kind:   PortKind,
		index:  index,
		name:   id.String(),
		port:   id,
		buffer: buf,
	}
}

// NewProcessor creates a processor node running unit. inputs and outputs are
// the arena indices of the processor's port nodes in declaration order.
func NewProcessor(index int32, name string, unit Unit, inputs, outputs []*Node) *Node {
	n := &Node{
		kind:    ProcessorKind,
		index:   index,
		name:    name,
		unit:    unit,
		pc:      &ProcessContext{},
		inputs:  make([]int32, len(inputs)),
		outputs: make([]int32, len(outputs)),
	}
	n.pc.Inputs = make([]*signal.Buffer, len(inputs))
	n.pc.Outputs = make([]*signal.Buffer, len(outputs))
	for i, in := range inputs {
		n.inputs[i] = in.index
		n.pc.Inputs[i] = in.buffer
	}
	for i, out := range outputs {
		n.outputs[i] = out.index
		n.pc.Outputs[i] = out.buffer
	}
	return n
}

// Link adds the dependency edge from -> to. Callers must not link the same
// pair twice.
func Link(from, to *Node) {
	from.outgoing = append(from.outgoing, to.index)
	to.initial++
}

// AddSource registers an incoming connection on an input port.
func (n *Node) AddSource(src int32, multiplier float64) {
	n.sources = append(n.sources, Source{Node: src, Multiplier: multiplier})
}

// Kind returns the node variant.
func (n *Node) Kind() Kind { return n.kind }

// Index returns the node's arena index.
func (n *Node) Index() int32 { return n.index }

// Name returns the port ID string or the processor ID.
func (n *Node) Name() string { return n.name }

// Port returns the port identifier. It is the zero ID for processors.
func (n *Node) Port() portid.ID { return n.port }

// Buffer returns the port's buffer, nil for processors.
func (n *Node) Buffer() *signal.Buffer { return n.buffer }

// Unit returns the wrapped unit, nil for ports.
func (n *Node) Unit() Unit { return n.unit }

// Sources returns the port's incoming connections.
func (n *Node) Sources() []Source { return n.sources }

// Inputs returns the arena indices of a processor's input ports.
func (n *Node) Inputs() []int32 { return n.inputs }

// Outputs returns the arena indices of a processor's output ports.
func (n *Node) Outputs() []int32 { return n.outputs }

// Outgoing returns the arena indices of dependent nodes.
func (n *Node) Outgoing() []int32 { return n.outgoing }

// Initial returns the number of distinct predecessors.
func (n *Node) Initial() int32 { return n.initial }

// Pending returns the number of predecessors still to complete this cycle.
func (n *Node) Pending() int32 { return n.pending.Load() }

// DeclaredLatency returns the latency the node itself introduces: zero for
// ports, the unit's reported latency for processors.
func (n *Node) DeclaredLatency() int {
	if n.kind == ProcessorKind {
		if l := n.unit.Latency(); l > 0 {
			return l
		}
	}
	return 0
}

// Reset restores the pending counter for a new cycle.
func (n *Node) Reset() {
	n.pending.Store(n.initial)
}

// Cycle is the state shared by every node of a graph during one cycle.
type Cycle struct {
	Time TimeInfo
	// Nodes is the graph's arena.
	Nodes []*Node
	// Compensation holds, for each input port, one entry per source in
	// Sources order. Rows and entries are nil where no delay is needed.
	Compensation [][]*Compensation
	// Ready receives nodes whose predecessors have all completed. It must
	// have room for every node of the graph.
	Ready   chan<- int32
	Reports *telemetry.Queue
}

// Process runs the node for the current cycle.
func (n *Node) Process(c *Cycle) {
	if n.kind == PortKind {
		n.processPort(c)
		return
	}
	n.processProcessor(c)
}

func (n *Node) processPort(c *Cycle) {
	offset, nframes := c.Time.LocalOffset, c.Time.NFrames
	dropped := 0
	if n.port.Dir == portid.In {
		var comp []*Compensation
		if c.Compensation != nil {
			comp = c.Compensation[n.index]
		}
		n.buffer.Clear(offset, nframes)
		for k, s := range n.sources {
			src := c.Nodes[s.Node].buffer
			if k < len(comp) && comp[k] != nil {
				src = comp[k].apply(src, offset, nframes)
				dropped += comp[k].dropped()
			}
			n.buffer.Mix(src, s.Multiplier, offset, nframes)
		}
	}
	if dropped += n.buffer.Dropped(); dropped > 0 {
		c.Reports.Push(telemetry.Report{
			Kind:    telemetry.EventOverflow,
			Source:  n.name,
			Cycle:   c.Time.Cycle,
			Dropped: dropped,
			At:      time.Now(),
		})
	}
}

func (n *Node) processProcessor(c *Cycle) {
	offset, nframes := c.Time.LocalOffset, c.Time.NFrames
	n.pc.Time = c.Time
	for _, out := range n.pc.Outputs {
		out.Clear(offset, nframes)
	}
	if err := n.runUnit(); err != nil {
		for _, out := range n.pc.Outputs {
			out.Clear(offset, nframes)
		}
		c.Reports.Push(telemetry.Report{
			Kind:   telemetry.ProcessorFailure,
			Source: n.name,
			Cycle:  c.Time.Cycle,
			Err:    err,
			At:     time.Now(),
		})
	}
}

func (n *Node) runUnit() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return n.unit.Process(n.pc)
}

// Complete signals every dependent node that n has finished. A dependent
// whose last predecessor this was is pushed on the ready queue.
func (n *Node) Complete(c *Cycle) {
	for _, idx := range n.outgoing {
		if c.Nodes[idx].pending.Add(-1) == 0 {
			c.Ready <- idx
		}
	}
}
