package graph

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/vk/dawgraph/internal/node"
	"github.com/vk/dawgraph/internal/portid"
	"github.com/vk/dawgraph/internal/signal"
	"github.com/vk/dawgraph/internal/telemetry"
)

// Graph is an immutable processing graph built from one topology snapshot.
type Graph struct {
	id      uuid.UUID
	version uint64

	nodes     []*node.Node
	preds     [][]int32
	triggers  []int32
	terminals []int32
	order     []int32
	ports     map[portid.ID]int32
	procs     map[string]int32

	blockSize int
	eventCap  int

	plan atomic.Pointer[Plan]

	// Per-cycle state, written by Begin on the thread that starts the cycle.
	ready     chan int32
	processed atomic.Int32
	cycle     node.Cycle
}

// ID returns the unique ID assigned to this graph instance.
func (g *Graph) ID() uuid.UUID { return g.id }

// Version returns the topology version the graph was built from.
func (g *Graph) Version() uint64 { return g.version }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node at arena index i.
func (g *Graph) Node(i int32) *node.Node { return g.nodes[i] }

// Nodes returns the arena. It must not be modified.
func (g *Graph) Nodes() []*node.Node { return g.nodes }

// Predecessors returns the arena indices of the nodes i depends on.
func (g *Graph) Predecessors(i int32) []int32 { return g.preds[i] }

// Triggers returns the nodes without predecessors, in arena order.
func (g *Graph) Triggers() []int32 { return g.triggers }

// Terminals returns the nodes without dependents, in arena order.
func (g *Graph) Terminals() []int32 { return g.terminals }

// Order returns a topological order of the arena.
func (g *Graph) Order() []int32 { return g.order }

// BlockSize returns the largest number of frames a cycle may process.
func (g *Graph) BlockSize() int { return g.blockSize }

// PortNode returns the arena index of a port.
func (g *Graph) PortNode(id portid.ID) (int32, bool) {
	i, ok := g.ports[id]
	return i, ok
}

// ProcessorNode returns the arena index of a processor.
func (g *Graph) ProcessorNode(id string) (int32, bool) {
	i, ok := g.procs[id]
	return i, ok
}

// Buffer returns the buffer of a port. It is only safe to read between
// cycles.
func (g *Graph) Buffer(id portid.ID) (*signal.Buffer, bool) {
	i, ok := g.ports[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i].Buffer(), true
}

// Begin prepares a new cycle: it resets every pending counter, loads the
// current latency plan and seeds the ready queue with the trigger set. It
// must not be called while a cycle on g is in progress.
func (g *Graph) Begin(ti node.TimeInfo, reports *telemetry.Queue) {
	for _, n := range g.nodes {
		n.Reset()
	}
	g.cycle.Time = ti
	g.cycle.Compensation = g.plan.Load().Compensation
	g.cycle.Reports = reports
	// Publishes the writes above to any thread that observes processed < Len.
	g.processed.Store(0)
	for _, t := range g.triggers {
		g.ready <- t
	}
}

// Step processes one ready node, if there is one, and reports whether it
// did. Safe for concurrent use by every thread taking part in the cycle.
func (g *Graph) Step() bool {
	select {
	case i := <-g.ready:
		n := g.nodes[i]
		n.Process(&g.cycle)
		n.Complete(&g.cycle)
		g.processed.Add(1)
		return true
	default:
		return false
	}
}

// Done reports whether every node has been processed in the current cycle.
func (g *Graph) Done() bool {
	return int(g.processed.Load()) >= len(g.nodes)
}

// Processed returns the number of nodes processed in the current cycle.
func (g *Graph) Processed() int {
	return int(g.processed.Load())
}
