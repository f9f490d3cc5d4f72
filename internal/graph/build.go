package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vk/dawgraph/internal/ctxlog"
	"github.com/vk/dawgraph/internal/node"
	"github.com/vk/dawgraph/internal/portid"
	"github.com/vk/dawgraph/internal/signal"
	"github.com/vk/dawgraph/internal/topology"
)

// Options sizes the buffers of a graph.
type Options struct {
	// BlockSize is the largest number of frames a cycle may process.
	BlockSize int
	// EventCapacity bounds each event port; zero selects the default.
	EventCapacity int
}

// Build creates a graph from snap. It fails with a *BuildError if the
// snapshot contains a cycle, an unknown or incompatible connection, or no
// trigger node.
func Build(ctx context.Context, snap *topology.Snapshot, opts Options) (*Graph, error) {
	if opts.BlockSize <= 0 {
		return nil, &BuildError{Kind: KindInvalid, Err: fmt.Errorf("block size must be positive, got %d", opts.BlockSize)}
	}
	if opts.EventCapacity <= 0 {
		opts.EventCapacity = signal.DefaultEventCapacity
	}
	logger := ctxlog.FromContext(ctx)

	b := &builder{
		opts:  opts,
		ports: make(map[portid.ID]int32),
		procs: make(map[string]int32),
		edges: make(map[[2]int32]struct{}),
	}
	b.addProcessors(snap.Processors)
	if err := b.addConnections(snap.Connections); err != nil {
		return nil, err
	}

	g := &Graph{
		id:        uuid.New(),
		version:   snap.Version,
		nodes:     b.nodes,
		preds:     b.preds,
		ports:     b.ports,
		procs:     b.procs,
		blockSize: opts.BlockSize,
		eventCap:  opts.EventCapacity,
		ready:     make(chan int32, len(b.nodes)),
	}
	for i, n := range g.nodes {
		if n.Initial() == 0 {
			g.triggers = append(g.triggers, int32(i))
		}
		if len(n.Outgoing()) == 0 {
			g.terminals = append(g.terminals, int32(i))
		}
	}
	if len(g.nodes) > 0 && len(g.triggers) == 0 {
		return nil, &BuildError{Kind: KindNoTriggers, Err: ErrNoTriggers}
	}
	if err := g.detectCycles(); err != nil {
		return nil, err
	}
	g.order = g.topologicalOrder()

	plan, err := g.computePlan(nil)
	if err != nil {
		return nil, &BuildError{Kind: KindInvalid, Err: err}
	}
	g.plan.Store(plan)
	g.cycle = node.Cycle{Nodes: g.nodes, Compensation: plan.Compensation, Ready: g.ready}

	logger.Debug("Graph built.",
		"graph", g.id,
		"version", g.version,
		"nodes", len(g.nodes),
		"triggers", len(g.triggers),
		"terminals", len(g.terminals),
		"max_playback_latency", plan.MaxPlaybackLatency,
	)
	return g, nil
}

type builder struct {
	opts  Options
	nodes []*node.Node
	preds [][]int32
	ports map[portid.ID]int32
	procs map[string]int32
	edges map[[2]int32]struct{}
}

func (b *builder) add(n *node.Node) *node.Node {
	b.nodes = append(b.nodes, n)
	b.preds = append(b.preds, nil)
	return n
}

func (b *builder) addPort(id portid.ID) *node.Node {
	idx := int32(len(b.nodes))
	b.ports[id] = idx
	return b.add(node.NewPort(idx, id, signal.New(id.Type, b.opts.BlockSize, b.opts.EventCapacity)))
}

// link adds from -> to once; it reports false if the edge already existed.
func (b *builder) link(from, to *node.Node) bool {
	key := [2]int32{from.Index(), to.Index()}
	if _, ok := b.edges[key]; ok {
		return false
	}
	b.edges[key] = struct{}{}
	node.Link(from, to)
	b.preds[to.Index()] = append(b.preds[to.Index()], from.Index())
	return true
}

func (b *builder) addProcessors(procs []topology.Processor) {
	for _, p := range procs {
		ins := make([]*node.Node, len(p.Inputs))
		for i, id := range p.Inputs {
			ins[i] = b.addPort(id)
		}

		idx := int32(len(b.nodes))
		b.nodes = append(b.nodes, nil)
		b.preds = append(b.preds, nil)

		outs := make([]*node.Node, len(p.Outputs))
		for i, id := range p.Outputs {
			outs[i] = b.addPort(id)
		}

		proc := node.NewProcessor(idx, p.ID, p.Unit, ins, outs)
		b.nodes[idx] = proc
		b.procs[p.ID] = idx
		for _, in := range ins {
			b.link(in, proc)
		}
		for _, out := range outs {
			b.link(proc, out)
		}
	}
}

func (b *builder) addConnections(conns []topology.Connection) error {
	for _, c := range conns {
		if !c.Enabled {
			continue
		}
		srcIdx, ok := b.ports[c.Src]
		if !ok {
			return &BuildError{Kind: KindUnknownPort, Node: c.Src.String(), Err: ErrUnknownPort}
		}
		destIdx, ok := b.ports[c.Dest]
		if !ok {
			return &BuildError{Kind: KindUnknownPort, Node: c.Dest.String(), Err: ErrUnknownPort}
		}
		if c.Src.Dir != portid.Out || c.Dest.Dir != portid.In {
			return &BuildError{
				Kind: KindIncompatible,
				Node: c.Dest.String(),
				Err:  fmt.Errorf("%w: %s feeds %s", ErrIncompatible, c.Src.Dir, c.Dest.Dir),
			}
		}
		if !signal.Compatible(c.Src.Type, c.Dest.Type) {
			return &BuildError{
				Kind: KindIncompatible,
				Node: c.Dest.String(),
				Err:  fmt.Errorf("%w: %s to %s", ErrIncompatible, c.Src.Type, c.Dest.Type),
			}
		}
		src, dest := b.nodes[srcIdx], b.nodes[destIdx]
		b.link(src, dest)
		dest.AddSource(srcIdx, c.Multiplier)
	}
	return nil
}

// detectCycles runs a depth-first search from every node in arena order and
// reports the first node found on a cycle.
func (g *Graph) detectCycles() error {
	const (
		unvisited = iota
		temporary
		permanent
	)
	state := make([]uint8, len(g.nodes))

	var visit func(i int32) error
	visit = func(i int32) error {
		switch state[i] {
		case permanent:
			return nil
		case temporary:
			return &BuildError{Kind: KindCycle, Node: g.nodes[i].Name(), Err: ErrCycle}
		}
		state[i] = temporary
		for _, next := range g.nodes[i].Outgoing() {
			if err := visit(next); err != nil {
				return err
			}
		}
		state[i] = permanent
		return nil
	}

	for i := range g.nodes {
		if err := visit(int32(i)); err != nil {
			return err
		}
	}
	return nil
}

// topologicalOrder returns the nodes in Kahn order, seeded by the triggers.
// The graph must be acyclic.
func (g *Graph) topologicalOrder() []int32 {
	remaining := make([]int32, len(g.nodes))
	for i, n := range g.nodes {
		remaining[i] = n.Initial()
	}
	order := make([]int32, 0, len(g.nodes))
	order = append(order, g.triggers...)
	for head := 0; head < len(order); head++ {
		for _, next := range g.nodes[order[head]].Outgoing() {
			remaining[next]--
			if remaining[next] == 0 {
				order = append(order, next)
			}
		}
	}
	return order
}
