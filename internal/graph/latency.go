package graph

import (
	"slices"

	"github.com/vk/dawgraph/internal/node"
	"github.com/vk/dawgraph/internal/portid"
)

// Plan holds the latency figures of a graph. A Plan is never modified after
// it is published.
type Plan struct {
	// Declared is each node's own latency.
	Declared []int
	// Upstream is the latency accumulated up to and including each node. The
	// input ports of a processor all share the latency of its slowest input.
	Upstream []int
	// Compensation holds, for each input port, one entry per source
	// connection in node.Sources order; nil where no delay is needed.
	Compensation [][]*node.Compensation
	// MaxPlaybackLatency is the largest Upstream of any terminal node.
	MaxPlaybackLatency int
}

// Plan returns the current latency plan.
func (g *Graph) Plan() *Plan {
	return g.plan.Load()
}

// MaxPlaybackLatency returns the largest latency accumulated on any path from
// a trigger to a terminal.
func (g *Graph) MaxPlaybackLatency() int {
	return g.plan.Load().MaxPlaybackLatency
}

// UpdateLatencies re-reads every processor's declared latency and publishes a
// new plan if any figure changed. The topology is left untouched. Delays
// whose length is unchanged carry over with their history.
func (g *Graph) UpdateLatencies() (bool, error) {
	cur := g.plan.Load()
	if slices.Equal(cur.Declared, g.declared()) {
		return false, nil
	}
	next, err := g.computePlan(cur)
	if err != nil {
		return false, err
	}
	g.plan.Store(next)
	return true, nil
}

func (g *Graph) declared() []int {
	d := make([]int, len(g.nodes))
	for i, nd := range g.nodes {
		d[i] = nd.DeclaredLatency()
	}
	return d
}

func (g *Graph) computePlan(prev *Plan) (*Plan, error) {
	n := len(g.nodes)
	p := &Plan{
		Declared:     g.declared(),
		Upstream:     make([]int, n),
		Compensation: make([][]*node.Compensation, n),
	}

	// Input ports are visited before their processor and get a provisional
	// figure; the processor then lifts all of them to its slowest input.
	for _, i := range g.order {
		nd := g.nodes[i]
		if nd.Kind() == node.ProcessorKind {
			arrival := 0
			for _, in := range nd.Inputs() {
				for _, src := range g.preds[in] {
					arrival = max(arrival, p.Upstream[src])
				}
			}
			for _, in := range nd.Inputs() {
				p.Upstream[in] = arrival
			}
			p.Upstream[i] = p.Declared[i] + arrival
			continue
		}
		for _, pred := range g.preds[i] {
			p.Upstream[i] = max(p.Upstream[i], p.Upstream[pred])
		}
	}

	for _, t := range g.terminals {
		p.MaxPlaybackLatency = max(p.MaxPlaybackLatency, p.Upstream[t])
	}

	for i, nd := range g.nodes {
		if nd.Kind() != node.PortKind || nd.Port().Dir != portid.In {
			continue
		}
		for k, s := range nd.Sources() {
			frames := p.Upstream[i] - p.Upstream[s.Node]
			if frames <= 0 {
				continue
			}
			if p.Compensation[i] == nil {
				p.Compensation[i] = make([]*node.Compensation, len(nd.Sources()))
			}
			if c := prev.compensation(int32(i), k); c != nil && c.Frames() == frames {
				p.Compensation[i][k] = c
				continue
			}
			c, err := node.NewCompensation(g.nodes[s.Node].Port().Type, frames, g.blockSize, g.eventCap)
			if err != nil {
				return nil, err
			}
			p.Compensation[i][k] = c
		}
	}
	return p, nil
}

func (p *Plan) compensation(port int32, source int) *node.Compensation {
	if p == nil || p.Compensation[port] == nil {
		return nil
	}
	return p.Compensation[port][source]
}

// Latency returns the latency accumulated up to a port.
func (g *Graph) Latency(id portid.ID) (int, bool) {
	i, ok := g.ports[id]
	if !ok {
		return 0, false
	}
	return g.plan.Load().Upstream[i], true
}

// Compensation returns the delay applied to the enabled connection from src
// to dest. It reports false if no such connection is part of the graph.
func (g *Graph) Compensation(src, dest portid.ID) (int, bool) {
	si, ok := g.ports[src]
	if !ok {
		return 0, false
	}
	di, ok := g.ports[dest]
	if !ok {
		return 0, false
	}
	for k, s := range g.nodes[di].Sources() {
		if s.Node != si {
			continue
		}
		if c := g.plan.Load().compensation(di, k); c != nil {
			return c.Frames(), true
		}
		return 0, true
	}
	return 0, false
}
