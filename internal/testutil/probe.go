package testutil

import (
	"sync"

	"github.com/vk/dawgraph/internal/node"
	"github.com/vk/dawgraph/internal/portid"
	"github.com/vk/dawgraph/internal/registry"
)

// Probe is a terminal test processor recording everything its single audio
// input receives, together with the playhead of each cycle.
type Probe struct {
	mu        sync.Mutex
	samples   []float64
	playheads []int64
}

// Ports implements node.Unit.
func (p *Probe) Ports() ([]portid.SignalType, []portid.SignalType) {
	return []portid.SignalType{portid.Audio}, nil
}

// Latency implements node.Unit.
func (p *Probe) Latency() int { return 0 }

// Process implements node.Unit.
func (p *Probe) Process(pc *node.ProcessContext) error {
	t := pc.Time
	p.mu.Lock()
	defer p.mu.Unlock()
	p.samples = append(p.samples, pc.Inputs[0].Samples[t.LocalOffset:t.LocalOffset+t.NFrames]...)
	p.playheads = append(p.playheads, t.Playhead)
	return nil
}

// Samples returns a copy of every sample received so far.
func (p *Probe) Samples() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]float64(nil), p.samples...)
}

// Playheads returns the playhead of every recorded cycle.
func (p *Probe) Playheads() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int64(nil), p.playheads...)
}

// ProbeModule registers the "probe" kind and keeps every probe it creates,
// in creation order.
type ProbeModule struct {
	mu     sync.Mutex
	probes []*Probe
}

// Register implements registry.Module.
func (m *ProbeModule) Register(r *registry.Registry) {
	r.RegisterProcessor("probe", &registry.Processor{
		NewParams: func() any { return &struct{}{} },
		New: func(any) (node.Unit, error) {
			p := &Probe{}
			m.mu.Lock()
			m.probes = append(m.probes, p)
			m.mu.Unlock()
			return p, nil
		},
	})
}

// Last returns the most recently created probe, nil if none.
func (m *ProbeModule) Last() *Probe {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.probes) == 0 {
		return nil
	}
	return m.probes[len(m.probes)-1]
}
