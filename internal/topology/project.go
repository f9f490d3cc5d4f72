package topology

import (
	"fmt"
	"sync"

	"github.com/vk/dawgraph/internal/node"
	"github.com/vk/dawgraph/internal/portid"
	"github.com/vk/dawgraph/internal/signal"
)

// Project is a thread-safe, editable topology. All edits are validated so the
// project is acyclic at all times.
type Project struct {
	mu         sync.RWMutex
	version    uint64
	processors []*Processor
	byID       map[string]*Processor
	conns      []*Connection
	connIndex  map[Key]*Connection
}

// NewProject creates an empty project.
func NewProject() *Project {
	return &Project{
		byID:      make(map[string]*Processor),
		connIndex: make(map[Key]*Connection),
	}
}

// AddProcessor registers a processor and derives its port identifiers from
// the unit's declared ports. Ports of the same direction and signal type are
// numbered in declaration order.
func (p *Project) AddProcessor(id, kind string, unit node.Unit) (*Processor, error) {
	if unit == nil {
		return nil, fmt.Errorf("processor %q: unit cannot be nil", id)
	}
	ins, outs := unit.Ports()
	inputs, err := derivePorts(id, portid.In, ins)
	if err != nil {
		return nil, fmt.Errorf("processor %q: %w", id, err)
	}
	outputs, err := derivePorts(id, portid.Out, outs)
	if err != nil {
		return nil, fmt.Errorf("processor %q: %w", id, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byID[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateProcessor, id)
	}
	proc := &Processor{ID: id, Kind: kind, Unit: unit, Inputs: inputs, Outputs: outputs}
	p.processors = append(p.processors, proc)
	p.byID[id] = proc
	p.version++
	return proc, nil
}

func derivePorts(owner string, dir portid.Direction, types []portid.SignalType) ([]portid.ID, error) {
	counts := make(map[portid.SignalType]int)
	ids := make([]portid.ID, 0, len(types))
	for _, typ := range types {
		id, err := portid.New(owner, dir, typ, counts[typ])
		if err != nil {
			return nil, err
		}
		counts[typ]++
		ids = append(ids, id)
	}
	return ids, nil
}

// RemoveProcessor deletes a processor together with every connection that
// touches one of its ports.
func (p *Project) RemoveProcessor(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.byID[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProcessor, id)
	}
	delete(p.byID, id)
	for i, proc := range p.processors {
		if proc.ID == id {
			p.processors = append(p.processors[:i], p.processors[i+1:]...)
			break
		}
	}

	kept := p.conns[:0]
	for _, c := range p.conns {
		if c.Src.Owner == id || c.Dest.Owner == id {
			delete(p.connIndex, c.Key())
			continue
		}
		kept = append(kept, c)
	}
	p.conns = kept
	p.version++
	return nil
}

// Connect adds an enabled connection from src to dest.
func (p *Project) Connect(src, dest portid.ID, multiplier float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.validate(src, dest); err != nil {
		return fmt.Errorf("connect %s -> %s: %w", src, dest, err)
	}
	c := &Connection{Src: src, Dest: dest, Multiplier: multiplier, Enabled: true}
	p.conns = append(p.conns, c)
	p.connIndex[c.Key()] = c
	p.version++
	return nil
}

func (p *Project) validate(src, dest portid.ID) error {
	if src.Dir != portid.Out || dest.Dir != portid.In {
		return ErrDirection
	}
	if !p.hasPort(src) {
		return fmt.Errorf("%w: %s", ErrUnknownPort, src)
	}
	if !p.hasPort(dest) {
		return fmt.Errorf("%w: %s", ErrUnknownPort, dest)
	}
	if !signal.Compatible(src.Type, dest.Type) {
		return fmt.Errorf("%w: %s to %s", ErrIncompatible, src.Type, dest.Type)
	}
	if src.Owner == dest.Owner {
		return ErrSelfLoop
	}
	if _, exists := p.connIndex[Key{Src: src, Dest: dest}]; exists {
		return ErrExists
	}
	// Every input of a processor feeds every output, so a path from the
	// destination's owner back to the source's owner means a cycle.
	if p.reachable(dest.Owner, src.Owner) {
		return ErrCycle
	}
	return nil
}

func (p *Project) hasPort(id portid.ID) bool {
	proc, ok := p.byID[id.Owner]
	if !ok {
		return false
	}
	ports := proc.Inputs
	if id.Dir == portid.Out {
		ports = proc.Outputs
	}
	for _, port := range ports {
		if port == id {
			return true
		}
	}
	return false
}

// reachable reports whether target can be reached from start by following
// connections. Disabled connections count: enabling one later must not be
// able to close a cycle.
func (p *Project) reachable(start, target string) bool {
	visited := map[string]bool{start: true}
	stack := []string{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == target {
			return true
		}
		for _, c := range p.conns {
			if c.Src.Owner != cur || visited[c.Dest.Owner] {
				continue
			}
			visited[c.Dest.Owner] = true
			stack = append(stack, c.Dest.Owner)
		}
	}
	return false
}

// Disconnect removes the connection from src to dest.
func (p *Project) Disconnect(src, dest portid.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := Key{Src: src, Dest: dest}
	c, ok := p.connIndex[key]
	if !ok {
		return fmt.Errorf("disconnect %s -> %s: %w", src, dest, ErrNotConnected)
	}
	if c.Locked {
		return fmt.Errorf("disconnect %s -> %s: %w", src, dest, ErrLocked)
	}
	delete(p.connIndex, key)
	for i, existing := range p.conns {
		if existing == c {
			p.conns = append(p.conns[:i], p.conns[i+1:]...)
			break
		}
	}
	p.version++
	return nil
}

// SetEnabled turns a connection on or off.
func (p *Project) SetEnabled(src, dest portid.ID, enabled bool) error {
	return p.update(src, dest, func(c *Connection) { c.Enabled = enabled })
}

// SetMultiplier changes the gain a connection applies to its source.
func (p *Project) SetMultiplier(src, dest portid.ID, multiplier float64) error {
	return p.update(src, dest, func(c *Connection) { c.Multiplier = multiplier })
}

// SetLocked locks or unlocks a connection. Locking is always allowed, other
// edits to a locked connection are rejected.
func (p *Project) SetLocked(src, dest portid.ID, locked bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.connIndex[Key{Src: src, Dest: dest}]
	if !ok {
		return fmt.Errorf("lock %s -> %s: %w", src, dest, ErrNotConnected)
	}
	c.Locked = locked
	p.version++
	return nil
}

func (p *Project) update(src, dest portid.ID, f func(c *Connection)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.connIndex[Key{Src: src, Dest: dest}]
	if !ok {
		return fmt.Errorf("update %s -> %s: %w", src, dest, ErrNotConnected)
	}
	if c.Locked {
		return fmt.Errorf("update %s -> %s: %w", src, dest, ErrLocked)
	}
	f(c)
	p.version++
	return nil
}

// Processor returns the processor with the given ID.
func (p *Project) Processor(id string) (*Processor, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	proc, ok := p.byID[id]
	return proc, ok
}

// Connection returns a copy of the connection from src to dest.
func (p *Project) Connection(src, dest portid.ID) (Connection, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c, ok := p.connIndex[Key{Src: src, Dest: dest}]
	if !ok {
		return Connection{}, false
	}
	return *c, true
}

// Version returns the edit counter. It increases with every successful edit.
func (p *Project) Version() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.version
}

// Snapshot returns an immutable copy of the current topology.
func (p *Project) Snapshot() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := &Snapshot{
		Version:     p.version,
		Processors:  make([]Processor, 0, len(p.processors)),
		Connections: make([]Connection, 0, len(p.conns)),
	}
	for _, proc := range p.processors {
		cp := *proc
		cp.Inputs = append([]portid.ID(nil), proc.Inputs...)
		cp.Outputs = append([]portid.ID(nil), proc.Outputs...)
		s.Processors = append(s.Processors, cp)
	}
	for _, c := range p.conns {
		s.Connections = append(s.Connections, *c)
	}
	return s
}
