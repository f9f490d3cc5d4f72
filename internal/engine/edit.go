package engine

import (
	"context"
	"fmt"

	"github.com/vk/dawgraph/internal/node"
	"github.com/vk/dawgraph/internal/portid"
	"github.com/vk/dawgraph/internal/topology"
)

// The edit methods change the project and rebuild the graph before
// returning, so the next cycle sees the change. Edits that make the rebuild
// fail are rolled back where the project allows it.

// AddProcessor adds a processor to the project.
func (e *Engine) AddProcessor(ctx context.Context, id, kind string, unit node.Unit) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.project.AddProcessor(id, kind, unit); err != nil {
		return err
	}
	if err := e.Recalc(ctx, false); err != nil {
		_ = e.project.RemoveProcessor(id)
		return fmt.Errorf("add processor %s: %w", id, err)
	}
	return nil
}

// RemoveProcessor removes a processor and its connections.
func (e *Engine) RemoveProcessor(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.project.RemoveProcessor(id); err != nil {
		return err
	}
	return e.Recalc(ctx, false)
}

// Connect connects two ports given in canonical form.
func (e *Engine) Connect(ctx context.Context, src, dest string, multiplier float64) error {
	s, d, err := parsePair(src, dest)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.project.Connect(s, d, multiplier); err != nil {
		return err
	}
	if err := e.Recalc(ctx, false); err != nil {
		_ = e.project.Disconnect(s, d)
		return fmt.Errorf("connect %s -> %s: %w", src, dest, err)
	}
	return nil
}

// Disconnect removes a connection.
func (e *Engine) Disconnect(ctx context.Context, src, dest string) error {
	return e.editConnection(ctx, src, dest, func(p *topology.Project, s, d portid.ID) error {
		return p.Disconnect(s, d)
	})
}

// SetEnabled turns a connection on or off.
func (e *Engine) SetEnabled(ctx context.Context, src, dest string, enabled bool) error {
	return e.editConnection(ctx, src, dest, func(p *topology.Project, s, d portid.ID) error {
		return p.SetEnabled(s, d, enabled)
	})
}

// SetMultiplier changes a connection's gain.
func (e *Engine) SetMultiplier(ctx context.Context, src, dest string, multiplier float64) error {
	return e.editConnection(ctx, src, dest, func(p *topology.Project, s, d portid.ID) error {
		return p.SetMultiplier(s, d, multiplier)
	})
}

func (e *Engine) editConnection(ctx context.Context, src, dest string, edit func(p *topology.Project, s, d portid.ID) error) error {
	s, d, err := parsePair(src, dest)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := edit(e.project, s, d); err != nil {
		return err
	}
	return e.Recalc(ctx, false)
}

func parsePort(id string) (portid.ID, error) {
	pid, err := portid.Parse(id)
	if err != nil {
		return portid.ID{}, fmt.Errorf("invalid port %q: %w", id, err)
	}
	return pid, nil
}

func parsePair(src, dest string) (portid.ID, portid.ID, error) {
	s, err := parsePort(src)
	if err != nil {
		return portid.ID{}, portid.ID{}, err
	}
	d, err := parsePort(dest)
	if err != nil {
		return portid.ID{}, portid.ID{}, err
	}
	return s, d, nil
}
