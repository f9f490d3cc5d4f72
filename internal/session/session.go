package session

import (
	"context"
	"fmt"

	"github.com/vk/dawgraph/internal/config"
	"github.com/vk/dawgraph/internal/ctxlog"
	"github.com/vk/dawgraph/internal/portid"
	"github.com/vk/dawgraph/internal/registry"
	"github.com/vk/dawgraph/internal/topology"
)

// Session is a loaded session: its topology plus the settings it carries.
type Session struct {
	Project   *topology.Project
	Engine    config.Engine
	Telemetry config.Telemetry
}

// Load reads the session files under paths with loader and builds them.
func Load(ctx context.Context, loader config.Loader, reg *registry.Registry, paths ...string) (*Session, error) {
	m, err := loader.Load(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return Build(ctx, m, reg)
}

// Build creates the processors and connections of m. Processors are added in
// model order, which fixes their track index and thus the graph's arena
// order.
func Build(ctx context.Context, m *config.Model, reg *registry.Registry) (*Session, error) {
	logger := ctxlog.FromContext(ctx)
	s := &Session{Project: topology.NewProject()}
	if m.Engine != nil {
		s.Engine = *m.Engine
	}
	if m.Telemetry != nil {
		s.Telemetry = *m.Telemetry
	}

	for _, p := range m.Processors {
		unit, err := reg.Create(ctx, p.Kind, p.Params)
		if err != nil {
			return nil, fmt.Errorf("processor '%s': %w", p.ID, err)
		}
		if _, err := s.Project.AddProcessor(p.ID, p.Kind, unit); err != nil {
			return nil, fmt.Errorf("processor '%s': %w", p.ID, err)
		}
	}

	for _, c := range m.Connections {
		if err := connect(s.Project, c); err != nil {
			return nil, err
		}
	}

	logger.Debug("Session built.", "processors", len(m.Processors), "connections", len(m.Connections))
	return s, nil
}

func connect(p *topology.Project, c *config.Connection) error {
	src, err := portid.Parse(c.Src)
	if err != nil {
		return fmt.Errorf("connection source %q: %w", c.Src, err)
	}
	dest, err := portid.Parse(c.Dest)
	if err != nil {
		return fmt.Errorf("connection destination %q: %w", c.Dest, err)
	}
	if err := p.Connect(src, dest, c.Multiplier); err != nil {
		return err
	}
	if !c.Enabled {
		if err := p.SetEnabled(src, dest, false); err != nil {
			return err
		}
	}
	if c.Locked {
		return p.SetLocked(src, dest, true)
	}
	return nil
}
