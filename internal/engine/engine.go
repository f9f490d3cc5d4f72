package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vk/dawgraph/internal/ctxlog"
	"github.com/vk/dawgraph/internal/graph"
	"github.com/vk/dawgraph/internal/router"
	"github.com/vk/dawgraph/internal/scheduler"
	"github.com/vk/dawgraph/internal/signal"
	"github.com/vk/dawgraph/internal/telemetry"
	"github.com/vk/dawgraph/internal/topology"
)

// ErrInactive is returned by Process when the engine is not active.
var ErrInactive = errors.New("engine is not active")

// Config holds the audio settings of an engine.
type Config struct {
	SampleRate int
	// BlockSize is the largest number of frames per cycle.
	BlockSize int
	// Workers is the number of background workers; zero selects cores-1.
	Workers int
	// EventCapacity bounds each event port; zero selects the default.
	EventCapacity int
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("block size must be positive, got %d", c.BlockSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", c.Workers)
	}
	if c.EventCapacity < 0 {
		return fmt.Errorf("event capacity cannot be negative, got %d", c.EventCapacity)
	}
	return nil
}

// Engine is one audio engine instance.
type Engine struct {
	id      uuid.UUID
	cfg     Config
	project *topology.Project
	reports *telemetry.Queue

	// mu serialises lifecycle changes and edits. It is never taken on the
	// processing path.
	mu     sync.Mutex
	sched  *scheduler.Scheduler
	router atomic.Pointer[router.Router]
	active atomic.Bool
}

// New creates an inactive engine for project. reports may be nil.
func New(cfg Config, project *topology.Project, reports *telemetry.Queue) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if project == nil {
		return nil, errors.New("project cannot be nil")
	}
	return &Engine{
		id:      uuid.New(),
		cfg:     cfg,
		project: project,
		reports: reports,
	}, nil
}

// ID returns the engine's instance ID.
func (e *Engine) ID() uuid.UUID { return e.id }

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Project returns the topology the engine processes.
func (e *Engine) Project() *topology.Project { return e.project }

// Activate starts the worker pool and builds the first graph. Failing to do
// either aborts activation and leaves the engine inactive.
func (e *Engine) Activate(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logger := ctxlog.FromContext(ctx).With("engine", e.id)
	ctx = ctxlog.WithLogger(ctx, logger)
	if e.active.Load() {
		return nil
	}

	sched, err := scheduler.New(ctx, scheduler.Options{Workers: e.cfg.Workers, Reports: e.reports})
	if err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}
	r := router.New(e.project, sched, router.Options{
		Graph:      graph.Options{BlockSize: e.cfg.BlockSize, EventCapacity: e.cfg.EventCapacity},
		SampleRate: e.cfg.SampleRate,
	})
	if err := r.RecalcGraph(ctx, false); err != nil {
		sched.Close()
		return fmt.Errorf("failed to build initial graph: %w", err)
	}

	e.sched = sched
	e.router.Store(r)
	e.active.Store(true)
	logger.Info("Engine activated.",
		"sample_rate", e.cfg.SampleRate,
		"block_size", e.cfg.BlockSize,
		"workers", sched.Workers(),
		"latency", r.MaxPlaybackLatency(),
	)
	return nil
}

// Deactivate stops the worker pool once the cycle in flight, if any, has
// finished.
func (e *Engine) Deactivate(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active.Swap(false) {
		return
	}
	e.sched.Close()
	ctxlog.FromContext(ctx).Info("Engine deactivated.", "engine", e.id, "cycles", e.sched.Cycles(), "xruns", e.sched.Xruns())
}

// Active reports whether the engine processes cycles.
func (e *Engine) Active() bool { return e.active.Load() }

// Process runs one cycle of nframes frames at transport position. It is
// the driver's per-callback entry point.
func (e *Engine) Process(nframes int, position int64) error {
	if !e.active.Load() {
		return ErrInactive
	}
	return e.router.Load().StartCycle(nframes, 0, position)
}

// Locate tells the engine the transport jumped; latency preroll restarts.
func (e *Engine) Locate() {
	if r := e.router.Load(); r != nil {
		r.Locate()
	}
}

// Latency returns the engine's total output latency in frames.
func (e *Engine) Latency() int {
	if r := e.router.Load(); r != nil {
		return r.MaxPlaybackLatency()
	}
	return 0
}

// Buffer returns a port's buffer in the active graph. Read it only between
// cycles.
func (e *Engine) Buffer(id string) (*signal.Buffer, error) {
	r := e.router.Load()
	if r == nil || r.Graph() == nil {
		return nil, ErrInactive
	}
	pid, err := parsePort(id)
	if err != nil {
		return nil, err
	}
	buf, ok := r.Graph().Buffer(pid)
	if !ok {
		return nil, fmt.Errorf("%w: %s", topology.ErrUnknownPort, id)
	}
	return buf, nil
}

// IsProcessingThread reports whether tid runs cycles for this engine.
func (e *Engine) IsProcessingThread(tid int) bool {
	if r := e.router.Load(); r != nil {
		return r.IsProcessingThread(tid)
	}
	return false
}

// Recalc rebuilds the graph, or with soft set only its latencies. It is a
// no-op while the engine is inactive; Activate builds from scratch anyway.
func (e *Engine) Recalc(ctx context.Context, soft bool) error {
	r := e.router.Load()
	if r == nil || !e.active.Load() {
		return nil
	}
	return r.RecalcGraph(ctx, soft)
}

// Stats is a point-in-time view of the engine.
type Stats struct {
	ID                 string        `json:"id"`
	Active             bool          `json:"active"`
	State              string        `json:"state"`
	Workers            int           `json:"workers"`
	Cycles             uint64        `json:"cycles"`
	Xruns              uint64        `json:"xruns"`
	LastCycle          time.Duration `json:"last_cycle_ns"`
	Graph              string        `json:"graph,omitempty"`
	Nodes              int           `json:"nodes"`
	MaxPlaybackLatency int           `json:"max_playback_latency"`
	ReportsDropped     uint64        `json:"reports_dropped"`
}

// Stats returns the current statistics.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	sched := e.sched
	e.mu.Unlock()

	s := Stats{
		ID:             e.id.String(),
		Active:         e.active.Load(),
		State:          "inactive",
		ReportsDropped: e.reports.Dropped(),
	}
	if sched != nil {
		s.State = sched.State().String()
		s.Workers = sched.Workers()
		s.Cycles = sched.Cycles()
		s.Xruns = sched.Xruns()
		s.LastCycle = sched.LastCycle()
	}
	if r := e.router.Load(); r != nil {
		if g := r.Graph(); g != nil {
			s.Graph = g.ID().String()
			s.Nodes = g.Len()
			s.MaxPlaybackLatency = g.MaxPlaybackLatency()
		}
	}
	return s
}
