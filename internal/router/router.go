package router

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/vk/dawgraph/internal/ctxlog"
	"github.com/vk/dawgraph/internal/graph"
	"github.com/vk/dawgraph/internal/node"
	"github.com/vk/dawgraph/internal/scheduler"
	"github.com/vk/dawgraph/internal/topology"
)

const tracerName = "github.com/vk/dawgraph/internal/router"

var (
	// ErrNoGraph is returned by StartCycle before the first successful build.
	ErrNoGraph = errors.New("no graph has been built")
	// ErrFrameRange is returned when a cycle does not fit the graph's buffers.
	ErrFrameRange = errors.New("cycle frames out of range")
	// ErrBusy is returned by TryRecalcGraph when another recalc holds graph_access.
	ErrBusy = errors.New("graph recalculation already in progress")
	// ErrProcessingThread is returned when a recalc is requested from a
	// thread that runs cycles.
	ErrProcessingThread = errors.New("graph recalculation requested from a processing thread")
)

// SnapshotSource provides the topology a full rebuild starts from.
type SnapshotSource interface {
	Snapshot() *topology.Snapshot
}

// Options configures a Router.
type Options struct {
	Graph      graph.Options
	SampleRate int
}

// Router owns the active graph of one engine.
type Router struct {
	source SnapshotSource
	sched  *scheduler.Scheduler
	opts   Options
	tracer trace.Tracer

	// access is graph_access: held by recalcs, never by the real-time thread.
	access *semaphore.Weighted
	graph  atomic.Pointer[graph.Graph]

	locate atomic.Bool
	// remaining is the preroll left in the latency window. Only the thread
	// running cycles touches it.
	remaining int

	cycle        atomic.Uint64
	globalOffset atomic.Int64
	localOffset  atomic.Int64
	maxLatency   atomic.Int64
}

// New creates a router without a graph; call RecalcGraph before the first
// cycle.
func New(source SnapshotSource, sched *scheduler.Scheduler, opts Options) *Router {
	r := &Router{
		source: source,
		sched:  sched,
		opts:   opts,
		tracer: otel.Tracer(tracerName),
		access: semaphore.NewWeighted(1),
	}
	r.locate.Store(true)
	return r
}

// RecalcGraph rebuilds the graph from the snapshot source, or with soft set
// only recomputes latencies of the current graph. A failed rebuild leaves the
// previous graph active. It must not be called from a processing thread.
func (r *Router) RecalcGraph(ctx context.Context, soft bool) error {
	if r.IsProcessingThread(scheduler.CurrentThreadID()) {
		return ErrProcessingThread
	}
	if err := r.access.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire graph access: %w", err)
	}
	defer r.access.Release(1)
	return r.recalc(ctx, soft)
}

// TryRecalcGraph is RecalcGraph without waiting: it returns ErrBusy if
// another recalc is running. It must not be called from a processing thread
// either.
func (r *Router) TryRecalcGraph(ctx context.Context, soft bool) error {
	if r.IsProcessingThread(scheduler.CurrentThreadID()) {
		return ErrProcessingThread
	}
	if !r.access.TryAcquire(1) {
		return ErrBusy
	}
	defer r.access.Release(1)
	return r.recalc(ctx, soft)
}

func (r *Router) recalc(ctx context.Context, soft bool) error {
	ctx, span := r.tracer.Start(ctx, "router.RecalcGraph", trace.WithAttributes(attribute.Bool("soft", soft)))
	defer span.End()
	logger := ctxlog.FromContext(ctx)

	if cur := r.graph.Load(); soft && cur != nil {
		changed, err := cur.UpdateLatencies()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "latency update failed")
			return fmt.Errorf("soft recalc: %w", err)
		}
		span.SetAttributes(
			attribute.Bool("changed", changed),
			attribute.Int("max_playback_latency", cur.MaxPlaybackLatency()),
		)
		logger.Debug("Latencies recalculated.", "graph", cur.ID(), "changed", changed, "max_playback_latency", cur.MaxPlaybackLatency())
		return nil
	}

	snap := r.source.Snapshot()
	g, err := graph.Build(ctx, snap, r.opts.Graph)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "graph build failed")
		logger.Warn("Graph rebuild rejected, keeping previous graph.", "version", snap.Version, "error", err)
		return err
	}
	old := r.graph.Swap(g)

	span.SetAttributes(
		attribute.String("graph", g.ID().String()),
		attribute.Int("nodes", g.Len()),
		attribute.Int("max_playback_latency", g.MaxPlaybackLatency()),
	)
	attrs := []any{"graph", g.ID(), "version", g.Version(), "nodes", g.Len(), "max_playback_latency", g.MaxPlaybackLatency()}
	if old != nil {
		attrs = append(attrs, "replaced", old.ID())
	}
	logger.Info("Graph published.", attrs...)
	return nil
}

// StartCycle runs one cycle of nsamples frames starting at localOffset in
// the port buffers. playhead is the transport position of the first frame.
// It never blocks on graph_access.
func (r *Router) StartCycle(nsamples, localOffset int, playhead int64) error {
	g := r.graph.Load()
	if g == nil {
		return ErrNoGraph
	}
	if nsamples <= 0 || localOffset < 0 || localOffset+nsamples > g.BlockSize() {
		return ErrFrameRange
	}

	maxLatency := g.MaxPlaybackLatency()
	if r.locate.Swap(false) {
		r.remaining = maxLatency
	}
	global := maxLatency - min(r.remaining, maxLatency)
	r.remaining = max(0, r.remaining-nsamples)

	r.globalOffset.Store(int64(global))
	r.localOffset.Store(int64(localOffset))
	r.maxLatency.Store(int64(maxLatency))

	r.sched.Run(g, node.TimeInfo{
		Cycle:        r.cycle.Add(1) - 1,
		Playhead:     playhead,
		GlobalOffset: global,
		LocalOffset:  localOffset,
		NFrames:      nsamples,
		SampleRate:   r.opts.SampleRate,
	})
	return nil
}

// Locate restarts the latency preroll, typically after the transport jumped.
// The next cycle starts with a global offset of zero.
func (r *Router) Locate() {
	r.locate.Store(true)
}

// MaxPlaybackLatency returns the largest latency accumulated from a trigger
// to a terminal node of the current graph.
func (r *Router) MaxPlaybackLatency() int {
	if g := r.graph.Load(); g != nil {
		return g.MaxPlaybackLatency()
	}
	return 0
}

// GlobalOffset returns the global offset of the most recent cycle.
func (r *Router) GlobalOffset() int { return int(r.globalOffset.Load()) }

// LocalOffset returns the local offset of the most recent cycle.
func (r *Router) LocalOffset() int { return int(r.localOffset.Load()) }

// Cycles returns the number of cycles started.
func (r *Router) Cycles() uint64 { return r.cycle.Load() }

// IsProcessingThread reports whether tid belongs to a processing thread.
func (r *Router) IsProcessingThread(tid int) bool {
	return r.sched.IsProcessingThread(tid)
}

// Graph returns the active graph, nil before the first build.
func (r *Router) Graph() *graph.Graph {
	return r.graph.Load()
}
