package telemetry

import (
	"context"
	"sync/atomic"
)

// DefaultQueueSize is used when NewQueue is given a non-positive size.
const DefaultQueueSize = 1024

// Sink consumes reports on the drain goroutine.
type Sink interface {
	Handle(ctx context.Context, r Report)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, r Report)

// Handle calls f.
func (f SinkFunc) Handle(ctx context.Context, r Report) { f(ctx, r) }

// Queue is a bounded, non-blocking report queue. A nil *Queue discards
// everything, so components can be used without telemetry.
type Queue struct {
	ch      chan Report
	dropped atomic.Uint64
	pushed  atomic.Uint64
}

// NewQueue creates a queue holding up to size pending reports.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan Report, size)}
}

// Push enqueues r without blocking. It reports false if the queue was full
// and the report was dropped.
func (q *Queue) Push(r Report) bool {
	if q == nil {
		return false
	}
	select {
	case q.ch <- r:
		q.pushed.Add(1)
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Dropped returns the number of reports discarded because the queue was full.
func (q *Queue) Dropped() uint64 {
	if q == nil {
		return 0
	}
	return q.dropped.Load()
}

// Pushed returns the number of reports accepted by the queue.
func (q *Queue) Pushed() uint64 {
	if q == nil {
		return 0
	}
	return q.pushed.Load()
}

// Run delivers reports to sinks until ctx is cancelled. Reports still queued
// at cancellation are delivered before Run returns.
func (q *Queue) Run(ctx context.Context, sinks ...Sink) {
	for {
		select {
		case r := <-q.ch:
			deliver(ctx, r, sinks)
		case <-ctx.Done():
			q.flush(ctx, sinks)
			return
		}
	}
}

func (q *Queue) flush(ctx context.Context, sinks []Sink) {
	for {
		select {
		case r := <-q.ch:
			deliver(ctx, r, sinks)
		default:
			return
		}
	}
}

func deliver(ctx context.Context, r Report, sinks []Sink) {
	for _, s := range sinks {
		s.Handle(ctx, r)
	}
}
