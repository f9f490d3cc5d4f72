package scheduler

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/dawgraph/internal/ctxlog"
	"github.com/vk/dawgraph/internal/graph"
	"github.com/vk/dawgraph/internal/node"
	"github.com/vk/dawgraph/internal/telemetry"
)

// State is the scheduler's position in the cycle state machine.
type State int32

const (
	// Idle means no cycle is running and workers are parked.
	Idle State = iota
	// Running means nodes are being processed.
	Running
	// Draining means the ready queue is empty while nodes are still being
	// finished, or every node is processed and the caller is waiting for
	// workers to leave the cycle.
	Draining
	// Closed means the pool has been shut down.
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Options configures a Scheduler.
type Options struct {
	// Workers is the number of background workers. Zero selects
	// max(1, GOMAXPROCS-1).
	Workers int
	// Reports receives xrun reports and is handed to nodes for failure
	// reports. It may be nil.
	Reports *telemetry.Queue
}

// DefaultWorkers returns max(1, GOMAXPROCS-1).
func DefaultWorkers() int {
	return max(1, runtime.GOMAXPROCS(0)-1)
}

type worker struct {
	id   int
	wake chan struct{}
	tid  atomic.Int64
}

// Scheduler runs graph cycles on a worker pool. Run must only be called
// from one thread at a time.
type Scheduler struct {
	workers []*worker
	reports *telemetry.Queue

	quit chan struct{}
	wg   sync.WaitGroup

	current atomic.Pointer[graph.Graph]
	active  atomic.Int32
	state   atomic.Int32
	runner  atomic.Int64

	cycles atomic.Uint64
	xruns  atomic.Uint64
	last   atomic.Int64
}

// New starts the worker pool. It returns once every worker is running on
// its own OS thread.
func New(ctx context.Context, opts Options) (*Scheduler, error) {
	n := opts.Workers
	if n < 0 {
		return nil, fmt.Errorf("worker count cannot be negative: %d", n)
	}
	if n == 0 {
		n = DefaultWorkers()
	}

	s := &Scheduler{
		workers: make([]*worker, n),
		reports: opts.Reports,
		quit:    make(chan struct{}),
	}
	var started sync.WaitGroup
	started.Add(n)
	s.wg.Add(n)
	for i := range s.workers {
		w := &worker{id: i, wake: make(chan struct{}, 1)}
		s.workers[i] = w
		go s.work(w, &started)
	}
	started.Wait()

	ctxlog.FromContext(ctx).Debug("Worker pool started.", "workers", n)
	return s, nil
}

func (s *Scheduler) work(w *worker, started *sync.WaitGroup) {
	defer s.wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	w.tid.Store(int64(CurrentThreadID()))
	started.Done()

	for {
		select {
		case <-w.wake:
		case <-s.quit:
			return
		}
		drain(s.current.Load())
		s.active.Add(-1)
	}
}

// drain processes ready nodes until every node of g is done.
func drain(g *graph.Graph) {
	for !g.Done() {
		if !g.Step() {
			runtime.Gosched()
		}
	}
}

// drainAsCaller is drain for the thread that started the cycle. Finding the
// ready queue empty before the cycle is done moves the state to Draining;
// picking up a node moves it back to Running.
func (s *Scheduler) drainAsCaller(g *graph.Graph) {
	for !g.Done() {
		if g.Step() {
			s.state.CompareAndSwap(int32(Draining), int32(Running))
			continue
		}
		s.state.CompareAndSwap(int32(Running), int32(Draining))
		runtime.Gosched()
	}
}

// Run executes one cycle of g and returns when every node has been
// processed. It never blocks on a lock; the only synchronisation is the wake
// channel of each worker and the graph's atomic counters.
func (s *Scheduler) Run(g *graph.Graph, ti node.TimeInfo) {
	start := time.Now()
	s.runner.Store(int64(CurrentThreadID()))

	g.Begin(ti, s.reports)
	if s.state.CompareAndSwap(int32(Idle), int32(Running)) {
		if g.Len() > 0 {
			s.current.Store(g)
			s.active.Store(int32(len(s.workers)))
			for _, w := range s.workers {
				w.wake <- struct{}{}
			}
			s.drainAsCaller(g)
			s.state.Store(int32(Draining))
			for s.active.Load() > 0 {
				runtime.Gosched()
			}
		}
		s.state.Store(int32(Idle))
	} else {
		// Closed: the caller finishes the cycle alone.
		drain(g)
	}

	s.runner.Store(0)
	s.cycles.Add(1)
	elapsed := time.Since(start)
	s.last.Store(int64(elapsed))
	if deadline := Deadline(ti.NFrames, ti.SampleRate); deadline > 0 && elapsed > deadline {
		s.xruns.Add(1)
		s.reports.Push(telemetry.Report{
			Kind:     telemetry.Xrun,
			Cycle:    ti.Cycle,
			Elapsed:  elapsed,
			Deadline: deadline,
			At:       time.Now(),
		})
	}
}

// Deadline returns the real-time budget of a cycle of nframes at
// sampleRate, or zero if the sample rate is unknown.
func Deadline(nframes, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(nframes) * time.Second / time.Duration(sampleRate)
}

// Close stops the workers. It waits for a running cycle to finish first.
// Calling Close more than once is a no-op.
func (s *Scheduler) Close() {
	for {
		if s.state.CompareAndSwap(int32(Idle), int32(Closed)) {
			break
		}
		if State(s.state.Load()) == Closed {
			return
		}
		time.Sleep(100 * time.Microsecond)
	}
	close(s.quit)
	s.wg.Wait()
}

// IsProcessingThread reports whether tid is the OS thread of a worker or of
// the thread currently running a cycle. Non real-time code can use it to
// assert it is not about to block a processing thread.
func (s *Scheduler) IsProcessingThread(tid int) bool {
	if tid <= 0 {
		return false
	}
	if s.runner.Load() == int64(tid) {
		return true
	}
	for _, w := range s.workers {
		if w.tid.Load() == int64(tid) {
			return true
		}
	}
	return false
}

// State returns the current state.
func (s *Scheduler) State() State { return State(s.state.Load()) }

// Workers returns the number of background workers.
func (s *Scheduler) Workers() int { return len(s.workers) }

// Cycles returns the number of completed cycles.
func (s *Scheduler) Cycles() uint64 { return s.cycles.Load() }

// Xruns returns the number of cycles that missed their deadline.
func (s *Scheduler) Xruns() uint64 { return s.xruns.Load() }

// LastCycle returns how long the most recent cycle took.
func (s *Scheduler) LastCycle() time.Duration { return time.Duration(s.last.Load()) }
