// Package scheduler executes processing graphs on a fixed pool of worker
// threads.
//
// # How a cycle runs
//
// The pool holds max(1, cores-1) workers, each locked to its own OS thread
// and parked on a private wake channel between cycles. Run is called from
// the real-time audio thread:
//
//  1. The graph is reset and its trigger set is pushed on the ready queue.
//  2. Every worker is woken; the caller joins in as one more worker.
//  3. Each thread repeatedly pops a ready node, processes it and signals its
//     dependents, which may push further nodes. A thread that finds the queue
//     empty yields and retries; nothing inside a cycle blocks on a lock.
//  4. Once every node is processed the caller waits for the workers to leave
//     the cycle (Draining) and returns (Idle).
//
// A cycle is never cancelled half way. Close takes effect between cycles.
//
// Cycles that take longer than their deadline (nframes / sample rate) are
// counted as xruns and reported through the telemetry queue; the output of
// the late cycle is used as is.
package scheduler
