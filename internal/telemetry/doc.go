// Package telemetry carries runtime problems (processor failures, xruns,
// dropped events) from the real-time threads to the rest of the program.
//
// The real-time side only ever calls Queue.Push, which never blocks and never
// allocates: when the queue is full the report is counted and discarded. A
// drain goroutine started with Queue.Run hands every report to the configured
// sinks (structured logs, Sentry, NATS) on an ordinary goroutine.
package telemetry
