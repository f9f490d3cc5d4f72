package telemetry

import (
	"fmt"
	"time"
)

// Kind classifies a report.
type Kind uint8

const (
	// ProcessorFailure means a unit returned an error or panicked and its
	// outputs were silenced for the cycle.
	ProcessorFailure Kind = iota
	// Xrun means a cycle missed its deadline.
	Xrun
	// EventOverflow means a port dropped events because its buffer was full.
	EventOverflow
)

func (k Kind) String() string {
	switch k {
	case ProcessorFailure:
		return "processor_failure"
	case Xrun:
		return "xrun"
	case EventOverflow:
		return "event_overflow"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Report describes one problem observed during a cycle.
type Report struct {
	Kind Kind
	// Source names the node the report is about. Empty for xruns.
	Source string
	// Cycle is the engine cycle counter when the problem occurred.
	Cycle uint64
	// Err is set for processor failures.
	Err error
	// Elapsed and Deadline are set for xruns.
	Elapsed  time.Duration
	Deadline time.Duration
	// Dropped is set for event overflows.
	Dropped int
	At      time.Time
}

// Message renders a one-line human readable summary.
func (r Report) Message() string {
	switch r.Kind {
	case ProcessorFailure:
		return fmt.Sprintf("processor %s failed in cycle %d: %v", r.Source, r.Cycle, r.Err)
	case Xrun:
		return fmt.Sprintf("xrun in cycle %d: took %s, deadline %s", r.Cycle, r.Elapsed, r.Deadline)
	case EventOverflow:
		return fmt.Sprintf("port %s dropped %d events in cycle %d", r.Source, r.Dropped, r.Cycle)
	default:
		return fmt.Sprintf("%s in cycle %d", r.Kind, r.Cycle)
	}
}
