package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrCycle means the snapshot's connections form a cycle.
	ErrCycle = errors.New("cycle detected")
	// ErrNoTriggers means the graph has nodes but none without predecessors.
	ErrNoTriggers = errors.New("graph has no trigger nodes")
	// ErrIncompatible means a connection joins incompatible ports.
	ErrIncompatible = errors.New("incompatible connection")
	// ErrUnknownPort means a connection names a port no processor declares.
	ErrUnknownPort = errors.New("unknown port")
)

// ErrorKind classifies a BuildError.
type ErrorKind uint8

const (
	KindCycle ErrorKind = iota + 1
	KindNoTriggers
	KindIncompatible
	KindUnknownPort
	KindInvalid
)

func (k ErrorKind) String() string {
	switch k {
	case KindCycle:
		return "cycle"
	case KindNoTriggers:
		return "no_triggers"
	case KindIncompatible:
		return "incompatible"
	case KindUnknownPort:
		return "unknown_port"
	default:
		return "invalid"
	}
}

// BuildError describes why a snapshot could not be turned into a graph.
type BuildError struct {
	Kind ErrorKind
	// Node names the port or processor involved, if any.
	Node string
	Err  error
}

func (e *BuildError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("graph build failed: %v", e.Err)
	}
	return fmt.Sprintf("graph build failed at %s: %v", e.Node, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
