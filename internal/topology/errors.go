package topology

import "errors"

var (
	// ErrUnknownProcessor is returned when an edit names a processor that does not exist.
	ErrUnknownProcessor = errors.New("unknown processor")
	// ErrDuplicateProcessor is returned when a processor ID is already in use.
	ErrDuplicateProcessor = errors.New("processor already exists")
	// ErrUnknownPort is returned when a connection names a port that does not exist.
	ErrUnknownPort = errors.New("unknown port")
	// ErrDirection is returned when a connection does not run from an output to an input.
	ErrDirection = errors.New("connection must run from an output port to an input port")
	// ErrIncompatible is returned when source and destination signal types cannot be combined.
	ErrIncompatible = errors.New("incompatible signal types")
	// ErrSelfLoop is returned when a connection would feed a processor into itself.
	ErrSelfLoop = errors.New("connection loops back onto its own processor")
	// ErrCycle is returned when a connection would close a cycle.
	ErrCycle = errors.New("connection would create a cycle")
	// ErrExists is returned when the connection is already present.
	ErrExists = errors.New("connection already exists")
	// ErrNotConnected is returned when an edit names a connection that does not exist.
	ErrNotConnected = errors.New("ports are not connected")
	// ErrLocked is returned when an edit targets a locked connection.
	ErrLocked = errors.New("connection is locked")
)
