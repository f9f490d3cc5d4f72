package config

import (
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of a session.
type Model struct {
	Engine      *Engine
	Telemetry   *Telemetry
	Processors  []*Processor
	Connections []*Connection
}

// Engine holds audio settings. Zero fields are left to the command line or
// the built-in defaults.
type Engine struct {
	SampleRate    int
	BlockSize     int
	Workers       int
	EventCapacity int
}

// Telemetry configures where engine reports go. Empty fields disable the
// corresponding sink.
type Telemetry struct {
	QueueSize         int
	SentryDSN         string
	SentryEnvironment string
	NATSURL           string
	NATSSubject       string
	OTLPEndpoint      string
}

// Processor is one processor instance of the session.
type Processor struct {
	Kind   string
	ID     string
	Params map[string]cty.Value
}

// Connection connects two ports given in canonical form.
type Connection struct {
	Src        string
	Dest       string
	Multiplier float64
	Enabled    bool
	Locked     bool
}

// Validate checks the model for problems that do not need the registry or
// the topology to detect.
func (m *Model) Validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(m.Processors))
	for _, p := range m.Processors {
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("processor of kind '%s' has an empty id", p.Kind))
			continue
		}
		if _, dup := seen[p.ID]; dup {
			errs = append(errs, fmt.Errorf("processor '%s' is declared more than once", p.ID))
		}
		seen[p.ID] = struct{}{}
	}
	for _, c := range m.Connections {
		if c.Src == "" || c.Dest == "" {
			errs = append(errs, fmt.Errorf("connection '%s' -> '%s' must name both ports", c.Src, c.Dest))
		}
	}
	return errors.Join(errs...)
}
