package registry

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"

	"github.com/vk/dawgraph/internal/node"
)

// Module is the interface that all built-in processor modules implement to
// be registered.
type Module interface {
	Register(r *Registry)
}

// Processor holds the Go parts of a processor kind.
type Processor struct {
	// NewParams returns a pointer to a parameter struct filled with
	// defaults. Fields tagged `param:"name"` are settable from sessions.
	NewParams func() any
	// New builds a unit from the decoded parameters.
	New func(params any) (node.Unit, error)
}

// Registry holds the processor kinds known to one application instance.
type Registry struct {
	processors map[string]*Processor
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{processors: make(map[string]*Processor)}
}

// RegisterProcessor registers the factory for a processor kind. Registering
// the same kind twice is a programming error and panics.
func (r *Registry) RegisterProcessor(kind string, p *Processor) {
	if _, exists := r.processors[kind]; exists {
		panic(fmt.Sprintf("processor kind '%s' already registered", kind))
	}
	if p == nil || p.NewParams == nil || p.New == nil {
		panic(fmt.Sprintf("processor kind '%s' registered without a factory", kind))
	}
	slog.Debug("Registering processor kind.", "kind", kind)
	r.processors[kind] = p
}

// Lookup returns the factory for kind.
func (r *Registry) Lookup(kind string) (*Processor, bool) {
	p, ok := r.processors[kind]
	return p, ok
}

// Kinds returns every registered kind in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.processors))
	for k := range r.processors {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// paramFields returns the settable fields of a parameter struct keyed by
// their tag name.
func paramFields(t reflect.Type) map[string]reflect.StructField {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	fields := make(map[string]reflect.StructField)
	if t.Kind() != reflect.Struct {
		return fields
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if name := f.Tag.Get("param"); name != "" && name != "-" {
			fields[name] = f
		}
	}
	return fields
}
