package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/dawgraph/internal/ctxlog"
)

// ValidateRegistry checks that every registered kind has a parameter struct
// whose tagged fields map to cty types and whose defaults build a unit.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, kind := range r.Kinds() {
		types, err := r.ParamTypes(kind)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		p := r.processors[kind]
		unit, err := p.New(p.NewParams())
		if err != nil {
			errs = append(errs, fmt.Sprintf("processor kind '%s': defaults do not build a unit: %v", kind, err))
			continue
		}
		ins, outs := unit.Ports()
		if len(ins) == 0 && len(outs) == 0 {
			errs = append(errs, fmt.Sprintf("processor kind '%s': unit declares no ports", kind))
			continue
		}
		logger.Debug("Processor kind validated.", "kind", kind, "params", len(types))
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
