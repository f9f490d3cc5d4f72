package registry

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/dawgraph/internal/ctxlog"
	"github.com/vk/dawgraph/internal/node"
)

// ErrUnknownKind is returned when a session names a kind nobody registered.
var ErrUnknownKind = errors.New("unknown processor kind")

// Create decodes params into the kind's parameter struct and builds a unit.
// Parameters that the kind does not declare are rejected.
func (r *Registry) Create(ctx context.Context, kind string, params map[string]cty.Value) (node.Unit, error) {
	p, ok := r.processors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	target := p.NewParams()
	fields := paramFields(reflect.TypeOf(target))
	rv := reflect.ValueOf(target).Elem()

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		f, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("processor kind '%s' has no parameter '%s'", kind, name)
		}
		val := params[name]
		if val.IsNull() {
			continue
		}
		if err := decode(ctx, val, rv.FieldByIndex(f.Index).Addr().Interface()); err != nil {
			return nil, fmt.Errorf("processor kind '%s', parameter '%s': %w", kind, name, err)
		}
	}

	unit, err := p.New(target)
	if err != nil {
		return nil, fmt.Errorf("processor kind '%s': %w", kind, err)
	}
	ctxlog.FromContext(ctx).Debug("Created processor unit.", "kind", kind, "latency", unit.Latency())
	return unit, nil
}

// decode converts val to the cty type implied by the Go target before
// decoding, so a session may write "2" where a number is expected.
func decode(ctx context.Context, val cty.Value, target any) error {
	ty, err := gocty.ImpliedType(reflect.ValueOf(target).Elem().Interface())
	if err != nil {
		return gocty.FromCtyValue(val, target)
	}
	converted, err := convert.Convert(val, ty)
	if err != nil {
		return fmt.Errorf("cannot convert %s to %s: %w", val.Type().FriendlyName(), ty.FriendlyName(), err)
	}
	if !val.Type().Equals(converted.Type()) {
		ctxlog.FromContext(ctx).Debug("Implicitly converted parameter.", "from", val.Type().FriendlyName(), "to", ty.FriendlyName())
	}
	return gocty.FromCtyValue(converted, target)
}

// ParamTypes returns the cty type of every parameter of kind.
func (r *Registry) ParamTypes(kind string) (map[string]cty.Type, error) {
	p, ok := r.processors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	types := make(map[string]cty.Type)
	for name, f := range paramFields(reflect.TypeOf(p.NewParams())) {
		ty, err := gocty.ImpliedType(reflect.Zero(f.Type).Interface())
		if err != nil {
			return nil, fmt.Errorf("processor kind '%s', parameter '%s': %w", kind, name, err)
		}
		types[name] = ty
	}
	return types, nil
}
