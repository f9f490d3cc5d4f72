package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/dawgraph/internal/node"
	"github.com/vk/dawgraph/internal/registry"
	"github.com/vk/dawgraph/modules/gain"
	"github.com/vk/dawgraph/modules/latency"
	"github.com/vk/dawgraph/modules/passthrough"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	for _, m := range []registry.Module{&gain.Module{}, &latency.Module{}, &passthrough.Module{}} {
		m.Register(r)
	}
	return r
}

func TestRegisterProcessor_PanicsOnDuplicate(t *testing.T) {
	r := newRegistry(t)
	assert.Panics(t, func() { (&gain.Module{}).Register(r) })
	assert.Equal(t, []string{"gain", "latency", "passthrough"}, r.Kinds())
}

func TestCreate_DecodesParams(t *testing.T) {
	r := newRegistry(t)

	unit, err := r.Create(context.Background(), "latency", map[string]cty.Value{
		"frames":   cty.NumberIntVal(64),
		"channels": cty.NumberIntVal(2),
	})
	require.NoError(t, err)
	assert.Equal(t, 64, unit.Latency())
	ins, _ := unit.Ports()
	assert.Len(t, ins, 2)
}

func TestCreate_UsesDefaults(t *testing.T) {
	r := newRegistry(t)

	unit, err := r.Create(context.Background(), "gain", nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, unit.(*gain.Unit).Gain())
}

func TestCreate_ConvertsParamTypes(t *testing.T) {
	r := newRegistry(t)

	unit, err := r.Create(context.Background(), "gain", map[string]cty.Value{"gain": cty.StringVal("0.5")})
	require.NoError(t, err)
	assert.Equal(t, 0.5, unit.(*gain.Unit).Gain())
}

func TestCreate_Errors(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	_, err := r.Create(ctx, "reverb", nil)
	assert.ErrorIs(t, err, registry.ErrUnknownKind)

	_, err = r.Create(ctx, "gain", map[string]cty.Value{"volume": cty.NumberFloatVal(1)})
	assert.ErrorContains(t, err, "has no parameter 'volume'")

	_, err = r.Create(ctx, "gain", map[string]cty.Value{"gain": cty.StringVal("loud")})
	assert.ErrorContains(t, err, "parameter 'gain'")

	_, err = r.Create(ctx, "latency", map[string]cty.Value{"frames": cty.NumberIntVal(-4)})
	assert.ErrorContains(t, err, "frames cannot be negative")
}

func TestParamTypes(t *testing.T) {
	r := newRegistry(t)

	types, err := r.ParamTypes("passthrough")
	require.NoError(t, err)
	assert.Equal(t, map[string]cty.Type{"type": cty.String, "channels": cty.Number}, types)
}

type badParams struct {
	Callback func() `param:"callback"`
}

type badModule struct{}

func (badModule) Register(r *registry.Registry) {
	r.RegisterProcessor("bad", &registry.Processor{
		NewParams: func() any { return &badParams{} },
		New:       func(any) (node.Unit, error) { return nil, nil },
	})
}

func TestValidateRegistry(t *testing.T) {
	r := newRegistry(t)
	require.NoError(t, r.ValidateRegistry(context.Background()))

	badModule{}.Register(r)
	err := r.ValidateRegistry(context.Background())
	assert.ErrorContains(t, err, "processor kind 'bad', parameter 'callback'")
}
