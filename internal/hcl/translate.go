package hcl

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/dawgraph/internal/config"
)

func translateEngine(b *engineBlock) *config.Engine {
	return &config.Engine{
		SampleRate:    b.SampleRate,
		BlockSize:     b.BlockSize,
		Workers:       b.Workers,
		EventCapacity: b.EventCapacity,
	}
}

func translateTelemetry(b *telemetryBlock) *config.Telemetry {
	return &config.Telemetry{
		QueueSize:         b.QueueSize,
		SentryDSN:         b.SentryDSN,
		SentryEnvironment: b.SentryEnvironment,
		NATSURL:           b.NATSURL,
		NATSSubject:       b.NATSSubject,
		OTLPEndpoint:      b.OTLPEndpoint,
	}
}

// translateProcessor evaluates the processor's attributes in the parameter
// evaluation context.
func translateProcessor(b *processorBlock) (*config.Processor, error) {
	attrs, diags := b.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("processor '%s': %w", b.ID, diags)
	}
	evalCtx := paramEvalContext()
	params := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("processor '%s', parameter '%s': %w", b.ID, name, diags)
		}
		params[name] = val
	}
	return &config.Processor{Kind: b.Kind, ID: b.ID, Params: params}, nil
}

func translateConnection(b *connectionBlock) *config.Connection {
	c := &config.Connection{
		Src:        b.Src,
		Dest:       b.Dest,
		Multiplier: 1,
		Enabled:    true,
		Locked:     b.Locked,
	}
	if b.Multiplier != nil {
		c.Multiplier = *b.Multiplier
	}
	if b.Enabled != nil {
		c.Enabled = *b.Enabled
	}
	return c
}
