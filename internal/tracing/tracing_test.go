package tracing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	before := otel.GetTracerProvider()
	shutdown, err := Setup(context.Background(), DefaultConfig("dawgraph", ""))
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestSetup_InstallsProvider(t *testing.T) {
	before := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(before) })

	shutdown, err := Setup(context.Background(), DefaultConfig("dawgraph", "127.0.0.1:4318"))
	require.NoError(t, err)
	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok)

	// Nothing was recorded, so the batcher has nothing to send.
	assert.NoError(t, Shutdown(context.Background(), shutdown, time.Second))
}

func TestShutdown_ReportsError(t *testing.T) {
	err := Shutdown(context.Background(), func(context.Context) error { return errors.New("collector gone") }, time.Second)
	assert.EqualError(t, err, "collector gone")
}
