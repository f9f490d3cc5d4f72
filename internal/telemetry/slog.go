package telemetry

import (
	"context"
	"log/slog"

	"github.com/vk/dawgraph/internal/ctxlog"
)

// LogSink writes reports to the logger carried by the drain context.
type LogSink struct{}

// Handle implements Sink.
func (LogSink) Handle(ctx context.Context, r Report) {
	logger := ctxlog.FromContext(ctx)
	attrs := []any{"kind", r.Kind.String(), "cycle", r.Cycle}
	level := slog.LevelWarn

	switch r.Kind {
	case ProcessorFailure:
		level = slog.LevelError
		attrs = append(attrs, "node", r.Source, "error", r.Err)
	case Xrun:
		attrs = append(attrs, "elapsed", r.Elapsed, "deadline", r.Deadline)
	case EventOverflow:
		attrs = append(attrs, "port", r.Source, "dropped", r.Dropped)
	}
	logger.Log(ctx, level, "Engine telemetry.", attrs...)
}
