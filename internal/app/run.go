package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vk/dawgraph/internal/config"
	"github.com/vk/dawgraph/internal/ctxlog"
	"github.com/vk/dawgraph/internal/driver"
	"github.com/vk/dawgraph/internal/engine"
	"github.com/vk/dawgraph/internal/session"
	"github.com/vk/dawgraph/internal/telemetry"
	"github.com/vk/dawgraph/internal/tracing"
)

const shutdownTimeout = 5 * time.Second

// Run loads the session, activates an engine for it and drives the engine
// with the software driver until ctx is cancelled or the configured duration
// has elapsed.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	sess, err := session.Load(ctx, a.loader, a.registry, a.config.SessionPath)
	if err != nil {
		return err
	}
	engCfg := a.config.engineConfig(sess.Engine)
	telCfg := a.config.telemetryConfig(sess.Telemetry)

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		ServiceName:    "dawgraph",
		ServiceVersion: a.config.Release,
		Environment:    telCfg.SentryEnvironment,
		OTLPEndpoint:   telCfg.OTLPEndpoint,
		SampleRatio:    1.0,
		Insecure:       true,
	})
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() { _ = tracing.Shutdown(ctx, shutdownTracing, shutdownTimeout) }()

	reports := telemetry.NewQueue(telCfg.QueueSize)
	eng, err := engine.New(engCfg, sess.Project, reports)
	if err != nil {
		return err
	}
	a.engine.Store(eng)
	ctx = ctxlog.With(ctx, "engine", eng.ID())

	sinks, closeSinks, err := a.sinks(ctx, telCfg, eng.ID().String())
	if err != nil {
		return err
	}
	defer closeSinks()

	// The telemetry drain outlives the engine so reports of the last cycles
	// are still delivered.
	drainCtx, stopDrain := context.WithCancel(context.WithoutCancel(ctx))
	var drained sync.WaitGroup
	drained.Go(func() { reports.Run(drainCtx, sinks...) })
	defer func() {
		stopDrain()
		drained.Wait()
	}()

	if err := eng.Activate(ctx); err != nil {
		return fmt.Errorf("failed to activate engine: %w", err)
	}
	defer eng.Deactivate(ctx)

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx, a.config.HealthcheckPort)
		defer a.closeHealthcheckServer(ctx)
	}

	drv, err := driver.New(eng, driver.Config{SampleRate: engCfg.SampleRate, BlockSize: engCfg.BlockSize})
	if err != nil {
		return err
	}
	if a.config.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Duration)
		defer cancel()
	}

	a.logger.Info("Starting engine.", "session", a.config.SessionPath, "latency", eng.Latency())
	runErr := drv.Run(ctx)
	stats := eng.Stats()
	a.logger.Info("Engine run finished.",
		"cycles", stats.Cycles,
		"xruns", stats.Xruns,
		"driver_misses", drv.Misses(),
		"reports_dropped", stats.ReportsDropped,
	)
	if runErr != nil {
		return fmt.Errorf("driver failed: %w", runErr)
	}
	return nil
}

// sinks builds the telemetry sinks for cfg. Logging is always on; Sentry and
// NATS are added when configured.
func (a *App) sinks(ctx context.Context, cfg config.Telemetry, engineID string) ([]telemetry.Sink, func(), error) {
	sinks := []telemetry.Sink{telemetry.LogSink{}}
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.SentryDSN != "" {
		s, err := telemetry.NewSentrySink(cfg.SentryDSN, cfg.SentryEnvironment, a.config.Release)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Sentry sink: %w", err)
		}
		sinks = append(sinks, s)
		closers = append(closers, func() {
			fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if !s.Flush(fctx) {
				ctxlog.FromContext(ctx).Warn("Sentry flush timed out.")
			}
		})
		a.logger.Debug("Sentry telemetry sink enabled.", "environment", cfg.SentryEnvironment)
	}

	if cfg.NATSURL != "" {
		s, nc, err := telemetry.ConnectNATS(telemetry.NATSConfig{URL: cfg.NATSURL, Subject: cfg.NATSSubject}, engineID)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, s)
		closers = append(closers, func() {
			if err := nc.Drain(); err != nil && !errors.Is(err, context.Canceled) {
				ctxlog.FromContext(ctx).Warn("Failed to drain NATS connection.", "error", err)
			}
		})
		a.logger.Debug("NATS telemetry sink enabled.", "url", cfg.NATSURL)
	}

	// Closers run in reverse so sinks flush before the connections they
	// depend on go away.
	return sinks, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}
