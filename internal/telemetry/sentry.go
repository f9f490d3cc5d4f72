package telemetry

import (
	"context"
	"errors"

	"github.com/getsentry/sentry-go"
)

// SentrySink forwards processor failures and xruns to Sentry.
type SentrySink struct {
	hub *sentry.Hub
}

// NewSentrySink initialises a Sentry client for dsn. An empty dsn is
// rejected so a misconfigured sink is noticed at startup.
func NewSentrySink(dsn, environment, release string) (*SentrySink, error) {
	if dsn == "" {
		return nil, errors.New("sentry dsn cannot be empty")
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	})
	if err != nil {
		return nil, err
	}
	return NewSentrySinkWithHub(sentry.NewHub(client, sentry.NewScope())), nil
}

// NewSentrySinkWithHub wraps an existing hub.
func NewSentrySinkWithHub(hub *sentry.Hub) *SentrySink {
	return &SentrySink{hub: hub}
}

// Handle implements Sink. Event overflows are not forwarded.
func (s *SentrySink) Handle(_ context.Context, r Report) {
	switch r.Kind {
	case ProcessorFailure:
		s.hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("node", r.Source)
			scope.SetTag("kind", r.Kind.String())
			s.hub.CaptureException(r.Err)
		})
	case Xrun:
		s.hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("kind", r.Kind.String())
			scope.SetLevel(sentry.LevelWarning)
			s.hub.CaptureMessage(r.Message())
		})
	}
}

// Flush waits for buffered events to be sent.
func (s *SentrySink) Flush(ctx context.Context) bool {
	return s.hub.FlushWithContext(ctx)
}
