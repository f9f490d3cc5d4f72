package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/vk/dawgraph/internal/ctxlog"
)

// DefaultSubject is the NATS subject reports are published on.
const DefaultSubject = "dawgraph.telemetry"

// Publisher is the subset of *nats.Conn used by NATSSink.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink publishes every report as JSON so remote monitors can follow the
// engine.
type NATSSink struct {
	pub     Publisher
	subject string
	engine  string
}

// NATSConfig configures the connection behind a NATSSink.
type NATSConfig struct {
	URL     string
	Subject string
	// Name identifies the client to the server.
	Name    string
	Timeout time.Duration
}

// ConnectNATS dials the server and returns a sink publishing on cfg.Subject.
// The returned connection must be closed by the caller.
func ConnectNATS(cfg NATSConfig, engineID string) (*NATSSink, *nats.Conn, error) {
	if cfg.URL == "" {
		return nil, nil, errors.New("NATS URL cannot be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Name == "" {
		cfg.Name = "dawgraph"
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.Timeout(cfg.Timeout),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return NewNATSSink(nc, cfg.Subject, engineID), nc, nil
}

// NewNATSSink publishes on subject through pub. An empty subject selects
// DefaultSubject.
func NewNATSSink(pub Publisher, subject, engineID string) *NATSSink {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSSink{pub: pub, subject: subject, engine: engineID}
}

type wireReport struct {
	Engine   string    `json:"engine"`
	Kind     string    `json:"kind"`
	Source   string    `json:"source,omitempty"`
	Cycle    uint64    `json:"cycle"`
	Error    string    `json:"error,omitempty"`
	Elapsed  int64     `json:"elapsed_ns,omitempty"`
	Deadline int64     `json:"deadline_ns,omitempty"`
	Dropped  int       `json:"dropped,omitempty"`
	At       time.Time `json:"at"`
}

// Handle implements Sink.
func (s *NATSSink) Handle(ctx context.Context, r Report) {
	w := wireReport{
		Engine:   s.engine,
		Kind:     r.Kind.String(),
		Source:   r.Source,
		Cycle:    r.Cycle,
		Elapsed:  int64(r.Elapsed),
		Deadline: int64(r.Deadline),
		Dropped:  r.Dropped,
		At:       r.At,
	}
	if r.Err != nil {
		w.Error = r.Err.Error()
	}
	data, err := json.Marshal(w)
	if err != nil {
		ctxlog.FromContext(ctx).Error("Failed to encode telemetry report.", "error", err)
		return
	}
	if err := s.pub.Publish(s.subject, data); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to publish telemetry report.", "subject", s.subject, "error", err)
	}
}
