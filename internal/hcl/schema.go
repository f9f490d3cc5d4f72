package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode all top-level blocks of a session file.
type fileRoot struct {
	Engine      *engineBlock       `hcl:"engine,block"`
	Telemetry   *telemetryBlock    `hcl:"telemetry,block"`
	Processors  []*processorBlock  `hcl:"processor,block"`
	Connections []*connectionBlock `hcl:"connection,block"`
}

type engineBlock struct {
	SampleRate    int `hcl:"sample_rate,optional"`
	BlockSize     int `hcl:"block_size,optional"`
	Workers       int `hcl:"workers,optional"`
	EventCapacity int `hcl:"event_capacity,optional"`
}

type telemetryBlock struct {
	QueueSize         int    `hcl:"queue_size,optional"`
	SentryDSN         string `hcl:"sentry_dsn,optional"`
	SentryEnvironment string `hcl:"sentry_environment,optional"`
	NATSURL           string `hcl:"nats_url,optional"`
	NATSSubject       string `hcl:"nats_subject,optional"`
	OTLPEndpoint      string `hcl:"otlp_endpoint,optional"`
}

// processorBlock is a `processor "<kind>" "<id>"` block. Its attributes are
// the processor's parameters.
type processorBlock struct {
	Kind string   `hcl:"kind,label"`
	ID   string   `hcl:"id,label"`
	Body hcl.Body `hcl:",remain"`
}

type connectionBlock struct {
	Src        string   `hcl:"src"`
	Dest       string   `hcl:"dest"`
	Multiplier *float64 `hcl:"multiplier,optional"`
	Enabled    *bool    `hcl:"enabled,optional"`
	Locked     bool     `hcl:"locked,optional"`
}
