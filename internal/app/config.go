package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/vk/dawgraph/internal/config"
	"github.com/vk/dawgraph/internal/engine"
	"github.com/vk/dawgraph/internal/telemetry"
)

// Built-in engine defaults, used when neither the session nor the command
// line sets a value.
const (
	DefaultSampleRate = 48000
	DefaultBlockSize  = 256
)

// Config holds all the necessary configuration for an App instance to run.
// Zero engine and telemetry fields defer to the session file.
type Config struct {
	SessionPath string
	// Duration bounds the run; zero runs until the context is cancelled.
	Duration time.Duration

	SampleRate    int
	BlockSize     int
	Workers       int
	EventCapacity int

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	SentryDSN         string
	SentryEnvironment string
	NATSURL           string
	NATSSubject       string
	OTLPEndpoint      string
	Release           string
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.SessionPath == "" {
		return nil, errors.New("SessionPath is a required configuration field and cannot be empty")
	}
	if cfg.Duration < 0 {
		return nil, fmt.Errorf("duration cannot be negative: %s", cfg.Duration)
	}
	for name, v := range map[string]int{
		"sample rate":      cfg.SampleRate,
		"block size":       cfg.BlockSize,
		"workers":          cfg.Workers,
		"event capacity":   cfg.EventCapacity,
		"healthcheck port": cfg.HealthcheckPort,
	} {
		if v < 0 {
			return nil, fmt.Errorf("%s cannot be negative: %d", name, v)
		}
	}
	return &cfg, nil
}

// engineConfig layers the session's engine block over the defaults and the
// command line over both.
func (c *Config) engineConfig(s config.Engine) engine.Config {
	return engine.Config{
		SampleRate:    first(c.SampleRate, s.SampleRate, DefaultSampleRate),
		BlockSize:     first(c.BlockSize, s.BlockSize, DefaultBlockSize),
		Workers:       first(c.Workers, s.Workers),
		EventCapacity: first(c.EventCapacity, s.EventCapacity),
	}
}

// telemetryConfig does the same for telemetry settings.
func (c *Config) telemetryConfig(s config.Telemetry) config.Telemetry {
	return config.Telemetry{
		QueueSize:         first(s.QueueSize, telemetry.DefaultQueueSize),
		SentryDSN:         first(c.SentryDSN, s.SentryDSN),
		SentryEnvironment: first(c.SentryEnvironment, s.SentryEnvironment, "production"),
		NATSURL:           first(c.NATSURL, s.NATSURL),
		NATSSubject:       first(c.NATSSubject, s.NATSSubject),
		OTLPEndpoint:      first(c.OTLPEndpoint, s.OTLPEndpoint),
	}
}

// first returns the first non-zero value.
func first[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}
