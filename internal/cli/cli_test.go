package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantExit  bool
		wantCode  int
		wantPath  string
		checkFunc func(t *testing.T, out string)
	}{
		{name: "positional path", args: []string{"s.hcl"}, wantPath: "s.hcl"},
		{name: "session flag wins", args: []string{"-session", "a.hcl", "b.hcl"}, wantPath: "a.hcl"},
		{name: "shorthand", args: []string{"-s", "dir"}, wantPath: "dir"},
		{name: "no path prints usage", args: nil, wantExit: true, checkFunc: func(t *testing.T, out string) {
			assert.Contains(t, out, "Usage:")
		}},
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "unknown flag", args: []string{"-nope"}, wantCode: 2},
		{name: "bad log format", args: []string{"-log-format", "xml", "s.hcl"}, wantCode: 2},
		{name: "bad log level", args: []string{"-log-level", "loud", "s.hcl"}, wantCode: 2},
		{name: "negative block size", args: []string{"-block-size", "-1", "s.hcl"}, wantCode: 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			cfg, exit, err := Parse(tc.args, &out)
			if tc.wantCode != 0 {
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, tc.wantCode, exitErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExit, exit)
			if tc.wantPath != "" {
				assert.Equal(t, tc.wantPath, cfg.SessionPath)
			}
			if tc.checkFunc != nil {
				tc.checkFunc(t, out.String())
			}
		})
	}
}

func TestParse_AllFlags(t *testing.T) {
	cfg, exit, err := Parse([]string{
		"-duration", "2s",
		"-sample-rate", "44100",
		"-block-size", "128",
		"-workers", "3",
		"-event-capacity", "64",
		"-healthcheck-port", "8080",
		"-log-format", "TEXT",
		"-log-level", "Debug",
		"-sentry-dsn", "https://key@sentry.example/1",
		"-sentry-env", "staging",
		"-nats-url", "nats://localhost:4222",
		"-nats-subject", "studio",
		"-otlp-endpoint", "localhost:4318",
		"session",
	}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, 2*time.Second, cfg.Duration)
	assert.Equal(t, 44100, cfg.SampleRate)
	assert.Equal(t, 128, cfg.BlockSize)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 64, cfg.EventCapacity)
	assert.Equal(t, 8080, cfg.HealthcheckPort)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "staging", cfg.SentryEnvironment)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, "studio", cfg.NATSSubject)
	assert.Equal(t, "localhost:4318", cfg.OTLPEndpoint)
}
