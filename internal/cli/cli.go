package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/dawgraph/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("dawgraph", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
dawgraph - A real-time audio/MIDI processing graph engine.

Usage:
  dawgraph [options] [SESSION_PATH]

Arguments:
  SESSION_PATH
    Path to a single .hcl session file or a directory of .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	sessionFlag := flagSet.String("session", "", "Path to the session file or directory.")
	sFlag := flagSet.String("s", "", "Path to the session file or directory (shorthand).")
	durationFlag := flagSet.Duration("duration", 0, "Stop after this long, e.g. '30s'. 0 runs until interrupted.")
	sampleRateFlag := flagSet.Int("sample-rate", 0, "Sample rate in Hz. 0 uses the session value or 48000.")
	blockSizeFlag := flagSet.Int("block-size", 0, "Frames per cycle. 0 uses the session value or 256.")
	workersFlag := flagSet.Int("workers", 0, "Number of background processing workers. 0 uses cores-1.")
	eventCapFlag := flagSet.Int("event-capacity", 0, "Events per event port and cycle. 0 uses the default.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	sentryDSNFlag := flagSet.String("sentry-dsn", "", "Sentry DSN for processor failure reports.")
	sentryEnvFlag := flagSet.String("sentry-env", "", "Sentry environment name.")
	natsURLFlag := flagSet.String("nats-url", "", "NATS server URL for publishing engine telemetry.")
	natsSubjectFlag := flagSet.String("nats-subject", "", "NATS subject for engine telemetry.")
	otlpFlag := flagSet.String("otlp-endpoint", "", "OTLP/HTTP collector host:port for graph rebuild traces.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	switch {
	case *sessionFlag != "":
		path = *sessionFlag
	case *sFlag != "":
		path = *sFlag
	case flagSet.NArg() > 0:
		path = flagSet.Arg(0)
	}
	slog.Debug("Session path determined.", "path", path)

	if path == "" {
		slog.Debug("No session path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		SessionPath:       path,
		Duration:          *durationFlag,
		SampleRate:        *sampleRateFlag,
		BlockSize:         *blockSizeFlag,
		Workers:           *workersFlag,
		EventCapacity:     *eventCapFlag,
		LogFormat:         logFormat,
		LogLevel:          logLevel,
		HealthcheckPort:   *healthPortFlag,
		SentryDSN:         *sentryDSNFlag,
		SentryEnvironment: *sentryEnvFlag,
		NATSURL:           *natsURLFlag,
		NATSSubject:       *natsSubjectFlag,
		OTLPEndpoint:      *otlpFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "session", config.SessionPath)
	return config, false, nil
}
