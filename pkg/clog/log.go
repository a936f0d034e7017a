// Package clog wraps zerolog with the component/session_id/request_id
// fields every package in this repo attaches to its log lines, and a single
// package-level Logger so call sites don't thread one through explicitly.
package clog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

func init() {
	log = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Config controls the global logger's format and level.
type Config struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string
	// JSON selects structured JSON output; false selects a human-readable
	// console writer (used by the dbclient CLI's default output).
	JSON bool
	// Output overrides the destination; nil means os.Stderr.
	Output io.Writer
}

// Init (re)configures the package-level logger. Call once at process
// start; safe to call again in tests that want a captured Output.
func Init(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if !cfg.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// WithComponent returns a logger scoped to the named component (e.g.
// "session", "logwriter", "transport").
func WithComponent(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// WithSession returns a logger scoped to a session index, the server-
// assigned transaction index.
func WithSession(sessionID int32) zerolog.Logger {
	return log.With().Int32("session_id", sessionID).Logger()
}

// WithRequest returns a logger scoped to a single RPC's op name and a
// monotonically increasing request id, for correlating request/reply log
// lines across the transport boundary.
func WithRequest(op string, requestID uint64) zerolog.Logger {
	return log.With().Str("op", op).Uint64("request_id", requestID).Logger()
}

func Debug() *zerolog.Event { return log.Debug() }
func Info() *zerolog.Event  { return log.Info() }
func Warn() *zerolog.Event  { return log.Warn() }
func Error() *zerolog.Event { return log.Error() }

func Errorf(err error, format string, args ...any) {
	log.Error().Err(err).Msgf(format, args...)
}

func Fatal() *zerolog.Event { return log.Fatal() }
