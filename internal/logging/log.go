// Package logging wraps zerolog with the small level/profile surface
// ratree's command handlers and server loop log through. It replaces
// the teacher's private github.com/danmuck/smplog dependency (no
// retrievable source in this pack, see DESIGN.md) with zerolog
// directly, in the same Config/Level/Configure shape smplog exposed —
// grounded on internal/observability/logger.go's zerolog.ConsoleWriter
// setup.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Level mirrors zerolog's level constants under ratree's own name, so
// callers never import zerolog directly.
type Level = zerolog.Level

const (
	TraceLevel = zerolog.TraceLevel
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	Disabled   = zerolog.Disabled
)

// Config controls the process-wide logger built by Configure.
type Config struct {
	Level     Level
	Timestamp bool
	NoColor   bool
	Bypass    bool
}

// DefaultConfig returns info-level, timestamped, colorized output.
func DefaultConfig() Config {
	return Config{Level: InfoLevel, Timestamp: true}
}

var logger zerolog.Logger

func init() {
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// Apply rebuilds the process-wide logger from cfg. Unlike smplog's
// once-only Configure, this may be called more than once — tests
// commonly reconfigure between profiles.
func Apply(cfg Config) {
	if cfg.Bypass {
		logger = zerolog.Nop()
		return
	}
	out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339, NoColor: cfg.NoColor}
	ctx := zerolog.New(out).Level(cfg.Level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	logger = ctx.Logger()
}

func Infof(format string, args ...any)  { logger.Info().Msgf(format, args...) }
func Warnf(format string, args ...any)  { logger.Warn().Msgf(format, args...) }
func Errf(format string, args ...any)   { logger.Error().Msgf(format, args...) }
func Debugf(format string, args ...any) { logger.Debug().Msgf(format, args...) }

// WithComponent returns a *zerolog.Event-backed sub-logger tagged with
// a "component" field, for call sites that want structured fields
// beyond a formatted message (spec §6's per-connection/per-command
// logging).
func WithComponent(name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
