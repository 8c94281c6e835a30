package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "pooled-multisender"

// New builds the process logger. level is one of debug, info, warn, error;
// unknown levels fall back to info. pretty switches to console output.
func New(level string, pretty bool) zerolog.Logger {
	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	host, _ := os.Hostname()
	return NewWithWriter(level, w).With().
		Caller().
		Str("service", serviceName).
		Str("host", host).
		Logger()
}

// NewWithWriter builds a JSON logger on w.
func NewWithWriter(level string, w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// Component returns a child logger tagged with the component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// ParseLevel maps a config level to zerolog. Trace and fatal are not
// exposed through config.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.InfoLevel
	}
	switch lvl {
	case zerolog.DebugLevel, zerolog.InfoLevel, zerolog.WarnLevel, zerolog.ErrorLevel:
		return lvl
	default:
		return zerolog.InfoLevel
	}
}

// WithAccount attaches the calling account to the logger carried by ctx.
func WithAccount(ctx context.Context, log zerolog.Logger, account string) context.Context {
	return log.With().Str("account_id", account).Logger().WithContext(ctx)
}

// From returns the logger stored in ctx, or fallback when there is none.
func From(ctx context.Context, fallback zerolog.Logger) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return fallback
}
