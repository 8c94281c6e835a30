package events

import (
	"context"
	"errors"

	"pooled-multisender/internal/core/ports"

	"github.com/rs/zerolog"
)

// LogEmitter writes ledger log messages to the structured log. It is the
// local rendition of the host's transaction log.
type LogEmitter struct {
	log zerolog.Logger
}

func NewLogEmitter(log zerolog.Logger) *LogEmitter {
	return &LogEmitter{log: log}
}

func (e *LogEmitter) Emit(_ context.Context, message string) error {
	e.log.Info().Str("ledger_log", message).Msg("ledger log")
	return nil
}

// Fanout emits every message to all sinks and joins their errors.
type Fanout []ports.EventEmitter

func (f Fanout) Emit(ctx context.Context, message string) error {
	var errs []error
	for _, e := range f {
		if err := e.Emit(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps emitted messages in memory.
type Recorder struct {
	ch chan string
}

// NewRecorder creates a Recorder buffering up to capacity messages; further
// messages are dropped.
func NewRecorder(capacity int) *Recorder {
	return &Recorder{ch: make(chan string, capacity)}
}

func (r *Recorder) Emit(_ context.Context, message string) error {
	select {
	case r.ch <- message:
	default:
	}
	return nil
}

// Drain returns and clears the recorded messages.
func (r *Recorder) Drain() []string {
	var out []string
	for {
		select {
		case m := <-r.ch:
			out = append(out, m)
		default:
			return out
		}
	}
}
