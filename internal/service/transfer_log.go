package service

import (
	"context"
	"strings"

	"pooled-multisender/internal/core/ports"

	"github.com/rs/zerolog"
)

// DefaultCombinedLogThreshold is the batch size from which transfer lines are
// accumulated into one message instead of being emitted one by one.
const DefaultCombinedLogThreshold = 100

// transferLog emits the per-transfer lines of one batch.
type transferLog struct {
	emitter ports.EventEmitter
	direct  bool
	lines   strings.Builder
	log     zerolog.Logger
}

func newTransferLog(emitter ports.EventEmitter, threshold, batchSize int, log zerolog.Logger) *transferLog {
	return &transferLog{
		emitter: emitter,
		direct:  batchSize < threshold,
		log:     log,
	}
}

// Add records one line, emitting it immediately in direct mode.
func (l *transferLog) Add(ctx context.Context, line string) {
	if l.direct {
		l.emit(ctx, line)
		return
	}
	l.lines.WriteString(line)
	l.lines.WriteByte('\n')
}

// Flush emits the combined message. It is a no-op in direct mode.
func (l *transferLog) Flush(ctx context.Context) {
	if l.direct {
		return
	}
	l.emit(ctx, "Done!\n"+l.lines.String())
	l.lines.Reset()
}

func (l *transferLog) emit(ctx context.Context, msg string) {
	if err := l.emitter.Emit(ctx, msg); err != nil {
		// Log sinks never affect balances.
		l.log.Warn().Err(err).Msg("failed to emit transfer log")
	}
}
