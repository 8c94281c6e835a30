package worker

import (
	"context"
	"errors"
	"strings"
	"time"

	"pooled-multisender/internal/core/domain"
	"pooled-multisender/internal/core/ports"
	"pooled-multisender/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	defaultReconcileAttempts = 5
	defaultReconcileBackoff  = time.Second
	requeueTimeout           = 5 * time.Second
)

// ReconcileConfig tunes how the worker polls and retries.
type ReconcileConfig struct {
	PollTimeout time.Duration
	// MaxAttempts bounds the reconciler calls made for one completion whose
	// failures are transient.
	MaxAttempts int
	// Backoff is the wait before the second attempt; it doubles per attempt.
	Backoff time.Duration
}

// ReconcileWorker delivers completions queued by the transfer host to the
// reconciler, one at a time and in arrival order. Completions the reconciler
// cannot apply are parked on the dead-letter queue, except integrity
// violations which are only logged.
type ReconcileWorker struct {
	completions ports.Queue[domain.Completion]
	deadLetters ports.Queue[domain.Completion]
	reconciler  ports.ReconcilerService
	cfg         ReconcileConfig
	log         zerolog.Logger
}

func NewReconcileWorker(
	completions ports.Queue[domain.Completion],
	deadLetters ports.Queue[domain.Completion],
	reconciler ports.ReconcilerService,
	cfg ReconcileConfig,
	log zerolog.Logger,
) *ReconcileWorker {
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultReconcileAttempts
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultReconcileBackoff
	}
	return &ReconcileWorker{
		completions: completions,
		deadLetters: deadLetters,
		reconciler:  reconciler,
		cfg:         cfg,
		log:         log,
	}
}

// Run processes completions until ctx is canceled.
func (w *ReconcileWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("reconcile worker started")
	defer w.log.Info().Msg("reconcile worker stopped")

	for {
		if ctx.Err() != nil {
			return nil
		}
		c, ok, err := w.completions.Pop(ctx, w.cfg.PollTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			w.log.Error().Err(err).Msg("failed to pop completion")
			continue
		}
		if !ok {
			continue
		}
		w.Process(ctx, c)
	}
}

// Process hands one completion to the reconciler, retrying transient
// failures with exponential backoff. Cancelling ctx stops the retries and
// puts the completion back on the queue; a reconciler call already in
// flight is never cancelled.
func (w *ReconcileWorker) Process(ctx context.Context, c domain.Completion) {
	opCtx := context.WithoutCancel(ctx)
	log := w.log.With().
		Str("transfer_id", c.TransferID.String()).
		Str("sender", c.Context.Sender).
		Str("source", string(c.Context.Source)).
		Logger()

	backoff := w.cfg.Backoff
	var err error
	for attempt := 1; attempt <= w.cfg.MaxAttempts; attempt++ {
		err = w.reconciler.Handle(opCtx, c)
		if err == nil {
			return
		}
		if isIntegrityError(err) {
			log.Error().Err(err).Msg("completion rejected")
			return
		}
		if !isTransient(err) {
			log.Warn().Err(err).Msg("completion rejected")
			w.deadLetter(opCtx, log, c)
			return
		}
		if attempt == w.cfg.MaxAttempts {
			break
		}

		log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", backoff).Msg("reconcile failed, retrying")
		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			w.requeue(opCtx, log, c)
			return
		}
	}

	log.Error().Err(err).Int("attempts", w.cfg.MaxAttempts).Msg("reconcile retries exhausted")
	w.deadLetter(opCtx, log, c)
}

func (w *ReconcileWorker) requeue(ctx context.Context, log zerolog.Logger, c domain.Completion) {
	pushCtx, cancel := context.WithTimeout(ctx, requeueTimeout)
	defer cancel()
	if err := w.completions.Push(pushCtx, c); err != nil {
		log.Error().Err(err).Msg("failed to requeue completion, dead-lettering")
		w.deadLetter(ctx, log, c)
		return
	}
	log.Warn().Msg("completion requeued on shutdown")
}

func (w *ReconcileWorker) deadLetter(ctx context.Context, log zerolog.Logger, c domain.Completion) {
	pushCtx, cancel := context.WithTimeout(ctx, requeueTimeout)
	defer cancel()
	if err := w.deadLetters.Push(pushCtx, c); err != nil {
		log.Error().Err(err).
			Str("recipient", c.Context.Recipient).
			Str("amount", c.Context.Amount.String()).
			Msg("completion lost, dead-letter queue unavailable")
		return
	}
	log.Error().Msg("completion dead-lettered")
}

func isIntegrityError(err error) bool {
	return apperror.Is(err, apperror.CodeCallerNotSelf) || apperror.Is(err, apperror.CodeUnexpectedResults)
}

// isTransient reports whether retrying may succeed: storage, lock and other
// system failures, and errors that carry no ledger code at all.
func isTransient(err error) bool {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return true
	}
	return strings.HasPrefix(appErr.Code, "SYS_")
}
