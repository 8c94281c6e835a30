package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pooled-multisender/internal/core/domain"
	"pooled-multisender/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Executor is the in-process transfer host. Dispatch only enqueues; Run
// drains the queue with a pool of workers that execute transfers on the
// payout rail and report outcomes of callback-carrying transfers as
// completions invoked by the ledger's own account.
type Executor struct {
	transfers   ports.Queue[domain.PendingTransfer]
	completions ports.Queue[domain.Completion]
	rail        ports.PayoutRail
	self        string
	workers     int
	pollTimeout time.Duration
	log         zerolog.Logger
	now         func() time.Time
}

const requeueTimeout = 5 * time.Second

// ExecutorConfig holds the Executor tunables.
type ExecutorConfig struct {
	SelfAccount string
	Workers     int
	PollTimeout time.Duration
}

func NewExecutor(
	transfers ports.Queue[domain.PendingTransfer],
	completions ports.Queue[domain.Completion],
	rail ports.PayoutRail,
	cfg ExecutorConfig,
	log zerolog.Logger,
) *Executor {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = time.Second
	}
	return &Executor{
		transfers:   transfers,
		completions: completions,
		rail:        rail,
		self:        cfg.SelfAccount,
		workers:     cfg.Workers,
		pollTimeout: cfg.PollTimeout,
		log:         log,
		now:         time.Now,
	}
}

// Dispatch implements ports.TransferHost.
func (e *Executor) Dispatch(ctx context.Context, req domain.TransferRequest) (domain.TransferHandle, error) {
	p := domain.PendingTransfer{
		ID:           uuid.New(),
		Recipient:    req.Recipient,
		Amount:       req.Amount,
		Callback:     req.Callback,
		DispatchedAt: e.now().UTC(),
	}
	if err := e.transfers.Push(ctx, p); err != nil {
		return domain.TransferHandle{}, fmt.Errorf("enqueue transfer %s: %w", p.ID, err)
	}
	return p.Handle(), nil
}

// Run executes queued transfers until ctx is canceled.
func (e *Executor) Run(ctx context.Context) error {
	e.log.Info().Int("workers", e.workers).Msg("transfer executor started")

	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			e.loop(ctx, id)
		}(i)
	}
	wg.Wait()

	e.log.Info().Msg("transfer executor stopped")
	return nil
}

func (e *Executor) loop(ctx context.Context, worker int) {
	log := e.log.With().Int("worker", worker).Logger()
	for {
		if ctx.Err() != nil {
			return
		}
		p, ok, err := e.transfers.Pop(ctx, e.pollTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			log.Error().Err(err).Msg("failed to pop transfer")
			sleep(ctx, e.pollTimeout)
			continue
		}
		if !ok {
			continue
		}
		e.Execute(ctx, p)
	}
}

// Execute runs one transfer and reports its outcome. A transfer whose rail
// call was cut short by shutdown has no known outcome: it is put back on the
// queue and reported=false. The rail sends the transfer id as
// Idempotency-Key, so the retry cannot pay twice.
func (e *Executor) Execute(ctx context.Context, p domain.PendingTransfer) (outcome domain.TransferOutcome, reported bool) {
	outcome = domain.TransferSucceeded
	if err := e.rail.Transfer(ctx, p); err != nil {
		if ctx.Err() != nil {
			e.requeue(ctx, p, err)
			return "", false
		}
		outcome = domain.TransferFailed
		e.log.Warn().
			Err(err).
			Str("transfer_id", p.ID.String()).
			Str("recipient", p.Recipient).
			Str("amount", p.Amount.String()).
			Msg("transfer failed")
	} else {
		e.log.Debug().
			Str("transfer_id", p.ID.String()).
			Str("recipient", p.Recipient).
			Msg("transfer executed")
	}

	if p.Callback == nil {
		return outcome, true
	}

	c := domain.Completion{
		TransferID: p.ID,
		Context:    *p.Callback,
		Invoker:    e.self,
		Results:    []domain.TransferOutcome{outcome},
	}
	// The transfer already happened; its completion must not be lost to shutdown.
	if err := e.completions.Push(context.WithoutCancel(ctx), c); err != nil {
		e.log.Error().
			Err(err).
			Str("transfer_id", p.ID.String()).
			Str("outcome", string(outcome)).
			Msg("failed to enqueue completion")
	}
	return outcome, true
}

func (e *Executor) requeue(ctx context.Context, p domain.PendingTransfer, cause error) {
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), requeueTimeout)
	defer cancel()
	if err := e.transfers.Push(pushCtx, p); err != nil {
		e.log.Error().
			Err(err).
			AnErr("cause", cause).
			Str("transfer_id", p.ID.String()).
			Str("recipient", p.Recipient).
			Str("amount", p.Amount.String()).
			Msg("interrupted transfer could not be requeued")
		return
	}
	e.log.Warn().
		AnErr("cause", cause).
		Str("transfer_id", p.ID.String()).
		Msg("transfer interrupted by shutdown, requeued")
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
