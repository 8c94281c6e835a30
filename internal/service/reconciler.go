package service

import (
	"context"
	"fmt"
	"net/http"

	"pooled-multisender/internal/core/domain"
	"pooled-multisender/internal/core/ports"
	"pooled-multisender/pkg/apperror"

	"github.com/rs/zerolog"
)

// ReconcilerServiceImpl implements ports.ReconcilerService.
//
// Each completion is assumed to be delivered once per dispatched transfer.
// A duplicate delivery of a failed outcome credits the sender twice.
type ReconcilerServiceImpl struct {
	store   ports.BalanceStore
	emitter ports.EventEmitter
	self    string
	log     zerolog.Logger
}

// NewReconcilerService creates a reconciler that only honours completions
// invoked by self, the ledger's own account.
func NewReconcilerService(store ports.BalanceStore, emitter ports.EventEmitter, self string, log zerolog.Logger) *ReconcilerServiceImpl {
	return &ReconcilerServiceImpl{
		store:   store,
		emitter: emitter,
		self:    self,
		log:     log,
	}
}

// OnTransferFromBalance credits the sender back when a balance-funded
// transfer failed.
func (s *ReconcilerServiceImpl) OnTransferFromBalance(ctx context.Context, c domain.Completion) error {
	return s.reconcile(ctx, c, "kept on the app deposit")
}

// OnTransferAttachedTokens credits the sender when a transfer funded by an
// attached payment failed.
func (s *ReconcilerServiceImpl) OnTransferAttachedTokens(ctx context.Context, c domain.Completion) error {
	return s.reconcile(ctx, c, "moved to the app deposit")
}

// Handle routes a completion by the funding source recorded at dispatch.
func (s *ReconcilerServiceImpl) Handle(ctx context.Context, c domain.Completion) error {
	switch c.Context.Source {
	case domain.FundingBalance:
		return s.OnTransferFromBalance(ctx, c)
	case domain.FundingAttached:
		return s.OnTransferAttachedTokens(ctx, c)
	default:
		return apperror.Validation(fmt.Sprintf("no completion handler for %q transfers", c.Context.Source))
	}
}

func (s *ReconcilerServiceImpl) reconcile(ctx context.Context, c domain.Completion, disposition string) error {
	log := s.log.With().
		Str("transfer_id", c.TransferID.String()).
		Str("sender", c.Context.Sender).
		Str("recipient", c.Context.Recipient).
		Str("amount", c.Context.Amount.String()).
		Logger()

	if c.Invoker != s.self {
		err := apperror.ErrCallerNotSelf(c.Invoker, s.self)
		log.Error().Err(err).Msg("completion rejected")
		return err
	}
	if len(c.Results) != 1 {
		err := apperror.ErrUnexpectedResults(len(c.Results))
		log.Error().Err(err).Msg("completion rejected")
		return err
	}

	switch c.Results[0] {
	case domain.TransferSucceeded:
		log.Debug().Msg("transfer succeeded")
		return nil
	case domain.TransferFailed:
	default:
		err := apperror.New(apperror.CodeUnexpectedResults,
			fmt.Sprintf("Unknown transfer outcome %q", c.Results[0]), http.StatusInternalServerError)
		log.Error().Err(err).Msg("completion rejected")
		return err
	}

	balance, err := s.store.Update(ctx, c.Context.Sender, credit(c.Context.Amount))
	if err != nil {
		log.Error().Err(err).Msg("failed to credit back failed transfer")
		return storeError("credit back", err)
	}

	msg := fmt.Sprintf("Transaction to @%s failed. %s yNEAR (~%s NEAR) %s",
		c.Context.Recipient, c.Context.Amount, domain.NearApprox(c.Context.Amount), disposition)
	if err := s.emitter.Emit(ctx, msg); err != nil {
		log.Warn().Err(err).Msg("failed to emit reconciliation log")
	}

	log.Info().Str("balance", balance.String()).Msg("failed transfer credited back")
	return nil
}
