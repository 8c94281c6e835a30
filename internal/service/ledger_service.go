package service

import (
	"context"
	"errors"
	"fmt"

	"pooled-multisender/internal/core/domain"
	"pooled-multisender/internal/core/ports"
	"pooled-multisender/pkg/apperror"
	"pooled-multisender/pkg/logger"

	"github.com/rs/zerolog"
	"lukechampine.com/uint128"
)

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	store     ports.BalanceStore
	host      ports.TransferHost
	locker    ports.InvocationLocker
	emitter   ports.EventEmitter
	threshold int
	log       zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl. combinedLogThreshold is
// the batch size from which transfer lines are emitted as one message.
func NewLedgerService(
	store ports.BalanceStore,
	host ports.TransferHost,
	locker ports.InvocationLocker,
	emitter ports.EventEmitter,
	combinedLogThreshold int,
	log zerolog.Logger,
) *LedgerServiceImpl {
	if combinedLogThreshold <= 0 {
		combinedLogThreshold = DefaultCombinedLogThreshold
	}
	return &LedgerServiceImpl{
		store:     store,
		host:      host,
		locker:    locker,
		emitter:   emitter,
		threshold: combinedLogThreshold,
		log:       log,
	}
}

func callerLockKey(caller string) string {
	return "ledger:caller:" + caller
}

// Deposit adds attached to the caller's balance, creating the entry if absent.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, caller string, attached domain.Amount) (domain.Amount, error) {
	balance, err := s.store.Update(ctx, caller, credit(attached))
	if err != nil {
		return uint128.Zero, storeError("deposit", err)
	}

	s.log.Info().
		Str("account_id", caller).
		Str("amount", attached.String()).
		Str("balance", balance.String()).
		Msg("deposit accepted")

	return balance, nil
}

// Withdraw zeroes the caller's balance and dispatches the full amount back to
// the caller. The transfer carries no completion context: a failed
// withdrawal is not credited back.
func (s *LedgerServiceImpl) Withdraw(ctx context.Context, caller string) (domain.TransferHandle, error) {
	var handle domain.TransferHandle

	err := s.locker.WithLock(ctx, callerLockKey(caller), func(ctx context.Context) error {
		var amount domain.Amount
		_, err := s.store.Update(ctx, caller, func(current domain.Amount, exists bool) (domain.Amount, error) {
			if !exists {
				return current, apperror.ErrUnknownUser()
			}
			if current.IsZero() {
				return current, apperror.ErrNothingToWithdraw()
			}
			amount = current
			return uint128.Zero, nil
		})
		if err != nil {
			return storeError("withdraw", err)
		}

		s.emit(ctx, fmt.Sprintf("@%s withdrawing %s", caller, amount))

		handle, err = s.host.Dispatch(ctx, domain.TransferRequest{Recipient: caller, Amount: amount})
		if err != nil {
			s.restore(ctx, caller, amount)
			return apperror.ErrDispatchIncomplete(0, 1, err)
		}
		return nil
	})
	if err != nil {
		return domain.TransferHandle{}, err
	}

	s.log.Info().
		Str("account_id", caller).
		Str("amount", handle.Amount).
		Str("transfer_id", handle.ID.String()).
		Msg("withdrawal dispatched")

	return handle, nil
}

// MultisendAttachedTokens funds the batch from the payment attached to the
// call. Nothing is debited; a failed transfer is credited to the caller's
// balance by the completion handler.
func (s *LedgerServiceImpl) MultisendAttachedTokens(ctx context.Context, caller string, attached domain.Amount, ops []domain.Operation) (*ports.MultisendResult, error) {
	total, err := ValidateBatch(ops, attached, domain.FundingAttached)
	if err != nil {
		return nil, err
	}

	tlog := newTransferLog(s.emitter, s.threshold, len(ops), s.log)
	defer tlog.Flush(ctx)

	result := &ports.MultisendResult{Total: total, Transfers: make([]domain.TransferHandle, 0, len(ops))}
	for i, op := range ops {
		handle, err := s.host.Dispatch(ctx, domain.TransferRequest{
			Recipient: op.Recipient,
			Amount:    op.Amount,
			Callback: &domain.TransferContext{
				Sender:    caller,
				Amount:    op.Amount,
				Recipient: op.Recipient,
				Source:    domain.FundingAttached,
			},
		})
		if err != nil {
			// The undispatched part of the attachment stays with the ledger
			// as the caller's deposit.
			s.restore(ctx, caller, sumAmounts(ops[i:]))
			return nil, apperror.ErrDispatchIncomplete(i, len(ops), err)
		}
		tlog.Add(ctx, fmt.Sprintf("Sending %s yNEAR (~%s NEAR) to account @%s", op.Amount, domain.NearApprox(op.Amount), op.Recipient))
		result.Transfers = append(result.Transfers, handle)
	}

	if attached.Cmp(total) > 0 {
		s.log.Warn().
			Str("account_id", caller).
			Str("surplus", attached.Sub(total).String()).
			Msg("attached payment exceeds batch total, surplus kept by the ledger")
	}

	s.log.Info().
		Str("account_id", caller).
		Int("operations", len(ops)).
		Str("total", total.String()).
		Msg("attached multisend dispatched")

	return result, nil
}

// MultisendFromBalance funds the batch from the caller's stored balance. Each
// operation is debited before its transfer is dispatched; a failed transfer
// is credited back by the completion handler.
func (s *LedgerServiceImpl) MultisendFromBalance(ctx context.Context, caller string, ops []domain.Operation) (*ports.MultisendResult, error) {
	var result *ports.MultisendResult

	err := s.locker.WithLock(ctx, callerLockKey(caller), func(ctx context.Context) error {
		total, err := s.validateAgainstBalance(ctx, caller, ops, domain.FundingBalance)
		if err != nil {
			return err
		}

		tlog := newTransferLog(s.emitter, s.threshold, len(ops), s.log)
		defer tlog.Flush(ctx)

		result = &ports.MultisendResult{Total: total, Transfers: make([]domain.TransferHandle, 0, len(ops))}
		for i, op := range ops {
			if _, err := s.store.Update(ctx, caller, debit(op.Amount)); err != nil {
				return storeError("debit operation", err)
			}

			handle, err := s.host.Dispatch(ctx, domain.TransferRequest{
				Recipient: op.Recipient,
				Amount:    op.Amount,
				Callback: &domain.TransferContext{
					Sender:    caller,
					Amount:    op.Amount,
					Recipient: op.Recipient,
					Source:    domain.FundingBalance,
				},
			})
			if err != nil {
				s.restore(ctx, caller, op.Amount)
				return apperror.ErrDispatchIncomplete(i, len(ops), err)
			}
			tlog.Add(ctx, fmt.Sprintf("Sending %s yNEAR (~%s NEAR) to account @%s", op.Amount, domain.NearApprox(op.Amount), op.Recipient))
			result.Transfers = append(result.Transfers, handle)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("account_id", caller).
		Int("operations", len(ops)).
		Str("total", result.Total.String()).
		Msg("balance multisend dispatched")

	return result, nil
}

// MultisendFromBalanceUnsafe debits the whole batch total up front and
// dispatches without completion contexts. Funds of failed transfers are
// forfeited.
func (s *LedgerServiceImpl) MultisendFromBalanceUnsafe(ctx context.Context, caller string, ops []domain.Operation) (*ports.MultisendResult, error) {
	var result *ports.MultisendResult

	err := s.locker.WithLock(ctx, callerLockKey(caller), func(ctx context.Context) error {
		total, err := s.validateAgainstBalance(ctx, caller, ops, domain.FundingBalanceUnsafe)
		if err != nil {
			return err
		}

		if _, err := s.store.Update(ctx, caller, debit(total)); err != nil {
			return storeError("debit batch", err)
		}

		tlog := newTransferLog(s.emitter, s.threshold, len(ops), s.log)
		defer tlog.Flush(ctx)

		result = &ports.MultisendResult{Total: total, Transfers: make([]domain.TransferHandle, 0, len(ops))}
		for i, op := range ops {
			handle, err := s.host.Dispatch(ctx, domain.TransferRequest{Recipient: op.Recipient, Amount: op.Amount})
			if err != nil {
				s.restore(ctx, caller, sumAmounts(ops[i:]))
				return apperror.ErrDispatchIncomplete(i, len(ops), err)
			}
			tlog.Add(ctx, fmt.Sprintf("Sending %s yNEAR to account @%s", op.Amount, op.Recipient))
			result.Transfers = append(result.Transfers, handle)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("account_id", caller).
		Int("operations", len(ops)).
		Str("total", result.Total.String()).
		Msg("unsafe balance multisend dispatched")

	return result, nil
}

// GetDeposit returns the stored balance of account, zero when absent.
func (s *LedgerServiceImpl) GetDeposit(ctx context.Context, account string) (domain.Amount, error) {
	balance, _, err := s.store.Get(ctx, account)
	if err != nil {
		return uint128.Zero, storeError("get deposit", err)
	}
	return balance, nil
}

func (s *LedgerServiceImpl) validateAgainstBalance(ctx context.Context, caller string, ops []domain.Operation, source domain.FundingSource) (domain.Amount, error) {
	balance, exists, err := s.store.Get(ctx, caller)
	if err != nil {
		return uint128.Zero, storeError("read balance", err)
	}
	if !exists {
		return uint128.Zero, apperror.ErrUnknownUser()
	}
	return ValidateBatch(ops, balance, source)
}

// restore credits funds whose transfer was never dispatched.
func (s *LedgerServiceImpl) restore(ctx context.Context, account string, amount domain.Amount) {
	if amount.IsZero() {
		return
	}
	// Credit even when the request context is already canceled.
	ctx = context.WithoutCancel(ctx)
	log := logger.From(ctx, s.log)
	if _, err := s.store.Update(ctx, account, credit(amount)); err != nil {
		log.Error().
			Err(err).
			Str("account_id", account).
			Str("amount", amount.String()).
			Msg("failed to restore undispatched funds")
		return
	}
	log.Warn().
		Str("account_id", account).
		Str("amount", amount.String()).
		Msg("transfer host refused dispatch, funds restored to deposit")
}

func (s *LedgerServiceImpl) emit(ctx context.Context, msg string) {
	if err := s.emitter.Emit(ctx, msg); err != nil {
		s.log.Warn().Err(err).Msg("failed to emit ledger log")
	}
}

func credit(amount domain.Amount) ports.UpdateFunc {
	return func(current domain.Amount, _ bool) (domain.Amount, error) {
		next := current.AddWrap(amount)
		if next.Cmp(current) < 0 {
			return current, apperror.ErrAmountOverflow()
		}
		return next, nil
	}
}

func debit(amount domain.Amount) ports.UpdateFunc {
	return func(current domain.Amount, _ bool) (domain.Amount, error) {
		if current.Cmp(amount) < 0 {
			return current, apperror.ErrNotEnoughDeposited(current, amount)
		}
		return current.Sub(amount), nil
	}
}

// storeError passes application errors through and wraps everything else.
func storeError(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.InternalError(fmt.Errorf("%s: %w", op, err))
}
