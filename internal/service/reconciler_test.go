package service

import (
	"context"
	"errors"
	"testing"

	"pooled-multisender/internal/adapter/storage/memory"
	"pooled-multisender/internal/core/domain"
	"pooled-multisender/internal/core/ports/mocks"
	"pooled-multisender/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"lukechampine.com/uint128"
)

func failedCompletion(source domain.FundingSource, amount uint64) domain.Completion {
	return domain.Completion{
		TransferID: uuid.New(),
		Context: domain.TransferContext{
			Sender:    testCaller,
			Amount:    uint128.From64(amount),
			Recipient: "bob.near",
			Source:    source,
		},
		Invoker: testSelf,
		Results: []domain.TransferOutcome{domain.TransferFailed},
	}
}

func setupReconciler(t *testing.T) (*ReconcilerServiceImpl, *memory.DepositStore, *mocks.MockEventEmitter) {
	ctrl := gomock.NewController(t)
	store := memory.NewDepositStore()
	emitter := mocks.NewMockEventEmitter(ctrl)
	return NewReconcilerService(store, emitter, testSelf, zerolog.Nop()), store, emitter
}

func TestReconciler_FailureCreditsSender(t *testing.T) {
	tests := []struct {
		name    string
		source  domain.FundingSource
		handler func(*ReconcilerServiceImpl) func(context.Context, domain.Completion) error
		message string
	}{
		{
			name:    "from balance",
			source:  domain.FundingBalance,
			handler: func(r *ReconcilerServiceImpl) func(context.Context, domain.Completion) error { return r.OnTransferFromBalance },
			message: "Transaction to @bob.near failed. 1500000000000000000000000 yNEAR (~2 NEAR) kept on the app deposit",
		},
		{
			name:    "attached tokens",
			source:  domain.FundingAttached,
			handler: func(r *ReconcilerServiceImpl) func(context.Context, domain.Completion) error { return r.OnTransferAttachedTokens },
			message: "Transaction to @bob.near failed. 1500000000000000000000000 yNEAR (~2 NEAR) moved to the app deposit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, store, emitter := setupReconciler(t)
			ctx := context.Background()
			amount, err := domain.ParseAmount("1500000000000000000000000")
			require.NoError(t, err)

			emitter.EXPECT().Emit(gomock.Any(), tt.message).Return(nil)

			c := failedCompletion(tt.source, 0)
			c.Context.Amount = amount
			require.NoError(t, tt.handler(r)(ctx, c))

			balance, exists, err := store.Get(ctx, testCaller)
			require.NoError(t, err)
			assert.True(t, exists, "credit-back creates the entry")
			assert.Equal(t, amount, balance)

			_, exists, _ = store.Get(ctx, "bob.near")
			assert.False(t, exists, "recipients are never credited")
		})
	}
}

func TestReconciler_SuccessLeavesBalance(t *testing.T) {
	r, store, _ := setupReconciler(t)
	c := failedCompletion(domain.FundingBalance, 40)
	c.Results = []domain.TransferOutcome{domain.TransferSucceeded}

	require.NoError(t, r.Handle(context.Background(), c))
	assert.Equal(t, 0, store.Accounts())
}

func TestReconciler_RejectsForeignInvoker(t *testing.T) {
	r, store, _ := setupReconciler(t)
	c := failedCompletion(domain.FundingBalance, 40)
	c.Invoker = "mallory.near"

	err := r.OnTransferFromBalance(context.Background(), c)
	assertCode(t, err, apperror.CodeCallerNotSelf)
	assert.Equal(t, 0, store.Accounts())
}

func TestReconciler_RequiresExactlyOneResult(t *testing.T) {
	for _, results := range [][]domain.TransferOutcome{
		nil,
		{domain.TransferFailed, domain.TransferFailed},
	} {
		r, store, _ := setupReconciler(t)
		c := failedCompletion(domain.FundingAttached, 40)
		c.Results = results

		err := r.OnTransferAttachedTokens(context.Background(), c)
		assertCode(t, err, apperror.CodeUnexpectedResults)
		assert.Equal(t, 0, store.Accounts())
	}
}

func TestReconciler_UnknownOutcome(t *testing.T) {
	r, _, _ := setupReconciler(t)
	c := failedCompletion(domain.FundingBalance, 40)
	c.Results = []domain.TransferOutcome{"MAYBE"}

	err := r.Handle(context.Background(), c)
	assertCode(t, err, apperror.CodeUnexpectedResults)
}

func TestReconciler_HandleRejectsUnreconciledSources(t *testing.T) {
	for _, source := range []domain.FundingSource{domain.FundingBalanceUnsafe, domain.FundingWithdrawal, ""} {
		r, store, _ := setupReconciler(t)

		err := r.Handle(context.Background(), failedCompletion(source, 40))
		assertCode(t, err, apperror.CodeInvalidRequest)
		assert.Equal(t, 0, store.Accounts())
	}
}

// Duplicate deliveries are not detected; each failed completion credits.
func TestReconciler_DuplicateDeliveryCreditsTwice(t *testing.T) {
	r, store, emitter := setupReconciler(t)
	emitter.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	c := failedCompletion(domain.FundingBalance, 40)

	require.NoError(t, r.Handle(context.Background(), c))
	require.NoError(t, r.Handle(context.Background(), c))

	balance, _, _ := store.Get(context.Background(), testCaller)
	assert.Equal(t, uint128.From64(80), balance)
}

func TestReconciler_StoreErrorIsReturned(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockBalanceStore(ctrl)
	store.EXPECT().Update(gomock.Any(), testCaller, gomock.Any()).Return(uint128.Zero, errors.New("deadlock detected"))

	r := NewReconcilerService(store, mocks.NewMockEventEmitter(ctrl), testSelf, zerolog.Nop())
	err := r.Handle(context.Background(), failedCompletion(domain.FundingBalance, 40))
	assertCode(t, err, apperror.CodeInternal)
}
