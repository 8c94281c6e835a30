package host

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pooled-multisender/internal/adapter/storage/memory"
	"pooled-multisender/internal/core/domain"
	"pooled-multisender/internal/core/ports/mocks"
	"pooled-multisender/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"lukechampine.com/uint128"
)

func setupExecutor(t *testing.T, rail *mocks.MockPayoutRail) (*Executor, *memory.Queue[domain.PendingTransfer], *memory.Queue[domain.Completion]) {
	t.Helper()
	transfers := memory.NewQueue[domain.PendingTransfer](16)
	completions := memory.NewQueue[domain.Completion](16)
	e := NewExecutor(transfers, completions, rail, ExecutorConfig{
		SelfAccount: "multisender.near",
		Workers:     2,
		PollTimeout: 10 * time.Millisecond,
	}, zerolog.Nop())
	return e, transfers, completions
}

func TestExecutor_DispatchOnlyEnqueues(t *testing.T) {
	ctrl := gomock.NewController(t)
	rail := mocks.NewMockPayoutRail(ctrl)
	e, transfers, _ := setupExecutor(t, rail)

	handle, err := e.Dispatch(context.Background(), domain.TransferRequest{
		Recipient: "bob.near",
		Amount:    uint128.From64(42),
	})

	require.NoError(t, err)
	assert.Equal(t, "bob.near", handle.Recipient)
	assert.Equal(t, "42", handle.Amount)
	assert.Equal(t, 1, transfers.Len())
}

func TestExecutor_DispatchQueueFull(t *testing.T) {
	transfers := memory.NewQueue[domain.PendingTransfer](1)
	e := NewExecutor(transfers, memory.NewQueue[domain.Completion](1), nil, ExecutorConfig{}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := e.Dispatch(ctx, domain.TransferRequest{Recipient: "a.near", Amount: uint128.From64(1)})
	require.NoError(t, err)
	_, err = e.Dispatch(ctx, domain.TransferRequest{Recipient: "b.near", Amount: uint128.From64(1)})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecutor_Execute_ReportsOutcomeForCallbacks(t *testing.T) {
	ctrl := gomock.NewController(t)
	rail := mocks.NewMockPayoutRail(ctrl)
	e, _, completions := setupExecutor(t, rail)

	cb := &domain.TransferContext{Sender: "alice.near", Amount: uint128.From64(5), Recipient: "bob.near", Source: domain.FundingBalance}
	ok := domain.PendingTransfer{Recipient: "bob.near", Amount: uint128.From64(5), Callback: cb}
	bad := domain.PendingTransfer{Recipient: "bob.near", Amount: uint128.From64(5), Callback: cb}

	gomock.InOrder(
		rail.EXPECT().Transfer(gomock.Any(), ok).Return(nil),
		rail.EXPECT().Transfer(gomock.Any(), bad).Return(errors.New("no such account")),
	)

	outcome, reported := e.Execute(context.Background(), ok)
	assert.True(t, reported)
	assert.Equal(t, domain.TransferSucceeded, outcome)
	outcome, reported = e.Execute(context.Background(), bad)
	assert.True(t, reported)
	assert.Equal(t, domain.TransferFailed, outcome)

	require.Equal(t, 2, completions.Len())
	c, _, _ := completions.Pop(context.Background(), time.Second)
	assert.Equal(t, "multisender.near", c.Invoker)
	assert.Equal(t, *cb, c.Context)
	assert.Equal(t, []domain.TransferOutcome{domain.TransferSucceeded}, c.Results)
	c, _, _ = completions.Pop(context.Background(), time.Second)
	assert.Equal(t, []domain.TransferOutcome{domain.TransferFailed}, c.Results)
}

func TestExecutor_Execute_NoCallbackNoCompletion(t *testing.T) {
	ctrl := gomock.NewController(t)
	rail := mocks.NewMockPayoutRail(ctrl)
	e, _, completions := setupExecutor(t, rail)

	rail.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(errors.New("rejected"))

	outcome, _ := e.Execute(context.Background(), domain.PendingTransfer{Recipient: "bob.near"})
	assert.Equal(t, domain.TransferFailed, outcome)
	assert.Equal(t, 0, completions.Len())
}

func TestExecutor_Execute_ShutdownMidPayoutRequeues(t *testing.T) {
	var received atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rail := NewHTTPRail(HTTPRailConfig{URL: srv.URL, Secret: "payout-secret", MaxAttempts: 1},
		srv.Client(), service.NewHMACSignatureService(), zerolog.Nop())
	transfers := memory.NewQueue[domain.PendingTransfer](4)
	completions := memory.NewQueue[domain.Completion](4)
	e := NewExecutor(transfers, completions, rail, ExecutorConfig{SelfAccount: "multisender.near"}, zerolog.Nop())

	p := domain.PendingTransfer{
		ID:        uuid.New(),
		Recipient: "bob.near",
		Amount:    uint128.From64(10),
		Callback:  &domain.TransferContext{Sender: "alice.near", Amount: uint128.From64(10), Recipient: "bob.near", Source: domain.FundingBalance},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, reported := e.Execute(ctx, p)

	assert.False(t, reported)
	assert.Equal(t, int32(1), received.Load())
	assert.Equal(t, 0, completions.Len(), "no outcome may be reported for an interrupted payout")
	require.Equal(t, 1, transfers.Len())
	requeued, ok, err := transfers.Pop(context.Background(), time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p.ID, requeued.ID)
}

func TestExecutor_RunDrainsQueue(t *testing.T) {
	rail := NewSimulatedRail([]string{"broken.near"})
	transfers := memory.NewQueue[domain.PendingTransfer](16)
	completions := memory.NewQueue[domain.Completion](16)
	e := NewExecutor(transfers, completions, rail, ExecutorConfig{
		SelfAccount: "multisender.near",
		Workers:     3,
		PollTimeout: 5 * time.Millisecond,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = e.Run(ctx)
		close(done)
	}()

	for _, r := range []string{"bob.near", "carol.near", "broken.near"} {
		_, err := e.Dispatch(ctx, domain.TransferRequest{
			Recipient: r,
			Amount:    uint128.From64(7),
			Callback:  &domain.TransferContext{Sender: "alice.near", Amount: uint128.From64(7), Recipient: r, Source: domain.FundingAttached},
		})
		require.NoError(t, err)
	}

	outcomes := map[string]domain.TransferOutcome{}
	for len(outcomes) < 3 {
		c, ok, err := completions.Pop(ctx, time.Second)
		require.NoError(t, err)
		require.True(t, ok, "completion should arrive")
		outcomes[c.Context.Recipient] = c.Results[0]
	}
	cancel()
	<-done

	assert.Equal(t, domain.TransferSucceeded, outcomes["bob.near"])
	assert.Equal(t, domain.TransferSucceeded, outcomes["carol.near"])
	assert.Equal(t, domain.TransferFailed, outcomes["broken.near"])
	assert.Equal(t, uint128.From64(7), rail.Received("bob.near"))
	assert.True(t, rail.Received("broken.near").IsZero())
}
