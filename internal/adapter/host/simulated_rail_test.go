package host

import (
	"context"
	"testing"

	"pooled-multisender/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"lukechampine.com/uint128"
)

func TestSimulatedRail(t *testing.T) {
	rail := NewSimulatedRail([]string{"gone.near"})
	ctx := context.Background()

	assert.NoError(t, rail.Transfer(ctx, domain.PendingTransfer{Recipient: "bob.near", Amount: uint128.From64(3)}))
	assert.NoError(t, rail.Transfer(ctx, domain.PendingTransfer{Recipient: "bob.near", Amount: uint128.From64(4)}))
	assert.Equal(t, uint128.From64(7), rail.Received("bob.near"))

	assert.ErrorIs(t, rail.Transfer(ctx, domain.PendingTransfer{Recipient: "gone.near", Amount: uint128.From64(1)}), ErrTransferRejected)
	assert.ErrorIs(t, rail.Transfer(ctx, domain.PendingTransfer{Recipient: "Bad Account", Amount: uint128.From64(1)}), ErrTransferRejected)

	rail.SetFailing("gone.near", false)
	rail.SetFailing("bob.near", true)
	assert.NoError(t, rail.Transfer(ctx, domain.PendingTransfer{Recipient: "gone.near", Amount: uint128.From64(1)}))
	assert.ErrorIs(t, rail.Transfer(ctx, domain.PendingTransfer{Recipient: "bob.near", Amount: uint128.From64(1)}), ErrTransferRejected)
	assert.Equal(t, uint128.From64(7), rail.Received("bob.near"))
}

func TestSimulatedRail_ReceivedSaturates(t *testing.T) {
	rail := NewSimulatedRail(nil)
	ctx := context.Background()

	assert.NotPanics(t, func() {
		assert.NoError(t, rail.Transfer(ctx, domain.PendingTransfer{Recipient: "bob.near", Amount: uint128.Max}))
		assert.NoError(t, rail.Transfer(ctx, domain.PendingTransfer{Recipient: "bob.near", Amount: uint128.From64(1)}))
	})
	assert.Equal(t, uint128.Max, rail.Received("bob.near"))
}
