package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pooled-multisender/internal/core/domain"

	"lukechampine.com/uint128"
)

// ErrTransferRejected is returned for transfers the rail refuses.
var ErrTransferRejected = errors.New("transfer rejected by recipient")

// SimulatedRail settles transfers in memory. Transfers to accounts in the
// fail set, or to malformed account ids, fail.
type SimulatedRail struct {
	mu       sync.Mutex
	fail     map[string]struct{}
	received map[string]domain.Amount
}

func NewSimulatedRail(failRecipients []string) *SimulatedRail {
	fail := make(map[string]struct{}, len(failRecipients))
	for _, r := range failRecipients {
		fail[r] = struct{}{}
	}
	return &SimulatedRail{fail: fail, received: make(map[string]domain.Amount)}
}

// SetFailing adds or removes account from the fail set.
func (r *SimulatedRail) SetFailing(account string, failing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if failing {
		r.fail[account] = struct{}{}
	} else {
		delete(r.fail, account)
	}
}

func (r *SimulatedRail) Transfer(_ context.Context, t domain.PendingTransfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fail[t.Recipient]; ok {
		return fmt.Errorf("@%s: %w", t.Recipient, ErrTransferRejected)
	}
	if !domain.IsValidAccountID(t.Recipient) {
		return fmt.Errorf("@%s is not a valid account: %w", t.Recipient, ErrTransferRejected)
	}
	r.received[t.Recipient] = saturatingAdd(r.received[t.Recipient], t.Amount)
	return nil
}

// saturatingAdd clamps at uint128.Max. Received totals are bookkeeping for
// tests and the CLI, not ledger balances.
func saturatingAdd(a, b domain.Amount) domain.Amount {
	sum := a.AddWrap(b)
	if sum.Cmp(a) < 0 {
		return uint128.Max
	}
	return sum
}

// Received returns the total settled to account.
func (r *SimulatedRail) Received(account string) domain.Amount {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.received[account]; ok {
		return v
	}
	return uint128.Zero
}
