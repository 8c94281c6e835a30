package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Operation is one requested transfer inside a batch.
type Operation struct {
	Recipient string `json:"account_id"`
	Amount    Amount `json:"-"`
}

type operationJSON struct {
	Recipient string `json:"account_id"`
	Amount    string `json:"amount"`
}

func (o Operation) MarshalJSON() ([]byte, error) {
	return json.Marshal(operationJSON{Recipient: o.Recipient, Amount: o.Amount.String()})
}

func (o *Operation) UnmarshalJSON(b []byte) error {
	var raw operationJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	amount, err := ParseAmount(raw.Amount)
	if err != nil {
		return err
	}
	o.Recipient, o.Amount = raw.Recipient, amount
	return nil
}

// FundingSource identifies where the funds of a transfer came from. It
// selects the completion handler and the wording of its log line.
type FundingSource string

const (
	FundingAttached      FundingSource = "ATTACHED"
	FundingBalance       FundingSource = "BALANCE"
	FundingBalanceUnsafe FundingSource = "BALANCE_UNSAFE"
	FundingWithdrawal    FundingSource = "WITHDRAWAL"
)

// TransferContext is handed back verbatim to the completion handler of a
// dispatched transfer.
type TransferContext struct {
	Sender    string        `json:"sender"`
	Amount    Amount        `json:"-"`
	Recipient string        `json:"recipient"`
	Source    FundingSource `json:"source"`
}

type transferContextJSON struct {
	Sender    string        `json:"sender"`
	Amount    string        `json:"amount"`
	Recipient string        `json:"recipient"`
	Source    FundingSource `json:"source"`
}

func (c TransferContext) MarshalJSON() ([]byte, error) {
	return json.Marshal(transferContextJSON{
		Sender:    c.Sender,
		Amount:    c.Amount.String(),
		Recipient: c.Recipient,
		Source:    c.Source,
	})
}

func (c *TransferContext) UnmarshalJSON(b []byte) error {
	var raw transferContextJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	amount, err := ParseAmount(raw.Amount)
	if err != nil {
		return fmt.Errorf("transfer context: %w", err)
	}
	*c = TransferContext{Sender: raw.Sender, Amount: amount, Recipient: raw.Recipient, Source: raw.Source}
	return nil
}

// TransferRequest asks the host to move Amount to Recipient. A nil
// Callback means the outcome is never reported back.
type TransferRequest struct {
	Recipient string
	Amount    Amount
	Callback  *TransferContext
}

// PendingTransfer is a dispatched transfer awaiting execution by the host.
type PendingTransfer struct {
	ID           uuid.UUID        `json:"id"`
	Recipient    string           `json:"recipient"`
	Amount       Amount           `json:"-"`
	Callback     *TransferContext `json:"callback,omitempty"`
	DispatchedAt time.Time        `json:"dispatched_at"`
}

type pendingTransferJSON struct {
	ID           uuid.UUID        `json:"id"`
	Recipient    string           `json:"recipient"`
	Amount       string           `json:"amount"`
	Callback     *TransferContext `json:"callback,omitempty"`
	DispatchedAt time.Time        `json:"dispatched_at"`
}

func (p PendingTransfer) MarshalJSON() ([]byte, error) {
	return json.Marshal(pendingTransferJSON{
		ID:           p.ID,
		Recipient:    p.Recipient,
		Amount:       p.Amount.String(),
		Callback:     p.Callback,
		DispatchedAt: p.DispatchedAt,
	})
}

func (p *PendingTransfer) UnmarshalJSON(b []byte) error {
	var raw pendingTransferJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	amount, err := ParseAmount(raw.Amount)
	if err != nil {
		return fmt.Errorf("pending transfer %s: %w", raw.ID, err)
	}
	*p = PendingTransfer{
		ID:           raw.ID,
		Recipient:    raw.Recipient,
		Amount:       amount,
		Callback:     raw.Callback,
		DispatchedAt: raw.DispatchedAt,
	}
	return nil
}

// TransferHandle identifies a dispatched transfer to the dispatching caller.
type TransferHandle struct {
	ID        uuid.UUID `json:"transfer_id"`
	Recipient string    `json:"recipient"`
	Amount    string    `json:"amount"`
}

// Handle returns the caller-facing handle of p.
func (p PendingTransfer) Handle() TransferHandle {
	return TransferHandle{ID: p.ID, Recipient: p.Recipient, Amount: p.Amount.String()}
}

// TransferOutcome is the host-reported result of one executed transfer.
type TransferOutcome string

const (
	TransferSucceeded TransferOutcome = "SUCCESS"
	TransferFailed    TransferOutcome = "FAILURE"
)

// Completion is one invocation of a completion handler. Invoker is the
// account that delivered it; Results carries the outcomes made available
// by the host (exactly one for a well-formed completion).
type Completion struct {
	TransferID uuid.UUID         `json:"transfer_id"`
	Context    TransferContext   `json:"context"`
	Invoker    string            `json:"invoker"`
	Results    []TransferOutcome `json:"results"`
}
