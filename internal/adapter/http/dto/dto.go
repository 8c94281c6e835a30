package dto

import "pooled-multisender/internal/core/domain"

// Amounts are decimal strings of yoctoNEAR: u128 does not fit a JSON number.

// DepositRequest is the request body for POST /api/v1/deposit.
type DepositRequest struct {
	AttachedDeposit string `json:"attached_deposit" binding:"required,amount"`
}

// OperationRequest is one (recipient, amount) pair of a multisend batch.
// account_id is checked by the ledger so that an invalid id fails the
// whole batch with the ledger's own error.
type OperationRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	Amount    string `json:"amount" binding:"required,amount"`
}

// MultisendAttachedRequest is the body of POST /api/v1/multisend/attached.
type MultisendAttachedRequest struct {
	AttachedDeposit string             `json:"attached_deposit" binding:"required,amount"`
	Operations      []OperationRequest `json:"operations" binding:"required,dive"`
}

// MultisendBalanceRequest is the body of the balance-funded multisends.
type MultisendBalanceRequest struct {
	Operations []OperationRequest `json:"operations" binding:"required,dive"`
}

// CallbackContextRequest mirrors domain.TransferContext on the wire.
type CallbackContextRequest struct {
	Sender    string `json:"sender_id" binding:"required,account_id"`
	Amount    string `json:"amount" binding:"required,amount"`
	Recipient string `json:"recipient" binding:"required"`
}

// CallbackRequest is posted by an external transfer host once a transfer
// with a completion context has executed.
type CallbackRequest struct {
	TransferID string                 `json:"transfer_id" binding:"required,uuid"`
	Context    CallbackContextRequest `json:"context" binding:"required"`
	Results    []string               `json:"results"`
}

// BalanceResponse reports an account's stored balance.
type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   string `json:"balance"`
}

// MultisendResponse reports an accepted batch. Transfers execute
// asynchronously; their handles are returned for correlation.
type MultisendResponse struct {
	Total      string                  `json:"total"`
	Operations int                     `json:"operations"`
	Transfers  []domain.TransferHandle `json:"transfers"`
}

// CallbackResponse acknowledges a processed completion.
type CallbackResponse struct {
	TransferID string `json:"transfer_id"`
	Status     string `json:"status"`
}

// FromOperations renders ops as request pairs.
func FromOperations(ops []domain.Operation) []OperationRequest {
	reqs := make([]OperationRequest, len(ops))
	for i, op := range ops {
		reqs[i] = OperationRequest{AccountID: op.Recipient, Amount: op.Amount.String()}
	}
	return reqs
}
