package ports

import (
	"context"

	"pooled-multisender/internal/core/domain"
)

//go:generate mockgen -source=host.go -destination=mocks/mock_host.go -package=mocks

// TransferHost accepts transfers for asynchronous execution. Dispatch only
// enqueues; the outcome of a transfer with a callback context is reported
// later as a separate completion invocation.
type TransferHost interface {
	Dispatch(ctx context.Context, req domain.TransferRequest) (domain.TransferHandle, error)
}

// PayoutRail moves funds to a recipient. It is what the host executes.
type PayoutRail interface {
	Transfer(ctx context.Context, transfer domain.PendingTransfer) error
}

// EventEmitter publishes human-readable ledger log messages.
type EventEmitter interface {
	Emit(ctx context.Context, message string) error
}
