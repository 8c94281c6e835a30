package ports

import (
	"context"
	"time"

	"pooled-multisender/internal/core/domain"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

// LedgerService is the caller-facing surface of the ledger. caller is the
// authenticated invoking account; attached is the payment carried by the call.
type LedgerService interface {
	Deposit(ctx context.Context, caller string, attached domain.Amount) (domain.Amount, error)
	Withdraw(ctx context.Context, caller string) (domain.TransferHandle, error)
	MultisendAttachedTokens(ctx context.Context, caller string, attached domain.Amount, ops []domain.Operation) (*MultisendResult, error)
	MultisendFromBalance(ctx context.Context, caller string, ops []domain.Operation) (*MultisendResult, error)
	// MultisendFromBalanceUnsafe debits the whole batch up front and never
	// reconciles: funds of failed transfers are lost to the caller.
	MultisendFromBalanceUnsafe(ctx context.Context, caller string, ops []domain.Operation) (*MultisendResult, error)
	GetDeposit(ctx context.Context, account string) (domain.Amount, error)
}

// MultisendResult summarizes an accepted batch.
type MultisendResult struct {
	Total     domain.Amount
	Transfers []domain.TransferHandle
}

// ReconcilerService handles completion invocations of dispatched transfers.
type ReconcilerService interface {
	OnTransferFromBalance(ctx context.Context, c domain.Completion) error
	OnTransferAttachedTokens(ctx context.Context, c domain.Completion) error
	// Handle routes c to the handler matching its funding source.
	Handle(ctx context.Context, c domain.Completion) error
}

// SignatureService handles HMAC-SHA256 signing and verification.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
	BuildCanonicalString(method, path string, timestamp int64, nonce string, body string) string
}

// TokenService issues and verifies caller identity tokens.
type TokenService interface {
	Generate(account string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Account string
}
