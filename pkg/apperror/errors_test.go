package apperror

import (
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("USR_002", "Nothing to withdraw", http.StatusConflict),
			expected: "[USR_002] Nothing to withdraw",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
	assert.Nil(t, New("USR_001", "test", http.StatusBadRequest).Unwrap())
}

func TestIs(t *testing.T) {
	wrapped := fmt.Errorf("withdraw: %w", ErrNothingToWithdraw())

	assert.True(t, Is(wrapped, CodeNothingToWithdraw))
	assert.False(t, Is(wrapped, CodeUnknownUser))
	assert.False(t, Is(fmt.Errorf("plain"), CodeInternal))
	assert.False(t, Is(nil, CodeInternal))
}

func TestValidationErrors(t *testing.T) {
	supplied, demand := big.NewInt(3), big.NewInt(5)

	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
		message    string
	}{
		{"InvalidAccount", ErrInvalidAccount("Bad!"), "VAL_001", 400, "Account @Bad! is invalid"},
		{"NotEnoughAttached", ErrNotEnoughAttached(supplied, demand), "VAL_002", 402,
			"Not enough attached tokens to run multisender (Supplied: 3. Demand: 5)"},
		{"NotEnoughDeposited", ErrNotEnoughDeposited(supplied, demand), "VAL_002", 402,
			"Not enough deposited tokens to run multisender (Supplied: 3. Demand: 5)"},
		{"AmountOverflow", ErrAmountOverflow(), "VAL_003", 400, ""},
		{"Validation", Validation("amount is malformed"), "VAL_004", 400, "amount is malformed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
			if tt.message != "" {
				assert.Equal(t, tt.message, tt.err.Message)
			}
		})
	}
}

func TestCallerErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"UnknownUser", ErrUnknownUser(), "USR_001", 404},
		{"NothingToWithdraw", ErrNothingToWithdraw(), "USR_002", 409},
		{"CallerNotSelf", ErrCallerNotSelf("mallory.near", "multisender.near"), "INT_001", 403},
		{"UnexpectedResults", ErrUnexpectedResults(2), "INT_002", 500},
		{"InvalidToken", ErrInvalidToken(), "AUTH_001", 401},
		{"InvalidSignature", ErrInvalidSignature(), "AUTH_002", 401},
		{"TimestampExpired", ErrTimestampExpired(), "AUTH_003", 403},
		{"NonceUsed", ErrNonceUsed(), "AUTH_004", 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestSystemErrors(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")
	dbErr := InternalError(inner)
	assert.Equal(t, "SYS_001", dbErr.Code)
	assert.Equal(t, 500, dbErr.HTTPStatus)
	assert.True(t, errors.Is(dbErr, inner))

	lockErr := ErrLockTimeout(inner)
	assert.Equal(t, "SYS_002", lockErr.Code)
	assert.Equal(t, 503, lockErr.HTTPStatus)

	dispatchErr := ErrDispatchIncomplete(2, 5, inner)
	assert.Equal(t, "SYS_003", dispatchErr.Code)
	assert.Contains(t, dispatchErr.Message, "after 2 of 5")
	assert.True(t, errors.Is(dispatchErr, inner))
}

func TestRateLimitError(t *testing.T) {
	err := ErrRateLimitExceeded()
	assert.Equal(t, "RATE_001", err.Code)
	assert.Equal(t, 429, err.HTTPStatus)
}

func TestRequestInProgressError(t *testing.T) {
	err := ErrRequestInProgress()
	assert.Equal(t, "IDEM_001", err.Code)
	assert.Equal(t, 409, err.HTTPStatus)
}
