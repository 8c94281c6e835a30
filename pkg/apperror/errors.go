package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// Is reports whether err carries an AppError with the given code.
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

const (
	CodeInvalidAccount     = "VAL_001"
	CodeInsufficientFunds  = "VAL_002"
	CodeAmountOverflow     = "VAL_003"
	CodeInvalidRequest     = "VAL_004"
	CodeUnknownUser        = "USR_001"
	CodeNothingToWithdraw  = "USR_002"
	CodeCallerNotSelf      = "INT_001"
	CodeUnexpectedResults  = "INT_002"
	CodeInternal           = "SYS_001"
	CodeLockTimeout        = "SYS_002"
	CodeDispatchIncomplete = "SYS_003"
)

// ---- Batch validation (VAL) ----

func ErrInvalidAccount(accountID string) *AppError {
	return New(CodeInvalidAccount, fmt.Sprintf("Account @%s is invalid", accountID), http.StatusBadRequest)
}

// ErrNotEnoughAttached reports an attached payment that cannot cover the batch.
func ErrNotEnoughAttached(supplied, demand fmt.Stringer) *AppError {
	return New(CodeInsufficientFunds,
		fmt.Sprintf("Not enough attached tokens to run multisender (Supplied: %s. Demand: %s)", supplied, demand),
		http.StatusPaymentRequired)
}

// ErrNotEnoughDeposited reports a stored balance that cannot cover the batch.
func ErrNotEnoughDeposited(supplied, demand fmt.Stringer) *AppError {
	return New(CodeInsufficientFunds,
		fmt.Sprintf("Not enough deposited tokens to run multisender (Supplied: %s. Demand: %s)", supplied, demand),
		http.StatusPaymentRequired)
}

func ErrAmountOverflow() *AppError {
	return New(CodeAmountOverflow, "Amount overflows the 128-bit balance range", http.StatusBadRequest)
}

// Validation returns a VAL_004 error for malformed input.
func Validation(message string) *AppError {
	return New(CodeInvalidRequest, message, http.StatusBadRequest)
}

// ---- Caller preconditions (USR) ----

func ErrUnknownUser() *AppError {
	return New(CodeUnknownUser, "Unknown user", http.StatusNotFound)
}

func ErrNothingToWithdraw() *AppError {
	return New(CodeNothingToWithdraw, "Nothing to withdraw", http.StatusConflict)
}

// ---- Callback integrity (INT) ----

func ErrCallerNotSelf(invoker, self string) *AppError {
	return New(CodeCallerNotSelf,
		fmt.Sprintf("Method is private: invoked by @%s, expected @%s", invoker, self),
		http.StatusForbidden)
}

func ErrUnexpectedResults(count int) *AppError {
	return New(CodeUnexpectedResults,
		fmt.Sprintf("Contract expected a result on the callback (got %d)", count),
		http.StatusInternalServerError)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrInvalidSignature() *AppError {
	return New("AUTH_002", "Invalid callback signature", http.StatusUnauthorized)
}

func ErrTimestampExpired() *AppError {
	return New("AUTH_003", "Request timestamp expired", http.StatusForbidden)
}

func ErrNonceUsed() *AppError {
	return New("AUTH_004", "Nonce has already been used", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- Idempotency (IDEM) ----

func ErrRequestInProgress() *AppError {
	return New("IDEM_001", "A request with this Idempotency-Key is still in progress", http.StatusConflict)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap(CodeLockTimeout, "Invocation lock acquisition timeout", http.StatusServiceUnavailable, err)
}

// ErrDispatchIncomplete reports a batch the host stopped accepting part-way.
func ErrDispatchIncomplete(dispatched, total int, err error) *AppError {
	return Wrap(CodeDispatchIncomplete,
		fmt.Sprintf("Transfer host refused dispatch after %d of %d transfers; undispatched funds credited to the app deposit", dispatched, total),
		http.StatusBadGateway, err)
}
