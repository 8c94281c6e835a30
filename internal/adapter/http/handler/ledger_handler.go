package handler

import (
	"context"
	"encoding/json"

	"pooled-multisender/internal/adapter/http/dto"
	"pooled-multisender/internal/adapter/http/middleware"
	"pooled-multisender/internal/core/domain"
	"pooled-multisender/internal/core/ports"
	"pooled-multisender/pkg/apperror"
	"pooled-multisender/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// LedgerHandler exposes the caller-facing ledger operations.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
}

func NewLedgerHandler(ledgerSvc ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

// Deposit handles POST /api/v1/deposit.
func (h *LedgerHandler) Deposit(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DepositRequest
	if !bind(c, &req) {
		return
	}
	attached, err := domain.ParseAmount(req.AttachedDeposit)
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	balance, err := h.ledgerSvc.Deposit(c.Request.Context(), caller, attached)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{AccountID: caller, Balance: balance.String()})
}

// Withdraw handles POST /api/v1/withdraw. The transfer executes
// asynchronously, hence 202.
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	handle, err := h.ledgerSvc.Withdraw(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Accepted(c, handle)
}

// MultisendAttached handles POST /api/v1/multisend/attached.
func (h *LedgerHandler) MultisendAttached(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.MultisendAttachedRequest
	if !bind(c, &req) {
		return
	}
	attached, err := domain.ParseAmount(req.AttachedDeposit)
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	ops, err := dto.ToOperations(req.Operations)
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.ledgerSvc.MultisendAttachedTokens(c.Request.Context(), caller, attached, ops)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Accepted(c, toMultisendResponse(result))
}

// MultisendBalance handles POST /api/v1/multisend/balance.
func (h *LedgerHandler) MultisendBalance(c *gin.Context) {
	h.multisendFromBalance(c, h.ledgerSvc.MultisendFromBalance)
}

// MultisendBalanceUnsafe handles POST /api/v1/multisend/balance-unsafe.
func (h *LedgerHandler) MultisendBalanceUnsafe(c *gin.Context) {
	h.multisendFromBalance(c, h.ledgerSvc.MultisendFromBalanceUnsafe)
}

type balanceMultisendFunc func(ctx context.Context, caller string, ops []domain.Operation) (*ports.MultisendResult, error)

func (h *LedgerHandler) multisendFromBalance(c *gin.Context, send balanceMultisendFunc) {
	caller, ok := callerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.MultisendBalanceRequest
	if !bind(c, &req) {
		return
	}
	ops, err := dto.ToOperations(req.Operations)
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := send(c.Request.Context(), caller, ops)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Accepted(c, toMultisendResponse(result))
}

// GetDeposit handles GET /api/v1/deposits/:account_id. Unknown accounts
// read as zero.
func (h *LedgerHandler) GetDeposit(c *gin.Context) {
	account := c.Param("account_id")

	balance, err := h.ledgerSvc.GetDeposit(c.Request.Context(), account)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{AccountID: account, Balance: balance.String()})
}

func toMultisendResponse(r *ports.MultisendResult) dto.MultisendResponse {
	return dto.MultisendResponse{
		Total:      r.Total.String(),
		Operations: len(r.Transfers),
		Transfers:  r.Transfers,
	}
}

func callerFrom(c *gin.Context) (string, bool) {
	caller := c.GetString(middleware.CtxCaller)
	return caller, caller != ""
}

// bind decodes the JSON body, trims it and validates it, answering 400 on
// failure.
func bind(c *gin.Context, req interface{}) bool {
	if err := json.NewDecoder(c.Request.Body).Decode(req); err != nil {
		response.Error(c, apperror.Validation("malformed JSON body: "+err.Error()))
		return false
	}
	dto.TrimStruct(req)
	if err := binding.Validator.ValidateStruct(req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return false
	}
	return true
}
