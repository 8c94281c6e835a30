package handler

import (
	"context"

	"pooled-multisender/internal/adapter/http/dto"
	"pooled-multisender/internal/adapter/http/middleware"
	"pooled-multisender/internal/core/domain"
	"pooled-multisender/internal/core/ports"
	"pooled-multisender/pkg/apperror"
	"pooled-multisender/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CallbackHandler receives completion invocations from an external transfer
// host. The funding source is implied by the endpoint.
type CallbackHandler struct {
	reconciler ports.ReconcilerService
}

func NewCallbackHandler(reconciler ports.ReconcilerService) *CallbackHandler {
	return &CallbackHandler{reconciler: reconciler}
}

// FromBalance handles POST /internal/v1/callbacks/from-balance.
func (h *CallbackHandler) FromBalance(c *gin.Context) {
	h.handle(c, domain.FundingBalance, h.reconciler.OnTransferFromBalance)
}

// AttachedTokens handles POST /internal/v1/callbacks/attached-tokens.
func (h *CallbackHandler) AttachedTokens(c *gin.Context) {
	h.handle(c, domain.FundingAttached, h.reconciler.OnTransferAttachedTokens)
}

func (h *CallbackHandler) handle(c *gin.Context, source domain.FundingSource, reconcile func(ctx context.Context, comp domain.Completion) error) {
	invoker := c.GetString(middleware.CtxInvoker)
	if invoker == "" {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CallbackRequest
	if !bind(c, &req) {
		return
	}
	amount, err := domain.ParseAmount(req.Context.Amount)
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	transferID, err := uuid.Parse(req.TransferID)
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	results := make([]domain.TransferOutcome, len(req.Results))
	for i, r := range req.Results {
		results[i] = domain.TransferOutcome(r)
	}

	comp := domain.Completion{
		TransferID: transferID,
		Context: domain.TransferContext{
			Sender:    req.Context.Sender,
			Amount:    amount,
			Recipient: req.Context.Recipient,
			Source:    source,
		},
		Invoker: invoker,
		Results: results,
	}

	if err := reconcile(c.Request.Context(), comp); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.CallbackResponse{TransferID: transferID.String(), Status: "processed"})
}
