package response

import (
	"errors"
	"net/http"
	"time"

	"pooled-multisender/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SuccessResponse is the standard success envelope.
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id"`
	Timestamp string      `json:"timestamp"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, success(c, data))
}

// Accepted sends a 202 response. Transfers are dispatched but their
// completions have not been reconciled yet.
func Accepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, success(c, data))
}

// Error maps err to its envelope. Anything that is not an *apperror.AppError
// is reported as SYS_001 without exposing the cause.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.InternalError(err)
	}
	c.JSON(appErr.HTTPStatus, ErrorResponse{
		ErrorCode: appErr.Code,
		Message:   appErr.Message,
		RequestID: requestID(c),
		Timestamp: now(),
	})
}

// Abort writes the error envelope and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

func success(c *gin.Context, data interface{}) SuccessResponse {
	return SuccessResponse{Data: data, RequestID: requestID(c), Timestamp: now()}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// requestID is the id set by the RequestID middleware, or a fresh one.
func requestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return uuid.New().String()
}
