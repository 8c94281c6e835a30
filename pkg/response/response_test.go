package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pooled-multisender/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(requestID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if requestID != "" {
		c.Set("request_id", requestID)
	}
	return c, w
}

func TestSuccessEnvelopes(t *testing.T) {
	tests := []struct {
		name   string
		write  func(*gin.Context, interface{})
		status int
	}{
		{"ok", OK, http.StatusOK},
		{"accepted", Accepted, http.StatusAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext("req-123")

			tt.write(c, map[string]string{"balance": "60"})

			assert.Equal(t, tt.status, w.Code)
			var resp SuccessResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "req-123", resp.RequestID)
			assert.NotEmpty(t, resp.Timestamp)
			assert.Equal(t, map[string]interface{}{"balance": "60"}, resp.Data)
		})
	}
}

func TestOK_GeneratesRequestID_WhenMissing(t *testing.T) {
	c, w := newTestContext("")

	OK(c, nil)

	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.RequestID, 36)
}

func TestError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"app error", apperror.ErrNothingToWithdraw(), http.StatusConflict, "USR_002", "Nothing to withdraw"},
		{"wrapped app error", fmt.Errorf("outer: %w", apperror.ErrInvalidSignature()), http.StatusUnauthorized, "AUTH_002", "Invalid callback signature"},
		{"plain error", fmt.Errorf("pq: connection reset"), http.StatusInternalServerError, "SYS_001", "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext("req-789")

			Error(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.ErrorCode)
			assert.Equal(t, tt.message, resp.Message)
			assert.Equal(t, "req-789", resp.RequestID)
			assert.NotContains(t, w.Body.String(), "connection reset")
		})
	}
}

func TestAbort_StopsChain(t *testing.T) {
	router := gin.New()
	reached := false
	router.GET("/", func(c *gin.Context) {
		Abort(c, apperror.ErrRateLimitExceeded())
	}, func(c *gin.Context) {
		reached = true
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.False(t, reached)
}
