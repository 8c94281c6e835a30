package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"pooled-multisender/internal/core/ports"
	"pooled-multisender/internal/core/ports/mocks"
	"pooled-multisender/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testSelf   = "multisender.near"
	testSecret = "host-callback-secret"
)

func invokerRouter(sigSvc ports.SignatureService, nonces ports.NonceStore, tokens ports.TokenService) *gin.Engine {
	r := gin.New()
	r.POST("/internal/v1/callbacks/from-balance",
		InvokerAuth(testSelf, testSecret, sigSvc, nonces, tokens, zerolog.Nop()),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"invoker": c.GetString(CtxInvoker)})
		})
	return r
}

func signedRequest(sigSvc ports.SignatureService, secret string, ts int64, nonce, body string) *http.Request {
	path := "/internal/v1/callbacks/from-balance"
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	canonical := sigSvc.BuildCanonicalString(http.MethodPost, path, ts, nonce, body)
	req.Header.Set(HeaderSignature, sigSvc.Sign(secret, canonical))
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(HeaderNonce, nonce)
	return req
}

func TestInvokerAuth_ValidSignatureInvokesAsSelf(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sigSvc := service.NewHMACSignatureService()
	nonces := mocks.NewMockNonceStore(ctrl)
	tokens := mocks.NewMockTokenService(ctrl)
	nonces.EXPECT().CheckAndSet(gomock.Any(), "callbacks", "n-1", nonceTTL).Return(true, nil)

	w := httptest.NewRecorder()
	invokerRouter(sigSvc, nonces, tokens).ServeHTTP(w, signedRequest(sigSvc, testSecret, time.Now().Unix(), "n-1", `{"a":1}`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"invoker":"multisender.near"`)
}

func TestInvokerAuth_WrongSecret(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sigSvc := service.NewHMACSignatureService()
	nonces := mocks.NewMockNonceStore(ctrl)
	nonces.EXPECT().CheckAndSet(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	w := httptest.NewRecorder()
	invokerRouter(sigSvc, nonces, mocks.NewMockTokenService(ctrl)).
		ServeHTTP(w, signedRequest(sigSvc, "wrong", time.Now().Unix(), "n-2", `{}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_002")
}

func TestInvokerAuth_ExpiredTimestamp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sigSvc := service.NewHMACSignatureService()
	w := httptest.NewRecorder()
	invokerRouter(sigSvc, mocks.NewMockNonceStore(ctrl), mocks.NewMockTokenService(ctrl)).
		ServeHTTP(w, signedRequest(sigSvc, testSecret, time.Now().Add(-5*time.Minute).Unix(), "n-3", `{}`))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_003")
}

func TestInvokerAuth_ReplayedNonce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sigSvc := service.NewHMACSignatureService()
	nonces := mocks.NewMockNonceStore(ctrl)
	nonces.EXPECT().CheckAndSet(gomock.Any(), "callbacks", "n-4", nonceTTL).Return(false, nil)

	w := httptest.NewRecorder()
	invokerRouter(sigSvc, nonces, mocks.NewMockTokenService(ctrl)).
		ServeHTTP(w, signedRequest(sigSvc, testSecret, time.Now().Unix(), "n-4", `{}`))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_004")
}

func TestInvokerAuth_NonceStoreDownFailsClosed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sigSvc := service.NewHMACSignatureService()
	nonces := mocks.NewMockNonceStore(ctrl)
	nonces.EXPECT().CheckAndSet(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("redis down"))

	w := httptest.NewRecorder()
	invokerRouter(sigSvc, nonces, mocks.NewMockTokenService(ctrl)).
		ServeHTTP(w, signedRequest(sigSvc, testSecret, time.Now().Unix(), "n-5", `{}`))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestInvokerAuth_BearerTokenInvokesAsCaller(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokens := mocks.NewMockTokenService(ctrl)
	tokens.EXPECT().Validate("tok").Return(&ports.TokenClaims{Account: "mallory.near"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/internal/v1/callbacks/from-balance", bytes.NewBufferString(`{}`))
	req.Header.Set("Authorization", "Bearer tok")

	w := httptest.NewRecorder()
	invokerRouter(service.NewHMACSignatureService(), mocks.NewMockNonceStore(ctrl), tokens).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"invoker":"mallory.near"`)
}

func TestInvokerAuth_NoCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	req := httptest.NewRequest(http.MethodPost, "/internal/v1/callbacks/from-balance", nil)
	w := httptest.NewRecorder()
	invokerRouter(service.NewHMACSignatureService(), mocks.NewMockNonceStore(ctrl), mocks.NewMockTokenService(ctrl)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_001")
}

func TestJWTAuth(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokens := mocks.NewMockTokenService(ctrl)
	tokens.EXPECT().Validate("good").Return(&ports.TokenClaims{Account: "alice.near"}, nil)
	tokens.EXPECT().Validate("bad").Return(nil, errors.New("expired"))

	r := gin.New()
	r.GET("/me", JWTAuth(tokens, zerolog.Nop()), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxCaller))
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer good", http.StatusOK},
		{"invalid", "Bearer bad", http.StatusUnauthorized},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "alice.near", w.Body.String())
			}
		})
	}
}

func TestJWTAuth_CarriesRequestLogger(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokens := mocks.NewMockTokenService(ctrl)
	tokens.EXPECT().Validate("good").Return(&ports.TokenClaims{Account: "alice.near"}, nil)

	var buf bytes.Buffer
	r := gin.New()
	r.GET("/me", RequestID(), JWTAuth(tokens, zerolog.New(&buf)), func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("inside")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	req.Header.Set(HeaderRequestID, "req-42")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"account_id":"alice.near"`)
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRequestID)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Body.String())
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SYS_001")
}

func TestMaxBodySize(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodySize(8))
	r.POST("/", func(c *gin.Context) {
		var v map[string]interface{}
		if err := c.ShouldBindJSON(&v); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"operations":[1,2,3]}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
