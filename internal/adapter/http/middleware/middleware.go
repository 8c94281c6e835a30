package middleware

import (
	"bytes"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pooled-multisender/internal/core/ports"
	"pooled-multisender/pkg/apperror"
	"pooled-multisender/pkg/logger"
	"pooled-multisender/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// Header names for signed host callbacks
	HeaderSignature = "X-Signature"
	HeaderTimestamp = "X-Timestamp"
	HeaderNonce     = "X-Nonce"
	HeaderRequestID = "X-Request-ID"

	// Max timestamp drift allowed (60 seconds)
	maxTimestampDrift = 60 * time.Second

	// Nonce TTL (120 seconds)
	nonceTTL = 120 * time.Second

	// Context keys
	CtxCaller    = "caller"
	CtxInvoker   = "invoker"
	CtxRequestID = "request_id"

	nonceScope = "callbacks"
)

// RequestID propagates X-Request-ID or assigns a fresh one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(CtxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// JWTAuth validates the bearer token and stores the calling account.
func JWTAuth(tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := bearerAccount(c, tokenSvc)
		if !ok {
			response.Abort(c, apperror.ErrInvalidToken())
			return
		}
		c.Set(CtxCaller, account)
		reqLog := log.With().Str("request_id", c.GetString(CtxRequestID)).Logger()
		c.Request = c.Request.WithContext(logger.WithAccount(c.Request.Context(), reqLog, account))
		c.Next()
	}
}

// InvokerAuth establishes who invoked a completion callback. A request
// signed with the host's shared secret is invoked by the ledger's own
// account. Without a signature the bearer token's account is the invoker,
// which the reconciler then rejects as not self.
// Pipeline: Check timestamp -> Check nonce -> Verify signature.
func InvokerAuth(
	self string,
	secret string,
	sigSvc ports.SignatureService,
	nonceStore ports.NonceStore,
	tokenSvc ports.TokenService,
	log zerolog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		signature := c.GetHeader(HeaderSignature)
		if signature == "" {
			account, ok := bearerAccount(c, tokenSvc)
			if !ok {
				response.Abort(c, apperror.ErrInvalidToken())
				return
			}
			c.Set(CtxInvoker, account)
			c.Next()
			return
		}

		timestampStr := c.GetHeader(HeaderTimestamp)
		nonce := c.GetHeader(HeaderNonce)
		if secret == "" || timestampStr == "" || nonce == "" {
			response.Abort(c, apperror.ErrInvalidSignature())
			return
		}

		// Step 1: Timestamp check
		timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
		if err != nil {
			response.Abort(c, apperror.ErrTimestampExpired())
			return
		}
		now := time.Now().Unix()
		if math.Abs(float64(now-timestamp)) > maxTimestampDrift.Seconds() {
			response.Abort(c, apperror.ErrTimestampExpired())
			return
		}

		// Step 2: Nonce check
		isNew, err := nonceStore.CheckAndSet(c.Request.Context(), nonceScope, nonce, nonceTTL)
		if err != nil {
			// A replayed completion would credit twice; fail closed.
			log.Error().Err(err).Msg("nonce store error, rejecting callback")
			response.Abort(c, apperror.InternalError(err))
			return
		}
		if !isNew {
			response.Abort(c, apperror.ErrNonceUsed())
			return
		}

		// Step 3: Signature verification
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.Abort(c, apperror.Validation("cannot read request body"))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		canonical := sigSvc.BuildCanonicalString(
			c.Request.Method,
			c.Request.URL.Path,
			timestamp,
			nonce,
			string(bodyBytes),
		)

		if !sigSvc.Verify(secret, canonical, signature) {
			log.Warn().Str("path", c.Request.URL.Path).Msg("callback signature mismatch")
			response.Abort(c, apperror.ErrInvalidSignature())
			return
		}

		c.Set(CtxInvoker, self)
		c.Next()
	}
}

func bearerAccount(c *gin.Context, tokenSvc ports.TokenService) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	tokenStr, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found || tokenStr == "" {
		return "", false
	}
	claims, err := tokenSvc.Validate(tokenStr)
	if err != nil {
		return "", false
	}
	return claims.Account, true
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(CtxRequestID)).
			Str("caller", c.GetString(CtxCaller)).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error_code": apperror.CodeInternal,
					"message":    "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// MaxBodySize returns middleware that limits the request body size.
// Once the limit is exceeded the reader returns an error and the
// request is rejected with 413 Payload Too Large.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
