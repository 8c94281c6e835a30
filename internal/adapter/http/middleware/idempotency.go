package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"pooled-multisender/internal/core/ports"
	"pooled-multisender/pkg/apperror"
	"pooled-multisender/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"

	maxIdempotencyKeyLen = 128
	// idempotencyPendingTTL bounds how long a crashed request blocks its key.
	idempotencyPendingTTL = 2 * time.Minute
)

// cachedResponse is what the idempotency cache stores per key. A pending
// entry marks a request still being processed.
type cachedResponse struct {
	Pending bool            `json:"pending,omitempty"`
	Status  int             `json:"status,omitempty"`
	Body    json.RawMessage `json:"body,omitempty"`
}

var pendingEntry = []byte(`{"pending":true}`)

type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response of a submission already accepted
// under the same Idempotency-Key by the same caller, so a client retrying a
// multisend after a lost response does not pay the batch twice. The key is
// reserved before the handler runs; a concurrent request with the same key
// gets 409 until the first one finishes. Requests without the header pass
// through. Only 2xx responses are stored.
func Idempotency(cache ports.IdempotencyCache, ttl time.Duration, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			response.Abort(c, apperror.Validation("Idempotency-Key is too long"))
			return
		}

		ctx := c.Request.Context()
		cacheKey := c.GetString(CtxCaller) + ":" + c.Request.URL.Path + ":" + key

		stored, err := lookup(ctx, cache, cacheKey, log)
		if err != nil {
			log.Warn().Err(err).Msg("idempotency cache unavailable, processing request")
			c.Next()
			return
		}
		if stored != nil {
			answer(c, stored)
			return
		}

		reserved, err := cache.Reserve(ctx, cacheKey, pendingEntry, idempotencyPendingTTL)
		if err != nil {
			log.Warn().Err(err).Msg("idempotency cache unavailable, processing request")
			c.Next()
			return
		}
		if !reserved {
			// Another request won the reservation; it may have finished since.
			stored, err = lookup(ctx, cache, cacheKey, log)
			if err == nil && stored != nil && !stored.Pending {
				answer(c, stored)
				return
			}
			response.Abort(c, apperror.ErrRequestInProgress())
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		// The batch is already dispatched; store even if the client went away.
		storeCtx := context.WithoutCancel(ctx)
		status := w.Status()
		entry, err := json.Marshal(cachedResponse{Status: status, Body: w.buf.Bytes()})
		if status < 200 || status >= 300 || err != nil {
			if err := cache.Delete(storeCtx, cacheKey); err != nil {
				log.Error().Err(err).Str("key", cacheKey).Msg("failed to release idempotency key")
			}
			return
		}
		if err := cache.Set(storeCtx, cacheKey, entry, ttl); err != nil {
			log.Error().Err(err).Str("key", cacheKey).Msg("failed to store idempotent response")
		}
	}
}

// lookup returns the entry stored under key, or nil if there is none.
// Undecodable entries are dropped.
func lookup(ctx context.Context, cache ports.IdempotencyCache, key string, log zerolog.Logger) (*cachedResponse, error) {
	raw, err := cache.Get(ctx, key)
	if err != nil || raw == nil {
		return nil, err
	}
	var resp cachedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		log.Warn().Str("key", key).Msg("discarding undecodable idempotency entry")
		return nil, cache.Delete(ctx, key)
	}
	return &resp, nil
}

func answer(c *gin.Context, stored *cachedResponse) {
	if stored.Pending {
		response.Abort(c, apperror.ErrRequestInProgress())
		return
	}
	c.Header(HeaderReplayed, "true")
	c.Data(stored.Status, "application/json; charset=utf-8", stored.Body)
	c.Abort()
}
