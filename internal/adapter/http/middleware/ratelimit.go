package middleware

import (
	"strconv"
	"time"

	"pooled-multisender/internal/core/ports"
	"pooled-multisender/pkg/apperror"
	"pooled-multisender/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimitRule caps requests per identity within a fixed window.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// DefaultRateLimitRules returns the limits per endpoint group. Withdrawals
// are the tightest since each one drains a whole balance.
func DefaultRateLimitRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		"deposit":   {Limit: 60, Window: time.Minute},
		"withdraw":  {Limit: 10, Window: time.Minute},
		"multisend": {Limit: 30, Window: time.Minute},
		"query":     {Limit: 300, Window: time.Minute},
		"callbacks": {Limit: 6000, Window: time.Minute},
	}
}

// RateLimits builds per-group limiters sharing one counter store.
type RateLimits struct {
	store ports.RateLimitStore
	rules map[string]RateLimitRule
	log   zerolog.Logger
}

// NewRateLimits returns limiters over store. A nil store disables limiting.
func NewRateLimits(store ports.RateLimitStore, rules map[string]RateLimitRule, log zerolog.Logger) *RateLimits {
	return &RateLimits{store: store, rules: rules, log: log}
}

// For returns the limiter of group, or a pass-through when the group has no
// rule or limiting is disabled.
func (l *RateLimits) For(group string) gin.HandlerFunc {
	rule, ok := l.rules[group]
	if l.store == nil || !ok {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := identity(c) + ":" + group

		result, err := l.store.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			l.log.Warn().Err(err).Str("group", group).Msg("rate limit store unavailable, request let through")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if !result.Allowed {
			c.Header("Retry-After", strconv.FormatInt(max(result.ResetAt-time.Now().Unix(), 1), 10))
			response.Abort(c, apperror.ErrRateLimitExceeded())
			return
		}
		c.Next()
	}
}

// identity keys limits by caller, then callback invoker, then client IP.
func identity(c *gin.Context) string {
	for _, key := range []string{CtxCaller, CtxInvoker} {
		if v := c.GetString(key); v != "" {
			return v
		}
	}
	return c.ClientIP()
}
