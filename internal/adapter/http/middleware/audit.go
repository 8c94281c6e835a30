package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuditLog records every successful ledger mutation as a structured audit
// entry once the response is written.
func AuditLog(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method != http.MethodPost {
			return
		}

		action := mapPathToAction(c.FullPath())
		if action == "" {
			return
		}

		log.Info().
			Str("audit_action", action).
			Str("caller", c.GetString(CtxCaller)).
			Str("invoker", c.GetString(CtxInvoker)).
			Str("request_id", c.GetString(CtxRequestID)).
			Str("ip_address", c.ClientIP()).
			Int("status", c.Writer.Status()).
			Bool("replayed", c.Writer.Header().Get(HeaderReplayed) == "true").
			Msg("audit")
	}
}

func mapPathToAction(route string) string {
	switch route {
	case "/api/v1/deposit":
		return "DEPOSIT"
	case "/api/v1/withdraw":
		return "WITHDRAW"
	case "/api/v1/multisend/attached":
		return "MULTISEND_ATTACHED"
	case "/api/v1/multisend/balance":
		return "MULTISEND_BALANCE"
	case "/api/v1/multisend/balance-unsafe":
		return "MULTISEND_BALANCE_UNSAFE"
	case "/internal/v1/callbacks/from-balance":
		return "CALLBACK_FROM_BALANCE"
	case "/internal/v1/callbacks/attached-tokens":
		return "CALLBACK_ATTACHED_TOKENS"
	default:
		return ""
	}
}
