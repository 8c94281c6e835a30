package handler

import (
	"time"

	"pooled-multisender/internal/adapter/http/middleware"
	"pooled-multisender/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	ReconcilerSvc  ports.ReconcilerService
	TokenSvc       ports.TokenService
	SigSvc         ports.SignatureService
	NonceStore     ports.NonceStore
	IdemCache      ports.IdempotencyCache // nil = Idempotency-Key ignored
	IdemTTL        time.Duration
	RateLimitStore ports.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	SelfAccount    string
	CallbackSecret string // empty = signed callbacks rejected
	OpenAPISpec    []byte
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(4 << 20)) // a full batch of operations fits comfortably
	r.Use(middleware.AuditLog(deps.Logger))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		docs := NewAPIDocs(deps.OpenAPISpec, "/swagger/spec")
		swagger.GET("", docs.UI)
		swagger.GET("/spec", docs.Spec)
	}

	rl := middleware.NewRateLimits(deps.RateLimitStore, middleware.DefaultRateLimitRules(), deps.Logger).For

	var idem gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if deps.IdemCache != nil {
		idem = middleware.Idempotency(deps.IdemCache, deps.IdemTTL, deps.Logger)
	}

	ledgerHandler := NewLedgerHandler(deps.LedgerSvc)
	v1 := r.Group("/api/v1")

	// --- Public views ---
	v1.GET("/deposits/:account_id", rl("query"), ledgerHandler.GetDeposit)

	// --- Caller operations (JWT identifies the caller) ---
	authed := v1.Group("", middleware.JWTAuth(deps.TokenSvc, deps.Logger))
	{
		authed.POST("/deposit", rl("deposit"), idem, ledgerHandler.Deposit)
		authed.POST("/withdraw", rl("withdraw"), ledgerHandler.Withdraw)
		authed.POST("/multisend/attached", rl("multisend"), idem, ledgerHandler.MultisendAttached)
		authed.POST("/multisend/balance", rl("multisend"), idem, ledgerHandler.MultisendBalance)
		authed.POST("/multisend/balance-unsafe", rl("multisend"), idem, ledgerHandler.MultisendBalanceUnsafe)
	}

	// --- Completion callbacks from an external transfer host ---
	callbackHandler := NewCallbackHandler(deps.ReconcilerSvc)
	callbacks := r.Group("/internal/v1/callbacks",
		middleware.InvokerAuth(deps.SelfAccount, deps.CallbackSecret, deps.SigSvc, deps.NonceStore, deps.TokenSvc, deps.Logger))
	{
		callbacks.POST("/from-balance", rl("callbacks"), callbackHandler.FromBalance)
		callbacks.POST("/attached-tokens", rl("callbacks"), callbackHandler.AttachedTokens)
	}

	return r
}
