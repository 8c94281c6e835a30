// Package app assembles the ledger service from configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"pooled-multisender/api"
	"pooled-multisender/config"
	"pooled-multisender/internal/adapter/events"
	httpHandler "pooled-multisender/internal/adapter/http/handler"
	"pooled-multisender/internal/adapter/host"
	"pooled-multisender/internal/adapter/storage/memory"
	pgStorage "pooled-multisender/internal/adapter/storage/postgres"
	redisStorage "pooled-multisender/internal/adapter/storage/redis"
	"pooled-multisender/internal/core/domain"
	"pooled-multisender/internal/core/ports"
	"pooled-multisender/internal/service"
	"pooled-multisender/internal/worker"
	"pooled-multisender/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	memoryQueueCapacity = 4096
	idempotencyTTL      = 24 * time.Hour
)

// App is a fully wired ledger: services, transfer host, completion worker
// and HTTP router.
type App struct {
	Ledger     *service.LedgerServiceImpl
	Reconciler *service.ReconcilerServiceImpl
	Tokens     *service.JWTTokenService
	Executor   *host.Executor
	Worker     *worker.ReconcileWorker
	Rail       ports.PayoutRail
	Router     *gin.Engine

	log zerolog.Logger
}

// adapters are the port implementations selected by configuration.
type adapters struct {
	store       ports.BalanceStore
	locker      ports.InvocationLocker
	transfers   ports.Queue[domain.PendingTransfer]
	completions ports.Queue[domain.Completion]
	deadLetters ports.Queue[domain.Completion]
	nonces      ports.NonceStore
	idem        ports.IdempotencyCache
	rateLimit   ports.RateLimitStore
	health      []ports.HealthChecker
}

// New connects the configured backends and wires the application. The
// returned cleanup releases every connection New opened.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, func(), error) {
	if cfg.JWT.Secret == "" {
		return nil, nil, fmt.Errorf("jwt.secret is required")
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	ad := &adapters{}

	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		closers = append(closers, pool.Close)

		if cfg.Database.AutoMigrate {
			if err := pgStorage.Migrate(cfg.Database.MigrateURL(), log); err != nil {
				cleanup()
				return nil, nil, err
			}
		}
		ad.store = pgStorage.NewDepositStore(pool)
		ad.health = append(ad.health, pgStorage.NewHealthCheck(pool))
	default:
		ad.store = memory.NewDepositStore()
	}

	switch cfg.Storage.Queue {
	case "redis":
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		ks := redisStorage.Keyspace(cfg.Redis.KeyPrefix)

		ad.locker = redisStorage.NewLocker(rdb, redisStorage.LockOptions{
			Expiry: cfg.Ledger.LockExpiry,
			Tries:  cfg.Ledger.LockTries,
		}, logger.Component(log, "locker"))
		ad.transfers = redisStorage.NewQueue[domain.PendingTransfer](rdb, ks, "transfers")
		ad.completions = redisStorage.NewQueue[domain.Completion](rdb, ks, "completions")
		ad.deadLetters = redisStorage.NewQueue[domain.Completion](rdb, ks, "completions:dead")
		ad.nonces = redisStorage.NewNonceStore(rdb, ks)
		ad.idem = redisStorage.NewIdempotencyCache(rdb, ks)
		ad.rateLimit = redisStorage.NewRateLimitStore(rdb, ks)
		ad.health = append(ad.health, redisStorage.NewHealthCheck(rdb))
	default:
		ad.locker = memory.NewKeyedLocker()
		ad.transfers = memory.NewQueue[domain.PendingTransfer](memoryQueueCapacity)
		ad.completions = memory.NewQueue[domain.Completion](memoryQueueCapacity)
		ad.deadLetters = memory.NewQueue[domain.Completion](memoryQueueCapacity)
		ad.nonces = memory.NewNonceStore()
		ad.idem = memory.NewIdempotencyCache()
	}

	var emitter ports.EventEmitter = events.NewLogEmitter(logger.Component(log, "ledger_log"))
	if cfg.Events.Kafka.Enabled {
		producer, err := events.NewKafkaProducer(events.KafkaConfig{
			Brokers: cfg.Events.Kafka.Brokers,
			Topic:   cfg.Events.Kafka.Topic,
		})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		kafkaEmitter := events.NewKafkaEmitter(producer, cfg.Events.Kafka.Topic, logger.Component(log, "kafka"))
		closers = append(closers, kafkaEmitter.Close)
		emitter = events.Fanout{emitter, kafkaEmitter}
		log.Info().Str("topic", cfg.Events.Kafka.Topic).Msg("ledger log mirrored to kafka")
	}

	sigSvc := service.NewHMACSignatureService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	var rail ports.PayoutRail
	switch cfg.Host.Mode {
	case "http":
		rail = host.NewHTTPRail(host.HTTPRailConfig{
			URL:          cfg.Host.PayoutURL,
			Secret:       cfg.Ledger.CallbackSecret,
			MaxAttempts:  cfg.Host.MaxAttempts,
			RetryBackoff: cfg.Host.RetryBackoff,
		}, &http.Client{Timeout: cfg.Host.Timeout}, sigSvc, logger.Component(log, "payout_rail"))
	default:
		rail = host.NewSimulatedRail(cfg.Host.FailRecipients)
	}

	executor := host.NewExecutor(ad.transfers, ad.completions, rail, host.ExecutorConfig{
		SelfAccount: cfg.Ledger.SelfAccount,
		Workers:     cfg.Host.Workers,
		PollTimeout: cfg.Host.PollTimeout,
	}, logger.Component(log, "executor"))

	ledgerSvc := service.NewLedgerService(ad.store, executor, ad.locker, emitter,
		cfg.Ledger.CombinedLogThreshold, logger.Component(log, "ledger"))
	reconcilerSvc := service.NewReconcilerService(ad.store, emitter, cfg.Ledger.SelfAccount,
		logger.Component(log, "reconciler"))
	reconcileWorker := worker.NewReconcileWorker(ad.completions, ad.deadLetters, reconcilerSvc, worker.ReconcileConfig{
		PollTimeout: cfg.Host.PollTimeout,
		MaxAttempts: cfg.Host.ReconcileAttempts,
		Backoff:     cfg.Host.ReconcileBackoff,
	}, logger.Component(log, "reconcile_worker"))

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		LedgerSvc:      ledgerSvc,
		ReconcilerSvc:  reconcilerSvc,
		TokenSvc:       tokenSvc,
		SigSvc:         sigSvc,
		NonceStore:     ad.nonces,
		IdemCache:      ad.idem,
		IdemTTL:        idempotencyTTL,
		RateLimitStore: ad.rateLimit,
		HealthCheckers: ad.health,
		SelfAccount:    cfg.Ledger.SelfAccount,
		CallbackSecret: cfg.Ledger.CallbackSecret,
		OpenAPISpec:    api.OpenAPISpec,
		Logger:         log,
	})

	return &App{
		Ledger:     ledgerSvc,
		Reconciler: reconcilerSvc,
		Tokens:     tokenSvc,
		Executor:   executor,
		Worker:     reconcileWorker,
		Rail:       rail,
		Router:     router,
		log:        log,
	}, cleanup, nil
}

// RunBackground runs the transfer executor and the reconcile worker until
// ctx is canceled.
func (a *App) RunBackground(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := a.Executor.Run(ctx); err != nil {
			a.log.Error().Err(err).Msg("transfer executor stopped with error")
		}
	}()
	go func() {
		defer wg.Done()
		if err := a.Worker.Run(ctx); err != nil {
			a.log.Error().Err(err).Msg("reconcile worker stopped with error")
		}
	}()
	wg.Wait()
}
