package di

import (
	"context"
	"time"

	"traveltrust/config"
	"traveltrust/infras/kafka"
	"traveltrust/infras/metrics"
	"traveltrust/infras/otel"
	"traveltrust/infras/postgres"
	"traveltrust/internal/chain"
	journalService "traveltrust/internal/domains/journal/service"
	"traveltrust/internal/handlers/health"
	gRepository "traveltrust/shared/repository"
	"traveltrust/transport/http"
	"traveltrust/transport/http/router"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const otelFlushTimeout = 5 * time.Second

// newRuntime creates the shared ledger runtime backed by Postgres, with the
// journal and metrics observing every committed operation, in that order.
func newRuntime(journal journalService.Journal, metrics *metrics.Metrics, store *gRepository.LedgerStore, cfg *config.Config) *chain.Runtime {
	rt := chain.NewRuntime()

	rt.UseStorage(store)
	rt.SetSharedStorage(cfg.Trust.SharedStorage)
	rt.SetPersistTimeout(time.Duration(cfg.Trust.PersistTimeoutSeconds) * time.Second)
	rt.SetEmitTimeout(time.Duration(cfg.Trust.EmitTimeoutSeconds) * time.Second)

	rt.Subscribe(journal)
	rt.Subscribe(metrics)

	return rt
}

func newHealthHandler(db *postgres.Connection, redis *goRedis.Client, otel otel.Otel) health.Handler {
	return health.New(otel,
		health.Check{Name: "postgres", Ping: db.Ping},
		health.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return redis.Ping(ctx).Err()
		}},
	)
}

func newHTTP(cfg *config.Config, r router.Router, rt *chain.Runtime, kafka kafka.Client, db *postgres.Connection, redis *goRedis.Client, otel otel.Otel) *http.HTTP {
	server := http.New(cfg, r)

	server.OnShutdown(func() {
		emitCtx, cancel := context.WithTimeout(context.Background(), otelFlushTimeout)
		defer cancel()

		// Pending receipts still need kafka, redis and postgres.
		if err := rt.Close(emitCtx); err != nil {
			log.Error().Err(err).Msg("Failed to deliver pending ledger events")
		}

		if err := kafka.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close kafka writers")
		}

		if err := redis.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close redis client")
		}

		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close postgres connections")
		}

		ctx, cancel := context.WithTimeout(context.Background(), otelFlushTimeout)
		defer cancel()

		if err := otel.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to flush traces")
		}
	})

	return server
}
