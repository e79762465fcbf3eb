//go:build wireinject
// +build wireinject

package di

import (
	"traveltrust/config"
	"traveltrust/infras/jwt"
	"traveltrust/infras/kafka"
	"traveltrust/infras/metrics"
	"traveltrust/infras/otel"
	"traveltrust/infras/postgres"
	"traveltrust/infras/redis"
	"traveltrust/internal/system"
	"traveltrust/permissions"
	"traveltrust/shared/cache"
	gRepository "traveltrust/shared/repository"
	"traveltrust/transport/http"
	"traveltrust/transport/http/middleware"
	"traveltrust/transport/http/router"

	"github.com/google/wire"

	accountService "traveltrust/internal/domains/account/service"
	disputeRepository "traveltrust/internal/domains/dispute/repository"
	disputeService "traveltrust/internal/domains/dispute/service"
	escrowRepository "traveltrust/internal/domains/escrow/repository"
	escrowService "traveltrust/internal/domains/escrow/service"
	journalRepository "traveltrust/internal/domains/journal/repository"
	journalService "traveltrust/internal/domains/journal/service"
	reputationRepository "traveltrust/internal/domains/reputation/repository"
	reputationService "traveltrust/internal/domains/reputation/service"
	stakingRepository "traveltrust/internal/domains/staking/repository"
	stakingService "traveltrust/internal/domains/staking/service"
	accountHandler "traveltrust/internal/handlers/account"
	adminHandler "traveltrust/internal/handlers/admin"
	authHandler "traveltrust/internal/handlers/auth"
	disputeHandler "traveltrust/internal/handlers/dispute"
	escrowHandler "traveltrust/internal/handlers/escrow"
	journalHandler "traveltrust/internal/handlers/journal"
	reputationHandler "traveltrust/internal/handlers/reputation"
	stakingHandler "traveltrust/internal/handlers/staking"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	metrics.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var journalDomain = wire.NewSet(
	journalRepository.New,
	journalService.New,
	gRepository.NewLedgerStore,
	newRuntime,
)

var trustDomain = wire.NewSet(
	stakingRepository.New,
	stakingService.New,
	escrowRepository.New,
	escrowService.New,
	reputationRepository.New,
	reputationService.New,
	disputeRepository.New,
	disputeService.New,
	wire.Bind(new(escrowService.Qualifier), new(stakingService.Staking)),
	system.New,
)

var accountDomain = wire.NewSet(
	accountService.New,
	wire.Bind(new(accountService.Roles), new(*system.System)),
	wire.Bind(new(adminHandler.Configurator), new(*system.System)),
)

var domains = wire.NewSet(
	journalDomain,
	trustDomain,
	accountDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	newHealthHandler,
	authHandler.New,
	accountHandler.New,
	stakingHandler.New,
	escrowHandler.New,
	reputationHandler.New,
	disputeHandler.New,
	adminHandler.New,
	journalHandler.New,
	router.New,
)

func InitializeService() (*http.HTTP, error) {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		newHTTP,
	)

	return &http.HTTP{}, nil
}
