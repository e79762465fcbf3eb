package router

import (
	"net/http"
	"traveltrust/infras/metrics"
	"traveltrust/internal/handlers/account"
	"traveltrust/internal/handlers/admin"
	"traveltrust/internal/handlers/auth"
	"traveltrust/internal/handlers/dispute"
	"traveltrust/internal/handlers/escrow"
	"traveltrust/internal/handlers/health"
	"traveltrust/internal/handlers/journal"
	"traveltrust/internal/handlers/reputation"
	"traveltrust/internal/handlers/staking"
	"traveltrust/shared/constant"
	"traveltrust/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type DomainHandlers struct {
	Health     health.Handler
	Auth       auth.Handler
	Account    account.Handler
	Staking    staking.Handler
	Escrow     escrow.Handler
	Reputation reputation.Handler
	Dispute    dispute.Handler
	Admin      admin.Handler
	Journal    journal.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	app            middleware.AppMiddleware
	authRole       middleware.AuthRole
	metrics        *metrics.Metrics
}

func New(domainHandlers DomainHandlers, app middleware.AppMiddleware, authRole middleware.AuthRole, metrics *metrics.Metrics) Router {
	return Router{
		DomainHandlers: domainHandlers,
		app:            app,
		authRole:       authRole,
		metrics:        metrics,
	}
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Use(
		chiMiddleware.Recoverer,
		r.app.RequestID,
		r.metrics.Middleware,
		r.app.Tracing,
		r.app.Logger,
		r.app.Timeout(),
		r.app.CORS(),
		r.app.RateLimit(),
		chiMiddleware.RequestSize(constant.RequestMaxBodyBytes),
		r.authRole.APIKey,
		r.authRole.Auth,
		r.authRole.RBAC,
		r.app.Idempotency(),
	)

	r.DomainHandlers.Health.Router(router)
	router.Method(http.MethodGet, "/metrics", r.metrics.Handler())
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.Account.Router(routerGroup)
		r.DomainHandlers.Staking.Router(routerGroup)
		r.DomainHandlers.Escrow.Router(routerGroup)
		r.DomainHandlers.Reputation.Router(routerGroup)
		r.DomainHandlers.Dispute.Router(routerGroup)
		r.DomainHandlers.Admin.Router(routerGroup)
		r.DomainHandlers.Journal.Router(routerGroup)

		routerGroup.Group(func(internal chi.Router) {
			internal.Use(r.authRole.RequireAPIKey)

			r.DomainHandlers.Auth.InternalRouter(internal)
			r.DomainHandlers.Account.InternalRouter(internal)
		})
	})
}
