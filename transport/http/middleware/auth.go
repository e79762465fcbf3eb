package middleware

import (
	"context"
	"errors"
	"net/http"
	"traveltrust/config"
	"traveltrust/infras/jwt"
	"traveltrust/infras/otel"
	"traveltrust/permissions"
	"traveltrust/shared/constant"
	"traveltrust/shared/failure"
	"traveltrust/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type SkipAuthKey string

// Auth defines the interface for authentication middleware
type Auth interface {
	Auth(http.Handler) http.Handler
	APIKey(http.Handler) http.Handler
	RequireAPIKey(http.Handler) http.Handler
}

// Role defines the interface for role-based access control middleware
type Role interface {
	RBAC(http.Handler) http.Handler
}

type AuthRole interface {
	Auth
	Role
}

type authRoleImpl struct {
	jwtService jwt.JWT
	otel       otel.Otel
	table      *permissions.Table
	cfg        *config.Config
}

func NewAuthRoleMiddleware(jwtService jwt.JWT, otel otel.Otel, table *permissions.Table, cfg *config.Config) AuthRole {
	return &authRoleImpl{
		jwtService: jwtService,
		otel:       otel,
		table:      table,
		cfg:        cfg,
	}
}

// resolve maps the request to its chi pattern and table entry. routed is
// false when no handler matches, so the router can answer 404 or 405.
func (m *authRoleImpl) resolve(request *http.Request) (pattern string, route permissions.Route, routed bool) {
	rctx := chi.RouteContext(request.Context())
	if rctx == nil || rctx.Routes == nil {
		return request.URL.Path, permissions.Route{}, true
	}

	if !rctx.Routes.Match(chi.NewRouteContext(), request.Method, request.URL.Path) {
		return request.URL.Path, permissions.Route{}, false
	}

	pattern = rctx.Routes.Find(chi.NewRouteContext(), request.Method, request.URL.Path)

	route, _ = m.table.Lookup(request.Method, pattern)

	return pattern, route, true
}

func skipped(ctx context.Context) bool {
	skip, _ := ctx.Value(SkipAuthKey("skip")).(bool)

	return skip
}

// Auth validates the bearer token and stores the caller address and role in
// the request context. Public endpoints and API key callers pass through.
func (m *authRoleImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "auth.middleware")

		path, route, routed := m.resolve(request)

		if skipped(ctx) || !routed || route.Public {
			scope.End()
			next.ServeHTTP(writer, request)

			return
		}

		scope.SetAttributes(map[string]any{
			"middleware.type": "auth",
			"http.path":       path,
			"http.method":     request.Method,
		})

		tokenString, err := jwt.ExtractTokenFromHeader(request.Header.Get(constant.RequestHeaderAuthorization))
		if err != nil {
			fail := failure.Unauthorized("Missing authorization header")
			if errors.Is(err, jwt.ErrMalformedHeader) {
				fail = failure.Unauthorized("Invalid authorization header format")
			}

			response.WithError(writer, fail)
			scope.TraceError(fail)
			scope.End()

			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString, jwt.AccessToken)
		if err != nil {
			var message string

			switch {
			case errors.Is(err, jwt.ErrExpiredToken):
				message = "Token has expired"
			case errors.Is(err, jwt.ErrInvalidToken):
				message = "Invalid token"
			case errors.Is(err, jwt.ErrInvalidClaim):
				message = "Invalid token claims"
			default:
				message = "Token validation failed"
			}

			fail := failure.Unauthorized(message)
			response.WithError(writer, fail)
			scope.TraceError(fail)
			scope.End()

			return
		}

		address, _ := claims.Account()

		ctx = context.WithValue(request.Context(), constant.ContextKeyAddress, address)
		ctx = context.WithValue(ctx, constant.ContextKeyUserRole, claims.Role)
		ctx = context.WithValue(ctx, constant.ContextKeyTokenID, claims.TokenID)

		scope.End()
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// RBAC checks the caller role against the roles listed for the route.
// Requires prior authentication via Auth.
func (m *authRoleImpl) RBAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "rbac.middleware")

		if skipped(ctx) {
			scope.End()
			next.ServeHTTP(writer, request)

			return
		}

		if m.table == nil {
			scope.End()
			response.WithError(writer, failure.ForbiddenError)

			return
		}

		_, route, routed := m.resolve(request)
		role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

		if !routed || m.table.Skip || route.Allows(role) {
			scope.End()
			next.ServeHTTP(writer, request)

			return
		}

		scope.TraceError(failure.ForbiddenError)
		scope.SetAttributes(map[string]any{
			"user_role":     role,
			"allowed_roles": route.Roles,
			"reason":        "role_not_allowed",
		})
		scope.End()
		response.WithError(writer, failure.ForbiddenError)
	})
}

// APIKey marks requests carrying the internal API key so Auth and RBAC let
// them through. A wrong key is rejected outright.
func (m *authRoleImpl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "api_key.middleware")

		apiKey := request.Header.Get(constant.RequestHeaderAPIKey)
		if apiKey == "" {
			scope.SetAttribute("http.source", "client")
			scope.End()
			next.ServeHTTP(writer, request.WithContext(context.WithValue(ctx, SkipAuthKey("skip"), false)))

			return
		}

		scope.SetAttribute("http.source", "internal")

		if m.cfg.App.APIKey == "" || apiKey != m.cfg.App.APIKey {
			response.WithError(writer, failure.ForbiddenError)
			scope.TraceError(failure.ForbiddenError)
			scope.End()

			return
		}

		scope.End()
		next.ServeHTTP(writer, request.WithContext(context.WithValue(ctx, SkipAuthKey("skip"), true)))
	})
}

// RequireAPIKey guards internal endpoints; it must run after APIKey.
func (m *authRoleImpl) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if !skipped(request.Context()) {
			response.WithError(writer, failure.Forbidden("API key required"))

			return
		}

		next.ServeHTTP(writer, request)
	})
}
