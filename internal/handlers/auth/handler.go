package auth

import (
	"net/http"
	"traveltrust/infras/otel"
	"traveltrust/internal/domains/account/model/dto"
	"traveltrust/internal/domains/account/service"
	"traveltrust/shared/constant"
	"traveltrust/shared/validator"
	"traveltrust/transport/http/response"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Account
	otel    otel.Otel
}

func New(service service.Account, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(r chi.Router) {
	r.Post("/auth/refresh", handler.RefreshTokens)
}

// InternalRouter mounts endpoints reserved for API key callers.
func (handler *Handler) InternalRouter(r chi.Router) {
	r.Post("/auth/tokens", handler.IssueTokens)
}

// IssueTokens mints a token pair for an account address.
// @Summary Issue tokens
// @Description Issue an access and refresh token acting for the given address. Requires the internal API key.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.IssueTokensRequest true "Account address"
// @Success 201 {object} response.Data[dto.TokenResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Router /v1/auth/tokens [post]
// @Security ApiKeyAuth
func (handler *Handler) IssueTokens(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".IssueTokens")
	defer scope.End()

	req := dto.IssueTokensRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.IssueTokens(ctx, common.HexToAddress(req.Address))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to issue tokens")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Tokens issued for " + res.Address)

	response.WithJSON(w, http.StatusCreated, res)
}

// RefreshTokens exchanges a refresh token for a new pair.
// @Summary Refresh tokens
// @Description Exchange a refresh token for a new token pair. The role is resolved again.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokensRequest true "Refresh token"
// @Success 200 {object} response.Data[dto.TokenResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Router /v1/auth/refresh [post]
func (handler *Handler) RefreshTokens(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RefreshTokens")
	defer scope.End()

	req := dto.RefreshTokensRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to refresh tokens")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Tokens refreshed")

	response.WithJSON(w, http.StatusOK, res)
}
