package staking

import (
	"net/http"
	"traveltrust/infras/otel"
	"traveltrust/internal/domains/staking/model/dto"
	"traveltrust/internal/domains/staking/service"
	"traveltrust/internal/handlers"
	"traveltrust/shared/amount"
	"traveltrust/shared/constant"
	"traveltrust/shared/validator"
	"traveltrust/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Staking
	otel    otel.Otel
}

func New(service service.Staking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(r chi.Router) {
	r.Post("/staking/register", handler.RegisterGuide)
	r.Post("/staking/unregister", handler.UnregisterGuide)
	r.Post("/staking/withdraw", handler.WithdrawStake)
	r.Get("/staking/guides/{address}", handler.GetGuideInfo)
	r.Get("/staking/guides/{address}/qualification", handler.IsQualified)
}

// RegisterGuide locks the request value as the caller's guide stake.
// @Summary Register as guide
// @Description Lock at least the minimum stake to become a qualified guide.
// @Tags Staking
// @Accept json
// @Produce json
// @Param request body dto.RegisterGuideRequest true "Stake value in ether"
// @Param Idempotency-Key header string false "Idempotency key"
// @Success 201 {object} response.Data[dto.GuideStakeResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/staking/register [post]
// @Security BearerAuth
func (handler *Handler) RegisterGuide(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RegisterGuide")
	defer scope.End()

	caller, err := handlers.Caller(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	req := dto.RegisterGuideRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	value, err := amount.ParseEther(req.Value)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.service.RegisterGuide(ctx, caller, value)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("guide", caller.Hex()).Msg("failed to register guide")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Guide registered")

	response.WithJSON(w, http.StatusCreated, res)
}

// UnregisterGuide starts the lockup period of the caller's stake.
// @Summary Unregister guide
// @Tags Staking
// @Produce json
// @Success 200 {object} response.Data[dto.GuideStakeResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Router /v1/staking/unregister [post]
// @Security BearerAuth
func (handler *Handler) UnregisterGuide(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UnregisterGuide")
	defer scope.End()

	caller, err := handlers.Caller(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.service.UnregisterGuide(ctx, caller)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("guide", caller.Hex()).Msg("failed to unregister guide")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Guide unregistered")

	response.WithJSON(w, http.StatusOK, res)
}

// WithdrawStake returns the caller's stake once the lockup has passed.
// @Summary Withdraw stake
// @Tags Staking
// @Produce json
// @Success 200 {object} response.Data[dto.WithdrawStakeResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Router /v1/staking/withdraw [post]
// @Security BearerAuth
func (handler *Handler) WithdrawStake(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".WithdrawStake")
	defer scope.End()

	caller, err := handlers.Caller(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.service.WithdrawStake(ctx, caller)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("guide", caller.Hex()).Msg("failed to withdraw stake")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Stake withdrawn")

	response.WithJSON(w, http.StatusOK, res)
}

// GetGuideInfo returns the stake record of a guide.
// @Summary Get guide stake
// @Tags Staking
// @Produce json
// @Param address path string true "Guide address"
// @Success 200 {object} response.Data[dto.GuideStakeResponse]
// @Failure 400 {object} response.Error
// @Router /v1/staking/guides/{address} [get]
func (handler *Handler) GetGuideInfo(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetGuideInfo")
	defer scope.End()

	guide, err := handlers.AddressParam(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, handler.service.GetGuideInfo(ctx, guide))
}

// IsQualified reports whether a guide may currently accept bookings.
// @Summary Check guide qualification
// @Tags Staking
// @Produce json
// @Param address path string true "Guide address"
// @Success 200 {object} response.Data[dto.QualificationResponse]
// @Failure 400 {object} response.Error
// @Router /v1/staking/guides/{address}/qualification [get]
func (handler *Handler) IsQualified(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".IsQualified")
	defer scope.End()

	guide, err := handlers.AddressParam(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, dto.QualificationResponse{
		Guide:       guide.Hex(),
		IsQualified: handler.service.IsQualified(ctx, guide),
	})
}
