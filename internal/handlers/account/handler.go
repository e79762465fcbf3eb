package account

import (
	"net/http"
	"traveltrust/infras/otel"
	"traveltrust/internal/domains/account/model/dto"
	"traveltrust/internal/domains/account/service"
	"traveltrust/internal/handlers"
	"traveltrust/shared/amount"
	"traveltrust/shared/constant"
	"traveltrust/shared/validator"
	"traveltrust/transport/http/response"

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
	r.Get("/accounts/{address}", handler.GetBalance)
}

func (handler *Handler) InternalRouter(r chi.Router) {
	r.Post("/accounts/{address}/deposits", handler.Deposit)
}

// GetBalance returns the native balance of an account.
// @Summary Get balance
// @Tags Account
// @Produce json
// @Param address path string true "Account address"
// @Success 200 {object} response.Data[dto.BalanceResponse]
// @Failure 400 {object} response.Error
// @Router /v1/accounts/{address} [get]
func (handler *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBalance")
	defer scope.End()

	addr, err := handlers.AddressParam(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, handler.service.GetBalance(ctx, addr))
}

// Deposit credits an account from an external payment rail.
// @Summary Deposit funds
// @Description Credit value to an account. Requires the internal API key.
// @Tags Account
// @Accept json
// @Produce json
// @Param address path string true "Account address"
// @Param request body dto.DepositRequest true "Deposit"
// @Success 201 {object} response.Data[dto.BalanceResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Router /v1/accounts/{address}/deposits [post]
// @Security ApiKeyAuth
func (handler *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Deposit")
	defer scope.End()

	addr, err := handlers.AddressParam(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	req := dto.DepositRequest{}

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

	res, err := handler.service.Deposit(ctx, addr, value)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("account", addr.Hex()).Msg("failed to deposit")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Deposit credited to " + res.Address)

	response.WithJSON(w, http.StatusCreated, res)
}
