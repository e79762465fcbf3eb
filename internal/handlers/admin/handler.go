package admin

import (
	"context"
	"net/http"
	"traveltrust/infras/otel"
	"traveltrust/internal/handlers"
	"traveltrust/internal/system"
	"traveltrust/shared/constant"
	"traveltrust/shared/validator"
	"traveltrust/transport/http/response"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Configurator repoints component peers. Implemented by *system.System.
type Configurator interface {
	Configure(ctx context.Context, caller common.Address, component, peer string, addr common.Address) error
}

type Handler struct {
	system Configurator
	otel   otel.Otel
}

func New(system Configurator, otel otel.Otel) Handler {
	return Handler{
		system: system,
		otel:   otel,
	}
}

func (handler *Handler) Router(r chi.Router) {
	r.Put("/admin/peers", handler.ConfigurePeer)
}

// ConfigurePeer points one peer slot of a component at a new address.
// @Summary Configure component peer
// @Description Owner only. Valid pairs are escrow/reputation, escrow/dispute, reputation/escrow, reputation/dispute and dispute/arbitrator.
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body system.ConfigurePeerRequest true "Peer"
// @Success 200 {object} response.Data[system.ConfigurePeerResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Router /v1/admin/peers [put]
// @Security BearerAuth
func (handler *Handler) ConfigurePeer(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ConfigurePeer")
	defer scope.End()

	caller, err := handlers.Caller(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	req := system.ConfigurePeerRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	addr := common.HexToAddress(req.Address)

	if err := handler.system.Configure(ctx, caller, req.Component, req.Peer, addr); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("component", req.Component).Str("peer", req.Peer).Msg("failed to configure peer")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Peer configured")

	response.WithJSON(w, http.StatusOK, system.ConfigurePeerResponse{
		Component: req.Component,
		Peer:      req.Peer,
		Address:   addr.Hex(),
	})
}
