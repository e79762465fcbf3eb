package reputation

import (
	"net/http"
	"traveltrust/infras/otel"
	"traveltrust/internal/domains/reputation/service"
	"traveltrust/internal/handlers"
	"traveltrust/shared/constant"
	"traveltrust/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service service.Reputation
	otel    otel.Otel
}

func New(service service.Reputation, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(r chi.Router) {
	r.Get("/reputation/{address}", handler.GetReputation)
}

// GetReputation returns the score and completed bookings of a guide.
// Unknown guides report the default score.
// @Summary Get guide reputation
// @Tags Reputation
// @Produce json
// @Param address path string true "Guide address"
// @Success 200 {object} response.Data[dto.ReputationResponse]
// @Failure 400 {object} response.Error
// @Router /v1/reputation/{address} [get]
func (handler *Handler) GetReputation(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReputation")
	defer scope.End()

	guide, err := handlers.AddressParam(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, handler.service.GetReputation(ctx, guide))
}
