package journal

import (
	"net/http"
	"time"

	"traveltrust/infras/otel"
	"traveltrust/internal/domains/journal/model"
	"traveltrust/internal/domains/journal/model/dto"
	"traveltrust/internal/domains/journal/service"
	"traveltrust/internal/handlers"
	"traveltrust/shared/constant"
	gDto "traveltrust/shared/dto"
	"traveltrust/shared/failure"
	"traveltrust/transport/http/response"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

var ErrInvalidTime = failure.BadRequestFromString("Invalid time, expected RFC3339")

type Handler struct {
	service service.Journal
	otel    otel.Otel
}

func New(service service.Journal, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(r chi.Router) {
	r.Get("/events", handler.GetEvents)
}

// GetEvents pages through the journal of committed operations.
// @Summary List events
// @Description Page through recorded events, newest first by default.
// @Tags Journal
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param sort_by query string false "Sort field"
// @Param sort_dir query string false "Sort direction" Enums(ASC, DESC)
// @Param type query string false "Event type, e.g. escrow.bookingCreated"
// @Param tx_id query string false "Transaction id"
// @Param component query string false "Emitting component"
// @Param sender query string false "Transaction sender address"
// @Param from query string false "Earliest creation time (RFC3339)"
// @Param to query string false "Latest creation time (RFC3339)"
// @Success 200 {object} response.Data[dto.GetEventsResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/events [get]
func (handler *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetEvents")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	query := r.URL.Query()
	filter := dto.EventFilter{
		Type:      query.Get(model.FieldType),
		TxID:      query.Get(model.FieldTxID),
		Component: query.Get(model.FieldComponent),
	}

	if sender := query.Get(model.FieldSender); sender != "" {
		if !common.IsHexAddress(sender) {
			scope.TraceError(handlers.ErrInvalidAddress)
			response.WithError(w, handlers.ErrInvalidAddress)

			return
		}

		filter.Sender = common.HexToAddress(sender).Hex()
	}

	for key, dst := range map[string]*time.Time{"from": &filter.From, "to": &filter.To} {
		raw := query.Get(key)
		if raw == "" {
			continue
		}

		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			scope.TraceError(err)
			response.WithError(w, ErrInvalidTime)

			return
		}

		*dst = parsed.UTC()
	}

	events, err := handler.service.GetAll(ctx, queryParams, filter.ToFilterGroup())
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get events")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Events retrieved successfully")

	response.WithJSON(w, http.StatusOK, events)
}
