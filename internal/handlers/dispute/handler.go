package dispute

import (
	"net/http"
	"traveltrust/infras/otel"
	"traveltrust/internal/domains/dispute/model/dto"
	"traveltrust/internal/domains/dispute/service"
	"traveltrust/internal/handlers"
	"traveltrust/shared/constant"
	"traveltrust/shared/validator"
	"traveltrust/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Dispute
	otel    otel.Otel
}

func New(service service.Dispute, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(r chi.Router) {
	r.Post("/disputes", handler.RaiseDispute)
	r.Get("/disputes/{id}", handler.GetDispute)
	r.Post("/disputes/{id}/resolve", handler.ResolveDispute)
	r.Get("/bookings/{id}/dispute", handler.GetBookingDispute)
}

// RaiseDispute opens a dispute against a booking the caller is party to.
// @Summary Raise dispute
// @Tags Dispute
// @Accept json
// @Produce json
// @Param request body dto.RaiseDisputeRequest true "Dispute"
// @Param Idempotency-Key header string false "Idempotency key"
// @Success 201 {object} response.Data[dto.DisputeResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/disputes [post]
// @Security BearerAuth
func (handler *Handler) RaiseDispute(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RaiseDispute")
	defer scope.End()

	caller, err := handlers.Caller(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	req := dto.RaiseDisputeRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.RaiseDispute(ctx, caller, *req.BookingID, req.Reason)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Uint64("bookingId", *req.BookingID).Msg("failed to raise dispute")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Dispute raised")

	response.WithJSON(w, http.StatusCreated, res)
}

// ResolveDispute settles an open dispute. Arbitrator only.
// @Summary Resolve dispute
// @Tags Dispute
// @Accept json
// @Produce json
// @Param id path int true "Dispute ID"
// @Param request body dto.ResolveDisputeRequest true "Resolution"
// @Success 200 {object} response.Data[dto.DisputeResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/disputes/{id}/resolve [post]
// @Security BearerAuth
func (handler *Handler) ResolveDispute(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ResolveDispute")
	defer scope.End()

	caller, err := handlers.Caller(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	id, err := handlers.IDParam(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	req := dto.ResolveDisputeRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.ResolveDispute(ctx, caller, id, *req.FavorTraveler, req.Notes)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Uint64("disputeId", id).Msg("failed to resolve dispute")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Dispute " + res.Status)

	response.WithJSON(w, http.StatusOK, res)
}

// GetDispute returns a dispute by id.
// @Summary Get dispute
// @Tags Dispute
// @Produce json
// @Param id path int true "Dispute ID"
// @Success 200 {object} response.Data[dto.DisputeResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/disputes/{id} [get]
func (handler *Handler) GetDispute(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetDispute")
	defer scope.End()

	id, err := handlers.IDParam(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.service.GetDispute(ctx, id)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetBookingDispute returns the dispute raised against a booking.
// @Summary Get booking dispute
// @Tags Dispute
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Data[dto.DisputeResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/bookings/{id}/dispute [get]
func (handler *Handler) GetBookingDispute(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingDispute")
	defer scope.End()

	id, err := handlers.IDParam(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.service.GetBookingDispute(ctx, id)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
