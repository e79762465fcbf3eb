package escrow

import (
	"context"
	"net/http"
	"traveltrust/infras/otel"
	"traveltrust/internal/domains/escrow/model/dto"
	"traveltrust/internal/domains/escrow/service"
	"traveltrust/internal/handlers"
	"traveltrust/shared/amount"
	"traveltrust/shared/constant"
	"traveltrust/shared/validator"
	"traveltrust/transport/http/response"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Escrow
	otel    otel.Otel
}

func New(service service.Escrow, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(r chi.Router) {
	r.Post("/bookings", handler.CreateBooking)
	r.Get("/bookings/{id}", handler.GetBooking)
	r.Post("/bookings/{id}/confirm", handler.ConfirmBooking)
	r.Post("/bookings/{id}/complete", handler.CompleteBooking)
	r.Post("/bookings/{id}/cancel", handler.CancelBooking)
	r.Get("/travelers/{address}/bookings", handler.GetTravelerBookings)
	r.Get("/guides/{address}/bookings", handler.GetGuideBookings)
}

// CreateBooking opens a booking with a qualified guide and escrows the payment.
// @Summary Create booking
// @Description Create a booking paid with the request value. The value stays in escrow until completion, cancellation or dispute settlement.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Booking"
// @Param Idempotency-Key header string false "Idempotency key"
// @Success 201 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings [post]
// @Security BearerAuth
func (handler *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	caller, err := handlers.Caller(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	req := dto.CreateBookingRequest{}

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

	res, err := handler.service.CreateBooking(ctx, caller, common.HexToAddress(req.Guide), req.Description, value)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("traveler", caller.Hex()).Msg("failed to create booking")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking created")

	response.WithJSON(w, http.StatusCreated, res)
}

// GetBooking returns a booking by id.
// @Summary Get booking
// @Tags Booking
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/bookings/{id} [get]
func (handler *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBooking")
	defer scope.End()

	id, err := handlers.IDParam(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.service.GetBooking(ctx, id)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// ConfirmBooking lets the guide accept a pending booking.
// @Summary Confirm booking
// @Tags Booking
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/bookings/{id}/confirm [post]
// @Security BearerAuth
func (handler *Handler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	handler.transition(w, r, "ConfirmBooking", handler.service.ConfirmBooking)
}

// CompleteBooking releases the escrowed payment to the guide.
// @Summary Complete booking
// @Tags Booking
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/bookings/{id}/complete [post]
// @Security BearerAuth
func (handler *Handler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	handler.transition(w, r, "CompleteBooking", handler.service.CompleteBooking)
}

// CancelBooking refunds a booking that has not been completed.
// @Summary Cancel booking
// @Tags Booking
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/bookings/{id}/cancel [post]
// @Security BearerAuth
func (handler *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	handler.transition(w, r, "CancelBooking", handler.service.CancelBooking)
}

// GetTravelerBookings lists booking ids created by a traveler.
// @Summary List traveler bookings
// @Tags Booking
// @Produce json
// @Param address path string true "Traveler address"
// @Success 200 {object} response.Data[dto.BookingIDsResponse]
// @Failure 400 {object} response.Error
// @Router /v1/travelers/{address}/bookings [get]
func (handler *Handler) GetTravelerBookings(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, "GetTravelerBookings", handler.service.GetTravelerBookings)
}

// GetGuideBookings lists booking ids assigned to a guide.
// @Summary List guide bookings
// @Tags Booking
// @Produce json
// @Param address path string true "Guide address"
// @Success 200 {object} response.Data[dto.BookingIDsResponse]
// @Failure 400 {object} response.Error
// @Router /v1/guides/{address}/bookings [get]
func (handler *Handler) GetGuideBookings(w http.ResponseWriter, r *http.Request) {
	handler.list(w, r, "GetGuideBookings", handler.service.GetGuideBookings)
}

func (handler *Handler) transition(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	fn func(ctx context.Context, caller common.Address, id uint64) (dto.BookingResponse, error),
) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+name)
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

	res, err := fn(ctx, caller, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Uint64("bookingId", id).Str("caller", caller.Hex()).Msg("failed to " + name)

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking " + res.Status)

	response.WithJSON(w, http.StatusOK, res)
}

func (handler *Handler) list(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	fn func(ctx context.Context, addr common.Address) []uint64,
) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+name)
	defer scope.End()

	addr, err := handlers.AddressParam(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	ids := fn(ctx, addr)
	if ids == nil {
		ids = []uint64{}
	}

	response.WithJSON(w, http.StatusOK, dto.BookingIDsResponse{
		Address:    addr.Hex(),
		BookingIDs: ids,
	})
}
