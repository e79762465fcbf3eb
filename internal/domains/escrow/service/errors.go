package service

import (
	"net/http"
	"traveltrust/shared/failure"
)

var (
	ErrPaymentRequired        = &failure.Failure{Code: http.StatusPaymentRequired, Message: "Payment required"}
	ErrGuideNotQualified      = &failure.Failure{Code: http.StatusUnprocessableEntity, Message: "Guide not qualified"}
	ErrCannotBookSelf         = &failure.Failure{Code: http.StatusBadRequest, Message: "Cannot book yourself"}
	ErrDescriptionTooLong     = &failure.Failure{Code: http.StatusBadRequest, Message: "Description too long"}
	ErrBookingNotFound        = &failure.Failure{Code: http.StatusNotFound, Message: "Booking not found"}
	ErrNotTheGuide            = &failure.Failure{Code: http.StatusForbidden, Message: "Not the guide"}
	ErrNotTheTraveler         = &failure.Failure{Code: http.StatusForbidden, Message: "Not the traveler"}
	ErrBookingNotPending      = &failure.Failure{Code: http.StatusConflict, Message: "Booking not pending"}
	ErrBookingNotConfirmed    = &failure.Failure{Code: http.StatusConflict, Message: "Booking not confirmed"}
	ErrOnlyPendingCancellable = &failure.Failure{Code: http.StatusConflict, Message: "Can only cancel pending"}
	ErrBookingDisputed        = &failure.Failure{Code: http.StatusConflict, Message: "Booking is under dispute"}
	ErrBookingNotDisputable   = &failure.Failure{Code: http.StatusConflict, Message: "Booking not disputable"}
	ErrOnlyDisputeArbiter     = &failure.Failure{Code: http.StatusForbidden, Message: "Only dispute contract"}
	ErrReputationNotSet       = &failure.Failure{Code: http.StatusServiceUnavailable, Message: "Reputation ledger not configured"}
)
