package service

import (
	"net/http"
	"traveltrust/shared/failure"
)

var (
	ErrNotAuthorized        = &failure.Failure{Code: http.StatusForbidden, Message: "Not authorized"}
	ErrDisputeAlreadyExists = &failure.Failure{Code: http.StatusConflict, Message: "Dispute already exists"}
	ErrDisputeNotOpen       = &failure.Failure{Code: http.StatusConflict, Message: "Dispute not open"}
	ErrDisputeNotFound      = &failure.Failure{Code: http.StatusNotFound, Message: "Dispute not found"}
	ErrNoDisputeForBooking  = &failure.Failure{Code: http.StatusNotFound, Message: "No dispute for booking"}
	ErrReasonTooLong        = &failure.Failure{Code: http.StatusBadRequest, Message: "Reason too long"}
	ErrNotesTooLong         = &failure.Failure{Code: http.StatusBadRequest, Message: "Notes too long"}
	ErrEscrowNotSet         = &failure.Failure{Code: http.StatusServiceUnavailable, Message: "Escrow ledger not configured"}
	ErrReputationNotSet     = &failure.Failure{Code: http.StatusServiceUnavailable, Message: "Reputation ledger not configured"}
)
