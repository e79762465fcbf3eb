package service

import (
	"net/http"
	"traveltrust/shared/failure"
)

var (
	ErrOnlyEscrow         = &failure.Failure{Code: http.StatusForbidden, Message: "Only escrow"}
	ErrOnlyDisputeArbiter = &failure.Failure{Code: http.StatusForbidden, Message: "Only dispute contract"}
)
