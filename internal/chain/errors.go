package chain

import (
	"errors"
	"net/http"
	"traveltrust/shared/failure"
)

var (
	ErrInsufficientFunds = &failure.Failure{Code: http.StatusPaymentRequired, Message: "Insufficient funds"}
	ErrInvalidAmount     = &failure.Failure{Code: http.StatusBadRequest, Message: "Invalid amount"}
	ErrInvalidAddress    = &failure.Failure{Code: http.StatusBadRequest, Message: "Invalid address"}
	ErrLedgerConflict    = &failure.Failure{Code: http.StatusConflict, Message: "Ledger changed concurrently, retry the request"}

	ErrNoContract   = errors.New("no component deployed at address")
	ErrCallDepth    = errors.New("call depth exceeded")
	ErrAddressInUse = errors.New("address already in use")
)
