package service

import (
	"net/http"
	"traveltrust/shared/failure"
)

var (
	ErrInsufficientStake      = &failure.Failure{Code: http.StatusBadRequest, Message: "Insufficient stake"}
	ErrAlreadyRegistered      = &failure.Failure{Code: http.StatusConflict, Message: "Already registered"}
	ErrStakePendingWithdrawal = &failure.Failure{Code: http.StatusConflict, Message: "Withdraw previous stake first"}
	ErrNotRegistered          = &failure.Failure{Code: http.StatusConflict, Message: "Not registered"}
	ErrStillRegistered        = &failure.Failure{Code: http.StatusConflict, Message: "Still registered"}
	ErrLockupNotOver          = &failure.Failure{Code: http.StatusConflict, Message: "Lockup period not over"}
	ErrNothingToWithdraw      = &failure.Failure{Code: http.StatusConflict, Message: "No stake to withdraw"}
)
