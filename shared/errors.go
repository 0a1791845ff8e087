package shared

import (
	"errors"
	"net/http"
)

// Error kinds surfaced to clients. Anything currency-affecting maps to a
// kind so the UI can branch without string matching the message.
const (
	KindBadRequest          = "BAD_REQUEST"
	KindUnauthorized        = "UNAUTHORIZED"
	KindForbidden           = "FORBIDDEN"
	KindNotFound            = "NOT_FOUND"
	KindConflict            = "CONFLICT"
	KindGameNotCompleted    = "GAME_NOT_COMPLETED"
	KindInsufficientBalance = "INSUFFICIENT_BALANCE"
	KindReplayLocked        = "REPLAY_LOCKED"
	KindInvalidAmount       = "INVALID_AMOUNT"
	KindInternal            = "INTERNAL_ERROR"
)

type AppError struct {
	StatusCode int    `json:"code"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`

	Err  error       `json:"-"`
	Data interface{} `json:"data,omitempty"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func newAppError(status int, kind string, err error, message string) *AppError {
	return &AppError{StatusCode: status, Kind: kind, Message: message, Err: err}
}

func NewBadRequestError(err error, message string) *AppError {
	return newAppError(http.StatusBadRequest, KindBadRequest, err, message)
}

func NewUnauthorizedError(err error, message string) *AppError {
	return newAppError(http.StatusUnauthorized, KindUnauthorized, err, message)
}

func NewForbiddenError(err error, message string) *AppError {
	return newAppError(http.StatusForbidden, KindForbidden, err, message)
}

func NewNotFoundError(err error, message string) *AppError {
	return newAppError(http.StatusNotFound, KindNotFound, err, message)
}

func NewConflictError(err error, message string) *AppError {
	return newAppError(http.StatusConflict, KindConflict, err, message)
}

func NewInternalError(err error, message string) *AppError {
	return newAppError(http.StatusInternalServerError, KindInternal, err, message)
}

// Domain errors for the reward ledger.

func NewGameNotCompletedError(err error) *AppError {
	return newAppError(http.StatusConflict, KindGameNotCompleted, err, "Game not completed")
}

func NewInsufficientBalanceError(err error) *AppError {
	return newAppError(http.StatusPaymentRequired, KindInsufficientBalance, err, "Insufficient balance")
}

func NewReplayLockedError(err error) *AppError {
	return newAppError(http.StatusConflict, KindReplayLocked, err, "Replay is locked for this game")
}

// NewInvalidAmountError marks a programming error (zero/negative ledger
// amount, out-of-range tier lookup). Fails loudly as a 500.
func NewInvalidAmountError(err error, message string) *AppError {
	return newAppError(http.StatusInternalServerError, KindInvalidAmount, err, message)
}
