package game

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable identifier callers use to tell error kinds apart.
type ErrorCode string

const (
	CodeGameInProgress    ErrorCode = "GameInProgress"
	CodeNotEnoughPlayers  ErrorCode = "NotEnoughPlayers"
	CodeNotYourTurn       ErrorCode = "NotYourTurn"
	CodeWrongPhase        ErrorCode = "WrongPhase"
	CodeGameNotInProgress ErrorCode = "GameNotInProgress"
	CodeUnknownAction     ErrorCode = "UnknownAction"
	CodeInvalidRequest    ErrorCode = "InvalidRequest"
	CodeStorageFailure    ErrorCode = "StorageFailure"
	CodeActorStopped      ErrorCode = "ActorStopped"
	CodeInternal          ErrorCode = "Internal"
)

// Error is returned by every game operation that fails. Errors with the same
// Code match each other under errors.Is.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"error"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrGameInProgress    = &Error{Code: CodeGameInProgress, Message: "cannot join game in progress"}
	ErrNotEnoughPlayers  = &Error{Code: CodeNotEnoughPlayers, Message: "need at least 2 active players to start"}
	ErrNotYourTurn       = &Error{Code: CodeNotYourTurn, Message: "not your turn"}
	ErrWrongPhase        = &Error{Code: CodeWrongPhase, Message: "action not allowed in current phase"}
	ErrGameNotInProgress = &Error{Code: CodeGameNotInProgress, Message: "game not in progress"}
	ErrUnknownAction     = &Error{Code: CodeUnknownAction, Message: "unknown action"}
	ErrInvalidRequest    = &Error{Code: CodeInvalidRequest, Message: "invalid request"}
	ErrStorageFailure    = &Error{Code: CodeStorageFailure, Message: "failed to persist game state"}
	ErrActorStopped      = &Error{Code: CodeActorStopped, Message: "game actor stopped"}
)

func newError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// InvalidRequest builds a transport error for a malformed or incomplete request.
func InvalidRequest(format string, args ...interface{}) *Error {
	return newError(CodeInvalidRequest, format, args...)
}

// CodeOf returns the code carried by err, or CodeInternal.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsValidation reports whether err was caused by the caller's request or by a
// stale view of the game. These are safe to retry after re-fetching state.
func IsValidation(err error) bool {
	switch CodeOf(err) {
	case CodeGameInProgress, CodeNotEnoughPlayers, CodeNotYourTurn, CodeWrongPhase,
		CodeGameNotInProgress, CodeUnknownAction, CodeInvalidRequest:
		return true
	default:
		return false
	}
}
