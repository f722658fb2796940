package apperr

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Validation
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeEmptyMessage    Code = "EMPTY_MESSAGE"
	CodeEmptyAnswer     Code = "EMPTY_ANSWER"

	// Not found
	CodeEventNotFound    Code = "EVENT_NOT_FOUND"
	CodeQuestionNotFound Code = "QUESTION_NOT_FOUND"
	CodeNotRegistered    Code = "NOT_REGISTERED"

	// Authentication
	CodeTokenMissing     Code = "TOKEN_MISSING"
	CodeTokenExpired     Code = "TOKEN_EXPIRED"
	CodeTokenInvalid     Code = "TOKEN_INVALID"
	CodeIdentityNotFound Code = "IDENTITY_NOT_FOUND"

	// Authorization
	CodeForbidden Code = "FORBIDDEN"
	CodeNotJoined Code = "NOT_JOINED"

	// Conflict / precondition
	CodeEventNotOpen       Code = "EVENT_NOT_OPEN"
	CodeEventNotAccessible Code = "EVENT_NOT_ACCESSIBLE"
	CodeAlreadyRegistered  Code = "ALREADY_REGISTERED"
	CodeCapacityExceeded   Code = "CAPACITY_EXCEEDED"
	CodeInvalidTransition  Code = "INVALID_STATUS_TRANSITION"
)

// HTTPStatus maps a code to the status the HTTP surface reports.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidArgument, CodeEmptyMessage, CodeEmptyAnswer:
		return http.StatusBadRequest
	case CodeEventNotFound, CodeQuestionNotFound, CodeNotRegistered:
		return http.StatusNotFound
	case CodeTokenMissing, CodeTokenExpired, CodeTokenInvalid, CodeIdentityNotFound:
		return http.StatusUnauthorized
	case CodeForbidden, CodeNotJoined:
		return http.StatusForbidden
	case CodeEventNotOpen, CodeEventNotAccessible, CodeAlreadyRegistered,
		CodeCapacityExceeded, CodeInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
