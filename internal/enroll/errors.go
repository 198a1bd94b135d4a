package enroll

import (
	"errors"
	"net/http"
)

// Client-facing messages.
const (
	MsgMissingData        = "missing data"
	MsgIINRequired        = "iin not provided"
	MsgIINInvalid         = "invalid iin format"
	MsgUserIDInvalid      = "invalid user id"
	MsgPhotoRequired      = "photo not provided"
	MsgInvalidImageFormat = "invalid image format"
	MsgInvalidImageData   = "invalid image data"
	MsgUserNotFound       = "User not found"
	MsgBioUpdateFailed    = "could not update biometrics"
	MsgStoreUnavailable   = "directory unavailable"
	MsgInternal           = "internal server error"
)

// ValidationError is malformed or missing input.
type ValidationError struct {
	Message string
	cause   error
}

// Validation builds a ValidationError with a client-facing message.
func Validation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return e.cause }

// NotFoundError means a well-formed identifier resolved to nothing.
type NotFoundError struct {
	IIN string
}

func (e *NotFoundError) Error() string { return "no user for iin " + e.IIN }

// UpstreamError is a failed or empty Perco call.
type UpstreamError struct {
	Message string
	Err     error
}

func (e *UpstreamError) Error() string { return e.Message + ": " + e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }

// ConnectionError means the directory store is unreachable.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return "directory unreachable: " + e.Err.Error() }
func (e *ConnectionError) Unwrap() error { return e.Err }

// Public returns the HTTP status and the message that may be shown to the
// caller for err. Anything outside the taxonomy is an unexpected error and
// gets a generic message.
func Public(err error) (int, string) {
	var (
		ve *ValidationError
		nf *NotFoundError
		ue *UpstreamError
		ce *ConnectionError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.As(err, &nf):
		return http.StatusNotFound, MsgUserNotFound
	case errors.As(err, &ue):
		return http.StatusInternalServerError, ue.Message
	case errors.As(err, &ce):
		return http.StatusInternalServerError, MsgStoreUnavailable
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}
