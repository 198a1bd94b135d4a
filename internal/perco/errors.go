package perco

import (
	"errors"
	"fmt"
)

var (
	// ErrNoToken is returned by New when the auth response carries no token.
	ErrNoToken = errors.New("perco: auth response has no token")
	// ErrInvalidJSON means Perco answered with a body that is not JSON.
	ErrInvalidJSON = errors.New("perco: response is not valid json")
	// ErrEmptyResult means the bio update returned an empty body.
	ErrEmptyResult = errors.New("perco: empty result")
)

// StatusError is a non-200 answer from Perco.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("perco %s: status %d", e.Op, e.Code)
	}
	return fmt.Sprintf("perco %s: status %d: %s", e.Op, e.Code, e.Body)
}
