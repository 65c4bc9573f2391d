package api

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest marks request bodies and parameters the API rejects
	// before touching a save.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound marks lookups of save IDs the store does not hold.
	ErrNotFound = errors.New("save not found")
)

type requestError struct {
	msg string
}

func (e requestError) Error() string { return e.msg }

func (e requestError) Unwrap() error { return ErrInvalidRequest }

func newInvalidRequest(msg string) error {
	return requestError{msg: msg}
}

func notFound(id string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, id)
}
