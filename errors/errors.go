package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrValidation      = fmt.Errorf("validation failed")
	ErrConflict        = fmt.Errorf("participant already exists")
	ErrNotFound        = fmt.Errorf("not found")
	ErrUnauthenticated = fmt.Errorf("sender is not a participant")
	ErrForbidden       = fmt.Errorf("not the owner of the message")
	ErrStore           = fmt.Errorf("store failure")
	ErrEmptyWords      = fmt.Errorf("no words have been found")
)

// MapToHTTPStatus translates a service error into the status code of the HTTP surface.
// Unknown errors are reported as 500.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrForbidden):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Store wraps a storage failure so it maps to a 500 while keeping the original message.
func Store(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStore, err)
}
