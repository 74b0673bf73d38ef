package api

import (
	"errors"
	"net/http"

	"commerce.GO/model/domain"
)

// HTTPStatus maps business-rule failures to response codes. Anything
// unrecognized is a 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrProductUnavailable),
		errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, domain.ErrNotCancellable),
		errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
