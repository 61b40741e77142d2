package prompts

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/promptchan/pkg/auth"
	"github.com/JaimeStill/promptchan/pkg/validation"
)

// Domain errors for prompt operations.
var (
	ErrNotFound  = errors.New("prompt not found")
	ErrForbidden = errors.New("prompt belongs to another user")
)

// MapHTTPStatus maps prompt domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, validation.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
