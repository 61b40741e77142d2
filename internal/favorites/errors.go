package favorites

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/promptchan/internal/prompts"
)

// Domain errors for favorite operations.
var (
	ErrNotFound         = errors.New("favorite not found")
	ErrAlreadyFavorited = errors.New("prompt already favorited")
)

// MapHTTPStatus maps favorite and prompt errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyFavorited):
		return http.StatusConflict
	}
	return prompts.MapHTTPStatus(err)
}
