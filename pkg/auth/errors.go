package auth

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is matched by every authentication failure.
var ErrUnauthenticated = errors.New("unauthenticated")

var (
	ErrMissingToken = fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	ErrInvalidToken = fmt.Errorf("%w: invalid or expired token", ErrUnauthenticated)
)
