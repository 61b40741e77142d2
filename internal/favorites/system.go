package favorites

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for favorite operations.
type System interface {
	Handler() *Handler

	Add(ctx context.Context, requester, promptID uuid.UUID) (*Favorite, error)
	Remove(ctx context.Context, requester, promptID uuid.UUID) error
}
