package users

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/promptchan/pkg/auth"
)

// System defines the public contract for account operations.
// It satisfies auth.Authenticator.
type System interface {
	Handler() *Handler

	Register(ctx context.Context, cmd RegisterCommand) (*Session, error)
	Login(ctx context.Context, cmd LoginCommand) (*Session, error)
	Refresh(ctx context.Context, cmd RefreshCommand) (*Session, error)
	Authenticate(ctx context.Context, token string) (*auth.Identity, error)
	Find(ctx context.Context, id uuid.UUID) (*User, error)
}
