package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/promptchan/pkg/auth"
	"github.com/JaimeStill/promptchan/pkg/query"
	"github.com/JaimeStill/promptchan/pkg/repository"
	"github.com/JaimeStill/promptchan/pkg/validation"
)

type repo struct {
	db        *sql.DB
	logger    *slog.Logger
	passwords *auth.Passwords
	tokens    *auth.Tokens

	// decoy is compared against when no account matches a login email
	// so both failure paths cost one bcrypt comparison.
	decoy func() string
}

// New creates a user repository implementing the System interface.
func New(
	db *sql.DB,
	logger *slog.Logger,
	passwords *auth.Passwords,
	tokens *auth.Tokens,
) System {
	return &repo{
		db:        db,
		logger:    logger.With("system", "users"),
		passwords: passwords,
		tokens:    tokens,
		decoy: sync.OnceValue(func() string {
			digest, _ := passwords.Hash("promptchan-decoy-credential")
			return digest
		}),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Register(ctx context.Context, cmd RegisterCommand) (*Session, error) {
	cmd.Email = normalizeEmail(cmd.Email)
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	digest, err := r.passwords.Hash(cmd.Password)
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO public.users(email, username, password_digest)
		VALUES ($1, $2, $3)
		RETURNING id, email, username, created_at`

	u, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (User, error) {
		return repository.QueryOne(ctx, tx, q, []any{cmd.Email, cmd.Username, digest}, scanUser)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("user registered", "id", u.ID, "username", u.Username)
	return r.session(u)
}

func (r *repo) Login(ctx context.Context, cmd LoginCommand) (*Session, error) {
	cmd.Email = normalizeEmail(cmd.Email)
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	q, args := query.
		NewBuilder(credentials).
		WhereEquals("Email", cmd.Email).
		BuildSingleOrNull()

	c, err := repository.QueryOne(ctx, r.db, q, args, scanCredential)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.passwords.Verify(cmd.Password, r.decoy())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find credentials: %w", err)
	}

	if !r.passwords.Verify(cmd.Password, c.digest) {
		return nil, ErrInvalidCredentials
	}

	r.logger.Debug("user logged in", "id", c.ID)
	return r.session(c.User)
}

func (r *repo) Refresh(ctx context.Context, cmd RefreshCommand) (*Session, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	u, err := r.resolve(ctx, cmd.RefreshToken, auth.RefreshToken)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("session refreshed", "id", u.ID)
	return r.session(*u)
}

func (r *repo) Authenticate(ctx context.Context, token string) (*auth.Identity, error) {
	u, err := r.resolve(ctx, token, auth.AccessToken)
	if err != nil {
		return nil, err
	}
	return u.Identity(), nil
}

// resolve verifies token as kind and loads the account it was issued to.
func (r *repo) resolve(ctx context.Context, token string, kind auth.TokenKind) (*User, error) {
	claims, err := r.tokens.Verify(token, kind)
	if err != nil {
		return nil, err
	}

	id, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: subject: %w", auth.ErrInvalidToken, err)
	}

	u, err := r.Find(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", auth.ErrUnauthenticated)
		}
		return nil, err
	}

	return u, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*User, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	u, err := repository.QueryOne(ctx, r.db, q, args, scanUser)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &u, nil
}

func (r *repo) session(u User) (*Session, error) {
	pair, err := r.tokens.IssuePair(*u.Identity())
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: pair.Access, RefreshToken: pair.Refresh}, nil
}
