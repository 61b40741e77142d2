package favorites

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/promptchan/internal/prompts"
	"github.com/JaimeStill/promptchan/pkg/repository"
)

type repo struct {
	db      *sql.DB
	prompts prompts.System
	logger  *slog.Logger
}

// New creates a favorites repository implementing the System interface.
// Prompt visibility is resolved through the prompts system.
func New(db *sql.DB, prompts prompts.System, logger *slog.Logger) System {
	return &repo{
		db:      db,
		prompts: prompts,
		logger:  logger.With("system", "favorites"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

// Add favorites a prompt the requester can read.
// The primary key on (user_id, prompt_id) rejects concurrent duplicates.
func (r *repo) Add(ctx context.Context, requester, promptID uuid.UUID) (*Favorite, error) {
	if _, err := r.prompts.Find(ctx, requester, promptID); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO public.favorites(user_id, prompt_id)
		VALUES ($1, $2)
		RETURNING user_id, prompt_id, created_at`

	f, err := repository.QueryOne(ctx, r.db, q, []any{requester, promptID}, scanFavorite)
	if err != nil {
		return nil, repository.MapError(err, prompts.ErrNotFound, ErrAlreadyFavorited)
	}

	r.logger.Info("prompt favorited", "user_id", requester, "prompt_id", promptID)
	return &f, nil
}

func (r *repo) Remove(ctx context.Context, requester, promptID uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"DELETE FROM public.favorites WHERE user_id = $1 AND prompt_id = $2",
		requester, promptID,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrAlreadyFavorited)
	}

	r.logger.Info("prompt unfavorited", "user_id", requester, "prompt_id", promptID)
	return nil
}

func scanFavorite(s repository.Scanner) (Favorite, error) {
	var f Favorite
	err := s.Scan(&f.UserID, &f.PromptID, &f.CreatedAt)
	return f, err
}
