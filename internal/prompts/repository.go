package prompts

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/promptchan/pkg/auth"
	"github.com/JaimeStill/promptchan/pkg/pagination"
	"github.com/JaimeStill/promptchan/pkg/query"
	"github.com/JaimeStill/promptchan/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a prompt repository implementing the System interface.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "prompts"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	spec ListSpec,
) (*pagination.PageResult[Prompt], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort...).
		Where(spec.Predicates()...)

	countSQL, countArgs := qb.BuildCount()
	pageSQL, pageArgs := qb.BuildPage(page.Skip, page.Limit)

	var (
		total   int
		prompts []Prompt
	)

	// The count and the page run on separate pool connections without a
	// shared snapshot, so under concurrent writes total may be off by the
	// rows committed between the two statements.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := repository.Count(gctx, r.db, countSQL, countArgs)
		if err != nil {
			return fmt.Errorf("count prompts: %w", err)
		}
		total = n
		return nil
	})

	g.Go(func() error {
		items, err := repository.QueryMany(gctx, r.db, pageSQL, pageArgs, scanPrompt)
		if err != nil {
			return fmt.Errorf("query prompts: %w", err)
		}
		prompts = items
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if spec.FavoritesOnly {
		for i := range prompts {
			prompts[i].IsFavorited = true
		}
	} else if err := markFavorites(ctx, r.db, spec.Requester, prompts); err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(prompts, total, page)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, requester, id uuid.UUID) (*Prompt, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}

	if !CanRead(requester, p) {
		return nil, ErrForbidden
	}

	items := []Prompt{p}
	if err := markFavorites(ctx, r.db, requester, items); err != nil {
		return nil, err
	}

	return &items[0], nil
}

func (r *repo) Create(ctx context.Context, requester uuid.UUID, cmd CreateCommand) (*Prompt, error) {
	cmd.Normalize()
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	inputs, err := encodeInputs(cmd.Inputs)
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO public.prompts(title, short_description, long_description, template, inputs, tags, visibility, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	args := []any{
		cmd.Title, cmd.ShortDescription, cmd.LongDescription, cmd.Template,
		inputs, cmd.Tags, string(cmd.Visibility), requester,
	}

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		var id uuid.UUID
		if err := tx.QueryRowContext(ctx, q, args...).Scan(&id); err != nil {
			return Prompt{}, err
		}

		findQ, findArgs := query.NewBuilder(projection).BuildSingle("ID", id)
		return repository.QueryOne(ctx, tx, findQ, findArgs, scanPrompt)
	})

	if err != nil {
		return nil, repository.MapError(err, auth.ErrUnauthenticated, auth.ErrUnauthenticated)
	}

	r.logger.Info("prompt created", "id", p.ID, "title", p.Title, "creator_id", p.CreatorID)
	return &p, nil
}

func (r *repo) Update(ctx context.Context, requester, id uuid.UUID, cmd UpdateCommand) (*Prompt, error) {
	q := `
		UPDATE public.prompts
		SET title = $1, short_description = $2, long_description = $3, template = $4,
			inputs = $5, tags = $6, visibility = $7, updated_at = now()
		WHERE id = $8
		RETURNING updated_at`

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		current, err := lockForWrite(ctx, tx, requester, id)
		if err != nil {
			return Prompt{}, err
		}

		merged := cmd.Merge(current)
		if err := merged.Validate(); err != nil {
			return Prompt{}, err
		}

		inputs, err := encodeInputs(merged.Inputs)
		if err != nil {
			return Prompt{}, err
		}

		args := []any{
			merged.Title, merged.ShortDescription, merged.LongDescription, merged.Template,
			inputs, merged.Tags, string(merged.Visibility), id,
		}

		updated := current
		updated.Title = merged.Title
		updated.ShortDescription = merged.ShortDescription
		updated.LongDescription = merged.LongDescription
		updated.Template = merged.Template
		updated.Inputs = merged.Inputs
		updated.Tags = merged.Tags
		updated.Visibility = merged.Visibility

		if err := tx.QueryRowContext(ctx, q, args...).Scan(&updated.UpdatedAt); err != nil {
			return Prompt{}, err
		}

		items := []Prompt{updated}
		if err := markFavorites(ctx, tx, requester, items); err != nil {
			return Prompt{}, err
		}
		return items[0], nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}

	r.logger.Info("prompt updated", "id", p.ID, "title", p.Title)
	return &p, nil
}

func (r *repo) Delete(ctx context.Context, requester, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := lockForWrite(ctx, tx, requester, id); err != nil {
			return struct{}{}, err
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM public.prompts WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrNotFound)
	}

	r.logger.Info("prompt deleted", "id", id)
	return nil
}

// lockForWrite loads the prompt row with a write lock held until the
// transaction ends and checks that requester owns it.
func lockForWrite(ctx context.Context, tx *sql.Tx, requester, id uuid.UUID) (Prompt, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, tx, q+" FOR UPDATE OF p", args, scanPrompt)
	if err != nil {
		return Prompt{}, err
	}

	if !CanWrite(requester, p) {
		return Prompt{}, ErrForbidden
	}

	return p, nil
}

// markFavorites sets IsFavorited on items with one lookup scoped to their ids.
func markFavorites(ctx context.Context, q repository.Querier, requester uuid.UUID, items []Prompt) error {
	if len(items) == 0 {
		return nil
	}

	ids := lo.Map(items, func(p Prompt, _ int) any { return p.ID })

	favQ, favArgs := query.
		NewBuilder(favoriteProjection).
		Where(
			query.Equals("UserID", requester),
			query.In("PromptID", ids...),
		).
		Build()

	favorited, err := repository.QueryMany(ctx, q, favQ, favArgs, scanFavorite)
	if err != nil {
		return fmt.Errorf("query favorites: %w", err)
	}

	set := lo.SliceToMap(favorited, func(id uuid.UUID) (uuid.UUID, bool) {
		return id, true
	})

	for i := range items {
		items[i].IsFavorited = set[items[i].ID]
	}

	return nil
}
