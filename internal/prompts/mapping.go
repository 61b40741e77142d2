package prompts

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/promptchan/pkg/query"
	"github.com/JaimeStill/promptchan/pkg/repository"
	"github.com/JaimeStill/promptchan/pkg/validation"
)

var projection = query.
	NewProjectionMap("public", "prompts", "p").
	Join("JOIN public.users u ON u.id = p.creator_id").
	Project("id", "ID").
	Project("title", "Title").
	Project("short_description", "ShortDescription").
	Project("long_description", "LongDescription").
	Project("template", "Template").
	Project("inputs", "Inputs").
	Project("tags", "Tags").
	Project("visibility", "Visibility").
	Project("creator_id", "CreatorID").
	ProjectJoined("u", "username", "CreatorUsername").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var favoriteProjection = query.
	NewProjectionMap("public", "favorites", "f").
	Project("prompt_id", "PromptID").
	Project("user_id", "UserID")

// Newest first; id breaks ties so pages never overlap.
var defaultSort = []query.SortField{
	{Field: "CreatedAt", Descending: true},
	{Field: "ID", Descending: true},
}

const favoritedBy = "SELECT 1 FROM public.favorites f WHERE f.prompt_id = p.id AND f.user_id = $%d"

// ListSpec describes a catalog listing for one requester.
// Empty Query and Tags, a nil CreatorID, and a false FavoritesOnly are ignored.
type ListSpec struct {
	Requester     uuid.UUID
	Query         string
	Tags          string
	CreatorID     *uuid.UUID
	FavoritesOnly bool
}

// Predicates returns the filter conditions for the listing.
// The visibility floor is always first; each present filter adds one more
// condition and every condition is ANDed.
func (s ListSpec) Predicates() []query.Predicate {
	preds := []query.Predicate{
		query.AnyOf(
			query.Equals("Visibility", string(VisibilityPublic)),
			query.Equals("CreatorID", s.Requester),
		),
	}

	if q := strings.TrimSpace(s.Query); q != "" {
		preds = append(preds, query.AnyOf(
			query.Contains("Title", q),
			query.Contains("ShortDescription", q),
			query.Contains("Tags", q),
		))
	}

	if t := strings.TrimSpace(s.Tags); t != "" {
		preds = append(preds, query.Contains("Tags", t))
	}

	if s.CreatorID != nil {
		preds = append(preds, query.Equals("CreatorID", *s.CreatorID))
	}

	if s.FavoritesOnly {
		preds = append(preds, query.Exists(favoritedBy, s.Requester))
	}

	return preds
}

// ListSpecFromQuery extracts listing filters from URL query parameters.
// A malformed creator_id or favorites_only fails with validation.ErrInvalid.
func ListSpecFromQuery(values url.Values, requester uuid.UUID) (ListSpec, error) {
	spec := ListSpec{
		Requester: requester,
		Query:     values.Get("q"),
		Tags:      values.Get("tags"),
	}

	if c := values.Get("creator_id"); c != "" {
		id, err := uuid.Parse(c)
		if err != nil {
			return ListSpec{}, validation.Invalid("creator_id must be a UUID")
		}
		spec.CreatorID = &id
	}

	if f := values.Get("favorites_only"); f != "" {
		v, err := strconv.ParseBool(f)
		if err != nil {
			return ListSpec{}, validation.Invalid("favorites_only must be a boolean")
		}
		spec.FavoritesOnly = v
	}

	return spec, nil
}

func scanPrompt(s repository.Scanner) (Prompt, error) {
	var (
		p      Prompt
		inputs sql.NullString
	)

	err := s.Scan(
		&p.ID,
		&p.Title,
		&p.ShortDescription,
		&p.LongDescription,
		&p.Template,
		&inputs,
		&p.Tags,
		&p.Visibility,
		&p.CreatorID,
		&p.Creator.Username,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return p, err
	}

	p.Creator.ID = p.CreatorID

	if inputs.Valid && inputs.String != "" {
		if err := json.Unmarshal([]byte(inputs.String), &p.Inputs); err != nil {
			return p, fmt.Errorf("decode inputs for prompt %s: %w", p.ID, err)
		}
	}

	return p, nil
}

func scanFavorite(s repository.Scanner) (uuid.UUID, error) {
	var promptID, userID uuid.UUID
	err := s.Scan(&promptID, &userID)
	return promptID, err
}

func encodeInputs(inputs []InputField) (*string, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	data, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("encode inputs: %w", err)
	}

	encoded := string(data)
	return &encoded, nil
}
