package prompts

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/promptchan/pkg/pagination"
)

// System defines the public contract for prompt catalog operations.
// Every operation runs on behalf of a requesting user.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		spec ListSpec,
	) (*pagination.PageResult[Prompt], error)

	Find(ctx context.Context, requester, id uuid.UUID) (*Prompt, error)
	Create(ctx context.Context, requester uuid.UUID, cmd CreateCommand) (*Prompt, error)
	Update(ctx context.Context, requester, id uuid.UUID, cmd UpdateCommand) (*Prompt, error)
	Delete(ctx context.Context, requester, id uuid.UUID) error
}
