// Package prompts implements the prompt template catalog.
// It provides types, data access, visibility rules, and HTTP handlers
// for creating, browsing, and maintaining prompt templates.
package prompts

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/promptchan/pkg/validation"
)

// Visibility controls who can read a prompt.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// InputField declares one variable a template expects.
// Validation is an opaque rule object interpreted by clients.
type InputField struct {
	Name        string              `json:"name" validate:"required"`
	Type        string              `json:"type" validate:"required"`
	Label       string              `json:"label" validate:"required"`
	Description *string             `json:"description,omitempty"`
	Placeholder *string             `json:"placeholder,omitempty"`
	Required    bool                `json:"required"`
	Validation  map[string]any      `json:"validation,omitempty"`
	Options     []map[string]string `json:"options,omitempty"`
}

// Creator is the public view of the user who owns a prompt.
type Creator struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Prompt is a stored prompt template annotated for the requesting user.
type Prompt struct {
	ID               uuid.UUID    `json:"id"`
	Title            string       `json:"title"`
	ShortDescription string       `json:"short_description"`
	LongDescription  *string      `json:"long_description"`
	Template         string       `json:"template"`
	Inputs           []InputField `json:"inputs"`
	Tags             *string      `json:"tags"`
	Visibility       Visibility   `json:"visibility"`
	CreatorID        uuid.UUID    `json:"creator_id"`
	Creator          Creator      `json:"creator"`
	IsFavorited      bool         `json:"is_favorited"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// CreateCommand carries the data needed to create a prompt.
// The creator is always the requesting user.
type CreateCommand struct {
	Title            string       `json:"title" validate:"required,max=200"`
	ShortDescription string       `json:"short_description" validate:"required,min=10,max=500"`
	LongDescription  *string      `json:"long_description" validate:"omitempty,max=5000"`
	Template         string       `json:"template" validate:"required,min=10"`
	Inputs           []InputField `json:"inputs" validate:"omitempty,dive"`
	Tags             *string      `json:"tags" validate:"omitempty,max=500"`
	Visibility       Visibility   `json:"visibility" validate:"required,oneof=public private"`
}

// Normalize applies the create defaults and canonical tag formatting.
func (c *CreateCommand) Normalize() {
	if c.Visibility == "" {
		c.Visibility = VisibilityPublic
	}
	c.Tags = NormalizeTags(c.Tags)
}

// Validate checks field rules and template consistency.
func (c CreateCommand) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	return ValidateTemplate(c.Template, c.Inputs)
}

// UpdateCommand carries a partial update. Nil fields keep their stored value.
type UpdateCommand struct {
	Title            *string       `json:"title"`
	ShortDescription *string       `json:"short_description"`
	LongDescription  *string       `json:"long_description"`
	Template         *string       `json:"template"`
	Inputs           *[]InputField `json:"inputs"`
	Tags             *string       `json:"tags"`
	Visibility       *Visibility   `json:"visibility"`
}

// Merge overlays the update onto p and returns the complete result
// so it can be validated with the same rules as a create. Create defaults
// are not applied: an explicit empty visibility fails validation.
func (c UpdateCommand) Merge(p Prompt) CreateCommand {
	merged := CreateCommand{
		Title:            p.Title,
		ShortDescription: p.ShortDescription,
		LongDescription:  p.LongDescription,
		Template:         p.Template,
		Inputs:           p.Inputs,
		Tags:             p.Tags,
		Visibility:       p.Visibility,
	}

	if c.Title != nil {
		merged.Title = *c.Title
	}
	if c.ShortDescription != nil {
		merged.ShortDescription = *c.ShortDescription
	}
	if c.LongDescription != nil {
		merged.LongDescription = c.LongDescription
	}
	if c.Template != nil {
		merged.Template = *c.Template
	}
	if c.Inputs != nil {
		merged.Inputs = *c.Inputs
	}
	if c.Tags != nil {
		merged.Tags = c.Tags
	}
	if c.Visibility != nil {
		merged.Visibility = *c.Visibility
	}

	merged.Tags = NormalizeTags(merged.Tags)
	return merged
}
