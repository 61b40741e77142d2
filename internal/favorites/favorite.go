// Package favorites records which prompts each user has bookmarked.
package favorites

import (
	"time"

	"github.com/google/uuid"
)

// Favorite links a user to a prompt they have bookmarked.
type Favorite struct {
	UserID    uuid.UUID `json:"user_id"`
	PromptID  uuid.UUID `json:"prompt_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is the acknowledgement body returned when a favorite is added.
type Message struct {
	Message string `json:"message"`
}
