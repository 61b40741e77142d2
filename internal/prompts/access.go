package prompts

import "github.com/google/uuid"

// CanRead reports whether requester may see p.
func CanRead(requester uuid.UUID, p Prompt) bool {
	return p.Visibility == VisibilityPublic || p.CreatorID == requester
}

// CanWrite reports whether requester may modify or delete p.
func CanWrite(requester uuid.UUID, p Prompt) bool {
	return p.CreatorID == requester
}
