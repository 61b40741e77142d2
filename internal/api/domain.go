package api

import (
	"github.com/JaimeStill/promptchan/internal/favorites"
	"github.com/JaimeStill/promptchan/internal/prompts"
	"github.com/JaimeStill/promptchan/internal/users"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Users     users.System
	Prompts   prompts.System
	Favorites favorites.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	usersSystem := users.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Passwords,
		runtime.Tokens,
	)

	promptsSystem := prompts.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	favoritesSystem := favorites.New(
		runtime.Database.Connection(),
		promptsSystem,
		runtime.Logger,
	)

	return &Domain{
		Users:     usersSystem,
		Prompts:   promptsSystem,
		Favorites: favoritesSystem,
	}
}
