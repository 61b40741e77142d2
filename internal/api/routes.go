package api

import (
	"net/http"

	"github.com/JaimeStill/promptchan/pkg/auth"
	"github.com/JaimeStill/promptchan/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
) {
	usersHandler := domain.Users.Handler()

	routes.Register(
		mux,
		usersHandler.Routes(),
		routes.Group{
			Middleware: []func(http.Handler) http.Handler{
				auth.Require(domain.Users, runtime.Logger),
			},
			Children: []routes.Group{
				usersHandler.ProtectedRoutes(),
				domain.Prompts.Handler().Routes(),
				domain.Favorites.Handler().Routes(),
			},
		},
	)
}
