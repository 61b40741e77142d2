package routes

import (
	"net/http"

	"github.com/JaimeStill/promptchan/pkg/middleware"
)

// Group shares a path prefix and middleware across its routes and children.
// A child's middleware runs inside its parent's.
type Group struct {
	Prefix     string
	Middleware []func(http.Handler) http.Handler
	Routes     []Route
	Children   []Group
}

// Register adds every route of groups, and of their descendants, to mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		g.register(mux, "", nil)
	}
}

func (g Group) register(mux *http.ServeMux, prefix string, inherited middleware.Stack) {
	prefix += g.Prefix

	stack := append(middleware.Stack{}, inherited...)
	stack.Use(g.Middleware...)

	for _, r := range g.Routes {
		mux.Handle(r.pattern(prefix), stack.Then(r.Handler))
	}

	for _, child := range g.Children {
		child.register(mux, prefix, stack)
	}
}
