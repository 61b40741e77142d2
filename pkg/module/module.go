// Package module mounts self-contained HTTP sub-applications under a
// single-segment path prefix, each with its own middleware stack.
package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/promptchan/pkg/middleware"
)

// Module serves every request under prefix through its middleware stack and
// inner router, with the prefix removed from the request path.
type Module struct {
	prefix  string
	router  http.Handler
	stack   middleware.Stack
	handler http.Handler
}

// New creates a Module for a single-segment prefix such as "/api".
// It panics on a malformed prefix since mounting happens at startup.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:  prefix,
		router:  router,
		handler: router,
	}
}

// Use appends middleware in the order given. The first middleware ever added
// is the outermost.
func (m *Module) Use(mws ...middleware.Func) {
	m.stack.Use(mws...)
	m.handler = m.stack.Then(m.router)
}

// Handler returns the inner router wrapped by the middleware stack.
func (m *Module) Handler() http.Handler {
	return m.handler
}

func (m *Module) Prefix() string {
	return m.prefix
}

// Serve dispatches req with the module prefix stripped from its path.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.handler.ServeHTTP(w, stripPrefix(req, m.prefix))
}

func stripPrefix(req *http.Request, prefix string) *http.Request {
	path := strings.TrimPrefix(req.URL.Path, prefix)
	if path == "" {
		path = "/"
	}

	r := req.Clone(req.Context())
	r.URL.Path = path
	r.URL.RawPath = ""
	return r
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case prefix[0] != '/':
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Contains(prefix[1:], "/"):
		return fmt.Errorf("module prefix must be single-level sub-path: %s", prefix)
	}
	return nil
}
