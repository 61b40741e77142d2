// Package routes declares HTTP endpoints as nested groups and registers them
// on a ServeMux using method-qualified patterns.
package routes

import "net/http"

// Route binds one method and path pattern, relative to its group, to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// pattern renders the ServeMux pattern for r beneath prefix, e.g.
// "GET /api/prompts/{id}".
func (r Route) pattern(prefix string) string {
	return r.Method + " " + prefix + r.Pattern
}
