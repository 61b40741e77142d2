// Package middleware provides the HTTP middleware shared by promptchan modules:
// ordered stacks, CORS, request logging, and Prometheus request metrics.
package middleware

import "net/http"

// Func wraps a handler with additional behavior.
type Func = func(http.Handler) http.Handler

// Stack is an ordered middleware chain. The first entry is outermost.
type Stack []Func

// Use appends fns to the end of the stack.
func (s *Stack) Use(fns ...Func) {
	*s = append(*s, fns...)
}

// Then wraps h with every middleware in the stack.
func (s Stack) Then(h http.Handler) http.Handler {
	for i := len(s) - 1; i >= 0; i-- {
		h = s[i](h)
	}
	return h
}
