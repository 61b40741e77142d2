// Package handlers provides JSON response and request helpers shared by domain handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/promptchan/pkg/validation"
)

// Kind is the machine-checkable category of an error response.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindInternal        Kind = "internal"
)

const internalMessage = "internal server error"

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error  string                  `json:"error"`
	Kind   Kind                    `json:"kind"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

// KindForStatus maps an HTTP status code to its error kind.
func KindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthenticated
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	default:
		return KindInternal
	}
}

// RespondJSON writes data as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes an ErrorResponse.
// Server errors are reported to the client with a generic message.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	resp := ErrorResponse{
		Error: err.Error(),
		Kind:  KindForStatus(status),
	}

	if status >= http.StatusInternalServerError {
		logger.Error("handler error", "status", status, "error", err)
		resp.Error = internalMessage
	} else {
		logger.Debug("request rejected", "status", status, "error", err)
		resp.Fields = validation.Fields(err)
	}

	RespondJSON(w, status, resp)
}

// DecodeJSON reads a JSON request body into v.
// Malformed, empty, and oversized bodies are reported as validation errors.
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return validation.Invalid("request body exceeds %d bytes", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return validation.Invalid("request body is empty")
		default:
			return validation.Invalid("malformed JSON body: %v", err)
		}
	}
	return nil
}

// MaxBytes limits the size of request bodies read by downstream handlers.
func MaxBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
