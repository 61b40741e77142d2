package favorites

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/promptchan/pkg/auth"
	"github.com/JaimeStill/promptchan/pkg/handlers"
	"github.com/JaimeStill/promptchan/pkg/routes"
	"github.com/JaimeStill/promptchan/pkg/validation"
)

// Handler provides HTTP endpoints for favorite operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "favorites"),
	}
}

// Routes returns the route group for favorite endpoints.
// They nest under the prompt they act on.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/prompts/{id}/favorite",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Add},
			{Method: "DELETE", Pattern: "", Handler: h.Remove},
		},
	}
}

// Add favorites the prompt for the requester.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	requester, promptID, ok := h.params(w, r)
	if !ok {
		return
	}

	if _, err := h.sys.Add(r.Context(), requester, promptID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, Message{Message: "Added to favorites"})
}

// Remove deletes the requester's favorite for the prompt.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	requester, promptID, ok := h.params(w, r)
	if !ok {
		return
	}

	if err := h.sys.Remove(r.Context(), requester, promptID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) params(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrUnauthenticated)
		return uuid.Nil, uuid.Nil, false
	}

	promptID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, validation.Invalid("prompt id must be a UUID"))
		return uuid.Nil, uuid.Nil, false
	}

	return id.ID, promptID, true
}
