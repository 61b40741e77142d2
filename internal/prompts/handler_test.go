package prompts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/promptchan/internal/prompts"
	"github.com/JaimeStill/promptchan/pkg/auth"
	"github.com/JaimeStill/promptchan/pkg/handlers"
	"github.com/JaimeStill/promptchan/pkg/pagination"
	"github.com/JaimeStill/promptchan/pkg/routes"
)

type mockSystem struct {
	listFn   func(ctx context.Context, page pagination.PageRequest, spec prompts.ListSpec) (*pagination.PageResult[prompts.Prompt], error)
	findFn   func(ctx context.Context, requester, id uuid.UUID) (*prompts.Prompt, error)
	createFn func(ctx context.Context, requester uuid.UUID, cmd prompts.CreateCommand) (*prompts.Prompt, error)
	updateFn func(ctx context.Context, requester, id uuid.UUID, cmd prompts.UpdateCommand) (*prompts.Prompt, error)
	deleteFn func(ctx context.Context, requester, id uuid.UUID) error
}

func (m *mockSystem) Handler() *prompts.Handler {
	return newTestHandler(m)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, spec prompts.ListSpec) (*pagination.PageResult[prompts.Prompt], error) {
	return m.listFn(ctx, page, spec)
}

func (m *mockSystem) Find(ctx context.Context, requester, id uuid.UUID) (*prompts.Prompt, error) {
	return m.findFn(ctx, requester, id)
}

func (m *mockSystem) Create(ctx context.Context, requester uuid.UUID, cmd prompts.CreateCommand) (*prompts.Prompt, error) {
	return m.createFn(ctx, requester, cmd)
}

func (m *mockSystem) Update(ctx context.Context, requester, id uuid.UUID, cmd prompts.UpdateCommand) (*prompts.Prompt, error) {
	return m.updateFn(ctx, requester, id, cmd)
}

func (m *mockSystem) Delete(ctx context.Context, requester, id uuid.UUID) error {
	return m.deleteFn(ctx, requester, id)
}

func newTestHandler(sys prompts.System) *prompts.Handler {
	return prompts.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultLimit: 20, MaxLimit: 100},
	)
}

func setupMux(h *prompts.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, h.Routes())
	return mux
}

func authed(req *http.Request, id uuid.UUID) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{ID: id, Username: "owner"}))
}

func samplePrompt() prompts.Prompt {
	return prompts.Prompt{
		ID:               promptA,
		Title:            "Blog outline",
		ShortDescription: "Outline a blog post on any topic",
		Template:         "Outline a blog post about {{topic}}.",
		Visibility:       prompts.VisibilityPublic,
		CreatorID:        ownerID,
		Creator:          prompts.Creator{ID: ownerID, Username: "owner"},
	}
}

func TestHandlerList(t *testing.T) {
	p := samplePrompt()

	var (
		capturedPage pagination.PageRequest
		capturedSpec prompts.ListSpec
	)
	sys := &mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, spec prompts.ListSpec) (*pagination.PageResult[prompts.Prompt], error) {
			capturedPage = page
			capturedSpec = spec
			result := pagination.NewPageResult([]prompts.Prompt{p}, 1, page)
			return &result, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	t.Run("returns prompts envelope", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := authed(httptest.NewRequest("GET", "/prompts?skip=5&limit=500&q=blog&tags=writing", nil), ownerID)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var body prompts.ListResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}

		if body.Total != 1 || len(body.Prompts) != 1 {
			t.Fatalf("total = %d, prompts = %d", body.Total, len(body.Prompts))
		}
		if body.Skip != 5 || body.Limit != 100 {
			t.Errorf("skip = %d, limit = %d, want 5, 100", body.Skip, body.Limit)
		}
		if capturedPage.Limit != 100 {
			t.Errorf("page limit = %d, want clamped 100", capturedPage.Limit)
		}
		if capturedSpec.Requester != ownerID || capturedSpec.Query != "blog" || capturedSpec.Tags != "writing" {
			t.Errorf("spec = %+v", capturedSpec)
		}
	})

	t.Run("favorites endpoint forces favorites only", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := authed(httptest.NewRequest("GET", "/prompts/favorites", nil), ownerID)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if !capturedSpec.FavoritesOnly {
			t.Error("favorites_only = false, want true")
		}
	})

	badQueries := []struct {
		name  string
		query string
	}{
		{"negative skip", "skip=-1"},
		{"non-integer limit", "limit=ten"},
		{"malformed creator", "creator_id=abc"},
		{"malformed favorites flag", "favorites_only=perhaps"},
	}

	for _, tt := range badQueries {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := authed(httptest.NewRequest("GET", "/prompts?"+tt.query, nil), ownerID)
			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}

			var body handlers.ErrorResponse
			json.NewDecoder(rec.Body).Decode(&body)
			if body.Kind != handlers.KindValidation {
				t.Errorf("kind = %s, want validation", body.Kind)
			}
		})
	}

	t.Run("missing identity", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/prompts", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestHandlerFind(t *testing.T) {
	p := samplePrompt()

	sys := &mockSystem{
		findFn: func(_ context.Context, requester, id uuid.UUID) (*prompts.Prompt, error) {
			switch {
			case id != p.ID:
				return nil, prompts.ErrNotFound
			case requester != ownerID:
				return nil, prompts.ErrForbidden
			}
			return &p, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name      string
		path      string
		requester uuid.UUID
		want      int
	}{
		{"found", "/prompts/" + p.ID.String(), ownerID, http.StatusOK},
		{"forbidden", "/prompts/" + p.ID.String(), strangerID, http.StatusForbidden},
		{"not found", "/prompts/" + promptB.String(), ownerID, http.StatusNotFound},
		{"invalid uuid", "/prompts/not-a-uuid", ownerID, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, authed(httptest.NewRequest("GET", tt.path, nil), tt.requester))

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerCreate(t *testing.T) {
	p := samplePrompt()

	t.Run("creates prompt for requester", func(t *testing.T) {
		var captured uuid.UUID
		sys := &mockSystem{
			createFn: func(_ context.Context, requester uuid.UUID, cmd prompts.CreateCommand) (*prompts.Prompt, error) {
				captured = requester
				created := p
				created.Title = cmd.Title
				return &created, nil
			},
		}
		mux := setupMux(newTestHandler(sys))

		body, _ := json.Marshal(prompts.CreateCommand{
			Title:            "Blog outline",
			ShortDescription: "Outline a blog post on any topic",
			Template:         "Outline a blog post about {{topic}}.",
		})

		rec := httptest.NewRecorder()
		req := authed(httptest.NewRequest("POST", "/prompts", bytes.NewReader(body)), ownerID)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", rec.Code)
		}
		if captured != ownerID {
			t.Errorf("requester = %v, want %v", captured, ownerID)
		}
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		mux := setupMux(newTestHandler(&mockSystem{}))

		rec := httptest.NewRecorder()
		req := authed(httptest.NewRequest("POST", "/prompts", bytes.NewReader([]byte("{bad"))), ownerID)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerUpdate(t *testing.T) {
	p := samplePrompt()

	sys := &mockSystem{
		updateFn: func(_ context.Context, requester, id uuid.UUID, cmd prompts.UpdateCommand) (*prompts.Prompt, error) {
			if requester != ownerID {
				return nil, prompts.ErrForbidden
			}
			updated := p
			if cmd.Title != nil {
				updated.Title = *cmd.Title
			}
			return &updated, nil
		},
	}
	mux := setupMux(newTestHandler(sys))
	body := []byte(`{"title":"Renamed"}`)

	t.Run("owner", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := authed(httptest.NewRequest("PUT", "/prompts/"+p.ID.String(), bytes.NewReader(body)), ownerID)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var got prompts.Prompt
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Title != "Renamed" {
			t.Errorf("title = %s, want Renamed", got.Title)
		}
	})

	t.Run("non-owner", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := authed(httptest.NewRequest("PUT", "/prompts/"+p.ID.String(), bytes.NewReader(body)), strangerID)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})
}

func TestHandlerDelete(t *testing.T) {
	p := samplePrompt()

	sys := &mockSystem{
		deleteFn: func(_ context.Context, requester, id uuid.UUID) error {
			if id != p.ID {
				return prompts.ErrNotFound
			}
			if requester != ownerID {
				return prompts.ErrForbidden
			}
			return nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name      string
		id        uuid.UUID
		requester uuid.UUID
		want      int
	}{
		{"owner", p.ID, ownerID, http.StatusNoContent},
		{"non-owner", p.ID, strangerID, http.StatusForbidden},
		{"missing", promptB, ownerID, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, authed(httptest.NewRequest("DELETE", "/prompts/"+tt.id.String(), nil), tt.requester))

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
