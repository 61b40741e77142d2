package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/promptchan/pkg/handlers"
	"github.com/JaimeStill/promptchan/pkg/validation"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		data       any
		wantStatus int
	}{
		{
			name:       "200 with map",
			status:     http.StatusOK,
			data:       map[string]string{"key": "value"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "201 with struct",
			status:     http.StatusCreated,
			data:       struct{ ID int }{ID: 42},
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handlers.RespondJSON(rec, tt.status, tt.data)

			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.wantStatus {
				t.Errorf("status: got %d, want %d", res.StatusCode, tt.wantStatus)
			}
			if ct := res.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("content-type: got %s", ct)
			}

			body, _ := io.ReadAll(res.Body)
			var parsed map[string]any
			if err := json.Unmarshal(body, &parsed); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		err         error
		wantKind    handlers.Kind
		wantMessage string
	}{
		{"validation", http.StatusBadRequest, errors.New("invalid input"), handlers.KindValidation, "invalid input"},
		{"unauthenticated", http.StatusUnauthorized, errors.New("no token"), handlers.KindUnauthenticated, "no token"},
		{"forbidden", http.StatusForbidden, errors.New("not yours"), handlers.KindForbidden, "not yours"},
		{"not found", http.StatusNotFound, errors.New("missing"), handlers.KindNotFound, "missing"},
		{"conflict", http.StatusConflict, errors.New("exists"), handlers.KindConflict, "exists"},
		{"internal hides detail", http.StatusInternalServerError, errors.New("pq: connection refused"), handlers.KindInternal, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handlers.RespondError(rec, logger, tt.status, tt.err)

			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d", rec.Code, tt.status)
			}

			var body handlers.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if body.Kind != tt.wantKind {
				t.Errorf("kind: got %s, want %s", body.Kind, tt.wantKind)
			}
			if body.Error != tt.wantMessage {
				t.Errorf("error: got %s, want %s", body.Error, tt.wantMessage)
			}
		})
	}
}

func TestRespondErrorFields(t *testing.T) {
	type cmd struct {
		Title string `json:"title" validate:"required"`
	}

	err := validation.Struct(cmd{})
	rec := httptest.NewRecorder()
	handlers.RespondError(rec, logger, http.StatusBadRequest, err)

	var body handlers.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(body.Fields) != 1 || body.Fields[0].Field != "title" {
		t.Errorf("fields: got %+v", body.Fields)
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"a"}`, false},
		{"empty", ``, true},
		{"malformed", `{"name":`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			var p payload
			err := handlers.DecodeJSON(req, &p)
			if tt.wantErr {
				if !errors.Is(err, validation.ErrInvalid) {
					t.Errorf("error: got %v, want ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Name != "a" {
				t.Errorf("name: got %s", p.Name)
			}
		})
	}
}

func TestMaxBytes(t *testing.T) {
	handler := handlers.MaxBytes(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var v map[string]string
		if err := handlers.DecodeJSON(r, &v); err != nil {
			handlers.RespondError(w, logger, http.StatusBadRequest, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"far too long"}`))
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}
