package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JaimeStill/promptchan/pkg/middleware"
)

func TestStackOrder(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Func {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	var stack middleware.Stack
	stack.Use(tag("first"))
	stack.Use(tag("second"), tag("third"))

	h := stack.Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	want := "first,second,third,handler"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
}

func corsHandler(cfg middleware.CORSConfig) (http.Handler, *bool) {
	called := new(bool)
	cfg.Finalize(nil)
	h := middleware.CORS(&cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}))
	return h, called
}

func TestCORS(t *testing.T) {
	listed := middleware.CORSConfig{Enabled: true, Origins: []string{"http://app.promptchan.local"}}
	anyOrigin := middleware.CORSConfig{Enabled: true, Origins: []string{"*"}}
	withCreds := middleware.CORSConfig{Enabled: true, Origins: []string{"*"}, AllowCredentials: true}

	tests := []struct {
		name       string
		cfg        middleware.CORSConfig
		origin     string
		wantOrigin string
		wantVary   bool
		wantCreds  bool
	}{
		{"disabled", middleware.CORSConfig{Origins: []string{"*"}}, "http://x.test", "", false, false},
		{"listed origin", listed, "http://app.promptchan.local", "http://app.promptchan.local", true, false},
		{"unlisted origin", listed, "http://evil.test", "", false, false},
		{"wildcard", anyOrigin, "http://x.test", "*", false, false},
		{"wildcard with credentials echoes", withCreds, "http://x.test", "http://x.test", true, true},
		{"no origin header", anyOrigin, "", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, called := corsHandler(tt.cfg)

			req := httptest.NewRequest("GET", "/prompts", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if !*called {
				t.Error("simple request should reach the handler")
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow-origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := rec.Header().Get("Vary") == "Origin"; got != tt.wantVary {
				t.Errorf("vary origin = %v, want %v", got, tt.wantVary)
			}
			if got := rec.Header().Get("Access-Control-Allow-Credentials") == "true"; got != tt.wantCreds {
				t.Errorf("allow-credentials = %v, want %v", got, tt.wantCreds)
			}
			if tt.wantOrigin != "" && rec.Header().Get("Access-Control-Expose-Headers") != "WWW-Authenticate" {
				t.Errorf("expose-headers = %q", rec.Header().Get("Access-Control-Expose-Headers"))
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	h, called := corsHandler(middleware.CORSConfig{
		Enabled:        true,
		Origins:        []string{"http://app.promptchan.local"},
		AllowedMethods: []string{"GET", "POST"},
	})

	req := httptest.NewRequest("OPTIONS", "/prompts", nil)
	req.Header.Set("Origin", "http://app.promptchan.local")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if *called {
		t.Error("preflight should not reach the handler")
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
		t.Errorf("allow-methods = %s", got)
	}
	if got := rec.Header().Get("Access-Control-Max-Age"); got != "3600" {
		t.Errorf("max-age = %s, want 3600", got)
	}

	t.Run("plain options passes through", func(t *testing.T) {
		*called = false
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("OPTIONS", "/prompts", nil))

		if !*called {
			t.Error("OPTIONS without a request method header should reach the handler")
		}
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	var handlerCalled bool
	handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	handler.ServeHTTP(rec, req)

	if !handlerCalled {
		t.Error("inner handler should have been called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(buf.String(), "status=200") {
		t.Errorf("log line missing status: %s", buf.String())
	}
}

func TestLoggerErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/fail", nil))

	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "status=500") {
		t.Errorf("log line: got %s", out)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := middleware.NewMetrics(reg, "test")
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := metrics.Middleware(mux)

	for _, path := range []string{"/items/1", "/items/2", "/missing"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	expected := `
# HELP test_http_requests_total Total number of HTTP requests
# TYPE test_http_requests_total counter
test_http_requests_total{method="GET",path="GET /items/{id}",status_code="204"} 2
test_http_requests_total{method="GET",path="unmatched",status_code="404"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_http_requests_total"); err != nil {
		t.Error(err)
	}
}

func TestMetricsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := middleware.NewMetrics(reg, "dup"); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := middleware.NewMetrics(reg, "dup"); err == nil {
		t.Error("expected error registering the same collectors twice")
	}
}

func TestCORSConfigFinalize(t *testing.T) {
	t.Setenv("TEST_CORS_ENABLED", "true")
	t.Setenv("TEST_CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("TEST_CORS_CREDS", "yes-please")
	t.Setenv("TEST_CORS_MAX_AGE", "600")

	cfg := middleware.CORSConfig{}
	err := cfg.Finalize(&middleware.CORSEnv{
		Enabled:          "TEST_CORS_ENABLED",
		Origins:          "TEST_CORS_ORIGINS",
		AllowCredentials: "TEST_CORS_CREDS",
		MaxAge:           "TEST_CORS_MAX_AGE",
	})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if !cfg.Enabled {
		t.Error("enabled should be true")
	}
	if strings.Join(cfg.Origins, "|") != "http://a.test|http://b.test" {
		t.Errorf("origins = %v", cfg.Origins)
	}
	if cfg.AllowCredentials {
		t.Error("unparseable bool should leave allow_credentials unset")
	}
	if cfg.MaxAge != 600 {
		t.Errorf("max_age = %d, want 600", cfg.MaxAge)
	}
	if len(cfg.AllowedMethods) != 5 || len(cfg.AllowedHeaders) != 2 {
		t.Errorf("defaults: methods %v, headers %v", cfg.AllowedMethods, cfg.AllowedHeaders)
	}
}

func TestCORSConfigMerge(t *testing.T) {
	base := middleware.CORSConfig{
		Origins:        []string{"http://base.test"},
		AllowedMethods: []string{"GET"},
		MaxAge:         3600,
	}

	base.Merge(&middleware.CORSConfig{
		Enabled: true,
		Origins: []string{"*"},
	})

	if !base.Enabled {
		t.Error("enabled should be true after merge")
	}
	if len(base.Origins) != 1 || base.Origins[0] != "*" {
		t.Errorf("origins = %v", base.Origins)
	}
	if len(base.AllowedMethods) != 1 {
		t.Errorf("allowed_methods = %v, want base kept", base.AllowedMethods)
	}
	if base.MaxAge != 3600 {
		t.Errorf("max_age = %d, want base 3600 kept", base.MaxAge)
	}
}
