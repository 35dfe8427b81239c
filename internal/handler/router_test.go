package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/newsman/internal/middleware"
	"github.com/hitoshi/newsman/internal/model"
)

type stubVerifier struct{}

func (stubVerifier) Verify(token string) (string, error) {
	if token == "valid" {
		return "user-1", nil
	}
	return "", errors.New("bad token")
}

func newTestRouter(t *testing.T, deps RouterDeps) http.Handler {
	t.Helper()
	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if deps.RateLimiter == nil {
		deps.RateLimiter = rl
	}
	deps.TokenVerifier = stubVerifier{}
	deps.CORSAllowedOrigin = "*"
	if deps.Accounts == nil {
		deps.Accounts = &mockAccountService{}
	}
	if deps.Bookmarks == nil {
		deps.Bookmarks = &mockBookmarkService{}
	}
	if deps.Likes == nil {
		deps.Likes = &mockLikeService{}
	}
	if deps.History == nil {
		deps.History = &mockHistoryService{}
	}
	if deps.News == nil {
		deps.News = &mockNewsService{}
	}
	return NewRouter(&deps)
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, RouterDeps{})

	routes := []struct{ method, path string }{
		{http.MethodPost, "/change-password"},
		{http.MethodGet, "/profile"},
		{http.MethodPost, "/upload-profile"},
		{http.MethodGet, "/api/bookmarks/user"},
		{http.MethodPost, "/api/bookmarks"},
		{http.MethodDelete, "/api/bookmarks/abc"},
		{http.MethodGet, "/api/liked-articles"},
		{http.MethodPost, "/api/like-article"},
		{http.MethodGet, "/api/reading-history"},
		{http.MethodPost, "/api/reading-history"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
			if w.Code != http.StatusUnauthorized {
				t.Errorf("no token: status = %d, want 401", w.Code)
			}

			req := httptest.NewRequest(rt.method, rt.path, nil)
			req.Header.Set("Authorization", "Bearer forged")
			w = httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != http.StatusForbidden {
				t.Errorf("bad token: status = %d, want 403", w.Code)
			}
		})
	}
}

func TestRouter_RemoveBookmark_PassesIDAndUser(t *testing.T) {
	var gotUser, gotID string
	router := newTestRouter(t, RouterDeps{
		Bookmarks: &mockBookmarkService{
			removeFn: func(ctx context.Context, userID, bookmarkID string) error {
				gotUser, gotID = userID, bookmarkID
				return nil
			},
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/bookmarks/6f1c2a7e-0000-4000-8000-000000000001", nil)
	req.Header.Set("Authorization", "Bearer valid")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotUser != "user-1" || gotID != "6f1c2a7e-0000-4000-8000-000000000001" {
		t.Errorf("got (%q, %q)", gotUser, gotID)
	}
}

func TestRouter_RemoveBookmark_NotFoundLocalized(t *testing.T) {
	router := newTestRouter(t, RouterDeps{
		Bookmarks: &mockBookmarkService{
			removeFn: func(ctx context.Context, userID, bookmarkID string) error {
				return model.NewBookmarkNotFoundError()
			},
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/bookmarks/whatever", nil)
	req.Header.Set("Authorization", "Bearer valid")
	req.Header.Set("Accept-Language", "id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	errBody, _ := decodeBody(t, w)["error"].(map[string]any)
	if errBody["message"] != "Bookmark tidak ditemukan." {
		t.Errorf("message = %v", errBody["message"])
	}
}

func TestRouter_PublicRoutes(t *testing.T) {
	router := newTestRouter(t, RouterDeps{
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("# metrics"))
		}),
	})

	for _, path := range []string{"/health", "/metrics", "/api/news"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, w.Code)
		}
	}
}

func TestRouter_SecurityAndCORSHeaders(t *testing.T) {
	router := newTestRouter(t, RouterDeps{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS header missing")
	}
}

func TestRouter_LoginRateLimited(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfigPerMinute(120, 2))
	t.Cleanup(rl.Stop)
	router := newTestRouter(t, RouterDeps{RateLimiter: rl})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader([]byte(`{"email":"a@example.com","password":"x"}`)))
		req.RemoteAddr = "203.0.113.7:4000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want third request limited", codes)
	}
}

func TestRouter_PanicRecovered(t *testing.T) {
	router := newTestRouter(t, RouterDeps{
		Likes: &mockLikeService{
			listFn: func(ctx context.Context, userID string) ([]*model.Article, error) {
				panic("unexpected")
			},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/liked-articles", nil)
	req.Header.Set("Authorization", "Bearer valid")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestHealthHandler_ReportsFailingDependency(t *testing.T) {
	h := NewHealthHandler([]HealthCheck{
		{Name: "postgres", Check: func(ctx context.Context) error { return nil }},
		{Name: "redis", Check: func(ctx context.Context) error { return errors.New("dial tcp: refused") }},
	}, 0)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	checks, _ := decodeBody(t, w)["checks"].(map[string]any)
	if checks["redis"] != "unavailable" {
		t.Errorf("checks = %v", checks)
	}
	if _, ok := checks["postgres"]; ok {
		t.Error("healthy dependency should not be listed")
	}
}
