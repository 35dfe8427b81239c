package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/hitoshi/newsman/internal/model"
)

func testLimiter(t *testing.T, cfg RateLimiterConfig) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(cfg)
	t.Cleanup(rl.Stop)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }
	return rl
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
}

func requestAs(userID, remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req.RemoteAddr = remoteAddr
	if userID != "" {
		req = req.WithContext(ContextWithUserID(req.Context(), userID))
	}
	return req
}

func TestGeneralMiddleware_LimitsPerUser(t *testing.T) {
	rl := testLimiter(t, RateLimiterConfig{GeneralRate: 1, GeneralBurst: 2, LoginRate: 1, LoginBurst: 1})
	handler := rl.GeneralMiddleware()(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestAs("user-1", "10.0.0.1:1234"))
		codes = append(codes, w.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != 429 {
		t.Fatalf("codes = %v, want [200 200 429]", codes)
	}

	// 同じIPでも別ユーザーは独立
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("user-2", "10.0.0.1:1234"))
	if w.Code != http.StatusOK {
		t.Errorf("other user status = %d, want 200", w.Code)
	}
	if rl.GeneralLimiterCount() != 2 {
		t.Errorf("limiter count = %d, want 2", rl.GeneralLimiterCount())
	}
}

func TestGeneralMiddleware_AnonymousKeyedByIP(t *testing.T) {
	rl := testLimiter(t, RateLimiterConfig{GeneralRate: 1, GeneralBurst: 1, LoginRate: 1, LoginBurst: 1})
	handler := rl.GeneralMiddleware()(okHandler())

	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, requestAs("", "192.0.2.1:1000"))
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, requestAs("", "192.0.2.1:2000"))
	w3 := httptest.NewRecorder()
	handler.ServeHTTP(w3, requestAs("", "192.0.2.2:1000"))

	if w1.Code != 200 || w2.Code != 429 || w3.Code != 200 {
		t.Errorf("codes = %d %d %d, want 200 429 200", w1.Code, w2.Code, w3.Code)
	}
}

func TestRateLimit_429Response(t *testing.T) {
	rl := testLimiter(t, RateLimiterConfig{GeneralRate: 1, GeneralBurst: 1, LoginRate: 0.5, LoginBurst: 1})
	handler := rl.LoginMiddleware()(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), requestAs("", "203.0.113.9:5555"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestAs("", "203.0.113.9:5555"))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	if err != nil || retryAfter != 2 {
		t.Errorf("Retry-After = %q, want 2", w.Header().Get("Retry-After"))
	}
	if got := decodeError(t, w); got.Code != model.ErrCodeRateLimited {
		t.Errorf("code = %q, want %q", got.Code, model.ErrCodeRateLimited)
	}
}

func TestLoginMiddleware_IndependentFromGeneral(t *testing.T) {
	rl := testLimiter(t, RateLimiterConfig{GeneralRate: 1, GeneralBurst: 1, LoginRate: 1, LoginBurst: 5})

	general := rl.GeneralMiddleware()(okHandler())
	login := rl.LoginMiddleware()(okHandler())

	general.ServeHTTP(httptest.NewRecorder(), requestAs("", "198.51.100.1:1"))
	w := httptest.NewRecorder()
	general.ServeHTTP(w, requestAs("", "198.51.100.1:1"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("general status = %d, want 429", w.Code)
	}

	w = httptest.NewRecorder()
	login.ServeHTTP(w, requestAs("", "198.51.100.1:1"))
	if w.Code != http.StatusOK {
		t.Errorf("login status = %d, want 200", w.Code)
	}
	if rl.LoginLimiterCount() != 1 {
		t.Errorf("login limiter count = %d, want 1", rl.LoginLimiterCount())
	}
}

func TestRateLimiter_CleanupRemovesStaleEntries(t *testing.T) {
	rl := testLimiter(t, RateLimiterConfig{GeneralRate: 1, GeneralBurst: 1, LoginRate: 1, LoginBurst: 1, CleanupInterval: time.Minute})
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	handler := rl.GeneralMiddleware()(okHandler())
	handler.ServeHTTP(httptest.NewRecorder(), requestAs("old", "1.1.1.1:1"))

	now = now.Add(90 * time.Second)
	handler.ServeHTTP(httptest.NewRecorder(), requestAs("recent", "1.1.1.1:1"))

	now = now.Add(60 * time.Second)
	rl.cleanup()

	if rl.GeneralLimiterCount() != 1 {
		t.Errorf("limiter count = %d, want 1", rl.GeneralLimiterCount())
	}
}

func TestDefaultRateLimiterConfig(t *testing.T) {
	cfg := DefaultRateLimiterConfig()
	if cfg.GeneralBurst != 120 || cfg.LoginBurst != 10 {
		t.Errorf("bursts = %d/%d, want 120/10", cfg.GeneralBurst, cfg.LoginBurst)
	}
	if float64(cfg.GeneralRate) != 2 {
		t.Errorf("general rate = %v, want 2", cfg.GeneralRate)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[2001:db8::1]:443"
	if got := clientIP(req); got != "2001:db8::1" {
		t.Errorf("clientIP = %q", got)
	}
	req.RemoteAddr = "no-port"
	if got := clientIP(req); got != "no-port" {
		t.Errorf("clientIP = %q", got)
	}
}
