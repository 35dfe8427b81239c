package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/newsman/internal/model"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // API全般のレート（req/sec）
	GeneralBurst    int           // API全般のバーストサイズ
	LoginRate       rate.Limit    // ログイン・登録のレート（req/sec、IP単位）
	LoginBurst      int           // ログイン・登録のバーストサイズ
	CleanupInterval time.Duration // 使われなくなったエントリの掃除間隔
}

// DefaultRateLimiterConfig はAPI全般120 req/min、ログイン10 req/minの設定を返す。
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfigPerMinute(120, 10)
}

// RateLimiterConfigPerMinute は分あたりのリクエスト数から設定を組み立てる。
// バーストは1分ぶんとする。
func RateLimiterConfigPerMinute(general, login int) RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(float64(general) / 60.0),
		GeneralBurst:    general,
		LoginRate:       rate.Limit(float64(login) / 60.0),
		LoginBurst:      login,
		CleanupInterval: 5 * time.Minute,
	}
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// limiterSet はキーごとのトークンバケットを保持する。
type limiterSet struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	entries map[string]*limiterEntry
}

func newLimiterSet(limit rate.Limit, burst int) *limiterSet {
	return &limiterSet{limit: limit, burst: burst, entries: make(map[string]*limiterEntry)}
}

func (s *limiterSet) allow(key string, now time.Time) bool {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = e
	}
	e.lastAccess = now
	s.mu.Unlock()
	return e.limiter.AllowN(now, 1)
}

func (s *limiterSet) sweep(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		if e.lastAccess.Before(cutoff) {
			delete(s.entries, key)
		}
	}
}

func (s *limiterSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RateLimiter はAPI全般（ユーザー単位、未認証はIP単位）と
// ログイン・登録（IP単位）の2種類のレート制限を提供する。
type RateLimiter struct {
	config  RateLimiterConfig
	general *limiterSet
	login   *limiterSet
	now     func() time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter は新しいRateLimiterを生成し、エントリの掃除を開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	rl := &RateLimiter{
		config:  config,
		general: newLimiterSet(config.GeneralRate, config.GeneralBurst),
		login:   newLimiterSet(config.LoginRate, config.LoginBurst),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop は掃除のゴルーチンを停止する。複数回呼んでもよい。
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// GeneralMiddleware はAPI全般のレート制限ミドルウェアを返す。
// 認証ミドルウェアの後に置くとユーザー単位、そうでなければIP単位で数える。
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware("general", rl.general, rl.config.GeneralRate, func(r *http.Request) string {
		if userID, err := UserIDFromContext(r.Context()); err == nil {
			return "user:" + userID
		}
		return "ip:" + clientIP(r)
	})
}

// LoginMiddleware はログイン・登録用のIP単位のレート制限ミドルウェアを返す。
func (rl *RateLimiter) LoginMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware("login", rl.login, rl.config.LoginRate, clientIP)
}

func (rl *RateLimiter) middleware(kind string, set *limiterSet, limit rate.Limit, keyFn func(*http.Request) string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if !set.allow(key, rl.now()) {
				slog.Warn("rate limit exceeded",
					slog.String("key", key),
					slog.String("limit_type", kind),
				)
				writeRateLimitResponse(w, r, limit)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GeneralLimiterCount は管理中のAPI全般リミッター数を返す。
func (rl *RateLimiter) GeneralLimiterCount() int { return rl.general.size() }

// LoginLimiterCount は管理中のログインリミッター数を返す。
func (rl *RateLimiter) LoginLimiterCount() int { return rl.login.size() }

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup は最終アクセスがCleanupIntervalの2倍より古いエントリを削除する。
func (rl *RateLimiter) cleanup() {
	cutoff := rl.now().Add(-2 * rl.config.CleanupInterval)
	rl.general.sweep(cutoff)
	rl.login.sweep(cutoff)
}

// clientIP はRemoteAddrからIPアドレスを取り出す。
// プロキシ配下ではchiのRealIPミドルウェアで事前にRemoteAddrを書き換えておく。
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeRateLimitResponse は429レスポンスを書き込む。
// Retry-Afterには1トークンが補充されるまでの秒数を設定する。
func writeRateLimitResponse(w http.ResponseWriter, r *http.Request, limit rate.Limit) {
	retryAfter := 1
	if limit > 0 {
		retryAfter = int(math.Ceil(1.0 / float64(limit)))
		if retryAfter < 1 {
			retryAfter = 1
		}
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	WriteErrorResponse(w, r, http.StatusTooManyRequests, model.NewRateLimitedError())
}
