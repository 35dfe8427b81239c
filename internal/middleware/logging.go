package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// HTTPRecorder はリクエスト結果をメトリクスとして記録する。metrics.Collectorが実装する。
type HTTPRecorder interface {
	RecordHTTPRequest(method, route string, statusCode int, d time.Duration)
}

// requestInfo は内側のミドルウェアが判明させた情報をログ出力まで運ぶ。
// 認証ミドルウェアはルートグループ内で動くため、外側からはコンテキストの値が見えない。
type requestInfo struct {
	userID string
}

var requestInfoKey = contextKey("request_info")

// statusRecorder はhttp.ResponseWriterをラップし、ステータスコードを記録する。
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

// WriteHeader はステータスコードを記録してから委譲する。
func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

// Write はデータを書き込む。WriteHeaderが未呼び出しの場合は200を記録する。
func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// NewLoggingMiddleware はリクエストのJSON構造化ログを出力するミドルウェアを返す。
// ログにはmethod、path、route、status、duration_ms、request_id、user_id（認証済みの場合）を含む。
// recorderがnilでなければルート単位のメトリクスも記録する。
func NewLoggingMiddleware(logger *slog.Logger, recorder HTTPRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			info := &requestInfo{}

			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestInfoKey, info)))

			duration := time.Since(start)
			route := routePattern(r)

			args := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("route", route),
				slog.Int("status", rec.statusCode),
				slog.Float64("duration_ms", float64(duration.Nanoseconds())/float64(time.Millisecond)),
			}
			if reqID := chimw.GetReqID(r.Context()); reqID != "" {
				args = append(args, slog.String("request_id", reqID))
			}
			if info.userID != "" {
				args = append(args, slog.String("user_id", info.userID))
			}

			level := slog.LevelInfo
			switch {
			case rec.statusCode >= 500:
				level = slog.LevelError
			case rec.statusCode >= 400:
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "http_request", args...)

			if recorder != nil {
				recorder.RecordHTTPRequest(r.Method, route, rec.statusCode, duration)
			}
		})
	}
}

// routePattern はchiがマッチしたルートパターンを返す。未マッチの場合は"unmatched"。
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
