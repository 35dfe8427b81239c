package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthCheck は依存サービス1件の疎通確認。
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// NewHealthHandler は依存サービスを確認するヘルスチェックハンドラーを返す。
// すべて成功すれば200 {"status":"ok"}、1件でも失敗すれば503を返す。
// GET /health
func NewHealthHandler(checks []HealthCheck, timeout time.Duration) http.HandlerFunc {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		failed := map[string]string{}
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				slog.Warn("health check failed",
					slog.String("dependency", c.Name),
					slog.String("error", err.Error()),
				)
				failed[c.Name] = "unavailable"
			}
		}

		if len(failed) > 0 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "unavailable",
				"checks": failed,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
