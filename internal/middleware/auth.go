// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/newsman/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// TokenVerifier はアクセストークンを検証してユーザーIDを返す。auth.TokenManagerが実装する。
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// NewBearerAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証するミドルウェアを返す。
// トークンが無い場合は401、検証に失敗した場合は403を返す。
// 検証に成功したらユーザーIDをコンテキストに注入する。
func NewBearerAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				WriteErrorResponse(w, r, http.StatusUnauthorized, model.NewTokenMissingError())
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				slog.Debug("access token rejected",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, r, http.StatusForbidden, model.NewTokenInvalidError())
				return
			}

			if info, ok := r.Context().Value(requestInfoKey).(*requestInfo); ok {
				info.userID = userID
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}

// bearerToken は "Bearer <token>" 形式のヘッダーからトークンを取り出す。
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// ErrNoUserID はコンテキストにユーザーIDが無いことを表す。
var ErrNoUserID = errors.New("user ID not found in context")

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", ErrNoUserID
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
