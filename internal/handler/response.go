// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/newsman/internal/middleware"
	"github.com/hitoshi/newsman/internal/model"
)

// defaultMaxBodyBytes はJSONリクエストボディの既定上限。
const defaultMaxBodyBytes int64 = 1 << 20

// writeJSON はステータスコードとJSONボディを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// decodeJSON はリクエストボディをvにデコードする。
// 上限を超えるボディや不正なJSONは入力値不正のAPIErrorとして返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) *model.APIError {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBodyBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return model.NewValidationError("request body is too large")
		}
		return model.NewValidationError("request body must be valid JSON")
	}
	return nil
}

// requireUserID は認証ミドルウェアが注入したユーザーIDを返す。
// 取得できない場合は401を書き込み、falseを返す。
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, r, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return "", false
	}
	return userID, true
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// ストレージ障害や想定外のエラーは詳細をログにのみ残し、汎用メッセージを返す。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		status := mapAPIErrorToHTTPStatus(apiErr)
		if status == http.StatusInternalServerError {
			slog.Error("request failed",
				slog.String("path", r.URL.Path),
				slog.String("code", apiErr.Code),
				slog.String("error", err.Error()),
			)
			middleware.WriteErrorResponse(w, r, status, model.NewStorageError())
			return
		}
		middleware.WriteErrorResponse(w, r, status, apiErr)
		return
	}

	slog.Error("internal server error",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	middleware.WriteErrorResponse(w, r, http.StatusInternalServerError, model.NewStorageError())
}

// mapAPIErrorToHTTPStatus はAPIErrorのカテゴリとコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Category {
	case model.CategoryAuth:
		if apiErr.Code == model.ErrCodeTokenInvalid {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case model.CategoryValidation, model.CategoryDuplicate:
		return http.StatusBadRequest
	case model.CategoryNotFound:
		return http.StatusNotFound
	case model.CategoryRateLimit:
		return http.StatusTooManyRequests
	case model.CategoryUpstream:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
