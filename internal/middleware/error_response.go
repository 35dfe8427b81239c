package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/newsman/internal/i18n"
	"github.com/hitoshi/newsman/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
type ErrorResponseBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail はエラーの内容。原因カテゴリと対処方法を含む。
type ErrorDetail struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Category string            `json:"category"`
	Action   string            `json:"action"`
	Details  map[string]string `json:"details,omitempty"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// メッセージはリクエストコンテキストの言語に翻訳する。
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, apiErr *model.APIError) {
	if r != nil {
		apiErr = i18n.FromContext(r.Context()).Error(apiErr)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{Error: ErrorDetail{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
		Details:  apiErr.Details,
	}})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter, r *http.Request) {
	WriteErrorResponse(w, r, http.StatusInternalServerError, model.NewInternalError())
}
