package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/newsman/internal/model"
	"github.com/hitoshi/newsman/internal/news"
)

// NewsService はニュースハンドラーが必要とするサービスインターフェース。
type NewsService interface {
	Latest(ctx context.Context, category, query string) (*news.Result, error)
}

// NewsHandler は集約済みニュース一覧のHTTPハンドラー。
type NewsHandler struct {
	service NewsService
}

// NewNewsHandler はNewsHandlerを生成する。
func NewNewsHandler(service NewsService) *NewsHandler {
	return &NewsHandler{service: service}
}

type newsResponse struct {
	Articles  []model.NormalizedArticle `json:"articles"`
	Retryable bool                      `json:"retryable"`
}

// Latest はカテゴリのニュース一覧を返す。qを指定するとタイトルで絞り込む。
// 全プロバイダが失敗した場合も200で空の一覧とretryable=trueを返す。
// GET /api/news?category=&q=
func (h *NewsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.service.Latest(r.Context(), q.Get("category"), q.Get("q"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	articles := result.Articles
	if articles == nil {
		articles = []model.NormalizedArticle{}
	}
	writeJSON(w, http.StatusOK, newsResponse{Articles: articles, Retryable: result.Retryable})
}
