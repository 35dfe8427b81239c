package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/newsman/internal/collection"
	"github.com/hitoshi/newsman/internal/i18n"
	"github.com/hitoshi/newsman/internal/middleware"
	"github.com/hitoshi/newsman/internal/model"
)

// BookmarkService はブックマークハンドラーが必要とするサービスインターフェース。
type BookmarkService interface {
	ListBookmarks(ctx context.Context, userID string) ([]*model.BookmarkWithArticle, error)
	AddBookmark(ctx context.Context, userID string, payload model.ArticlePayload) (*collection.AddBookmarkResult, error)
	RemoveBookmark(ctx context.Context, userID, bookmarkID string) error
}

// LikeService はいいねハンドラーが必要とするサービスインターフェース。
type LikeService interface {
	ToggleLike(ctx context.Context, userID string, payload model.ArticlePayload) (bool, error)
	ListLikedArticles(ctx context.Context, userID string) ([]*model.Article, error)
}

// HistoryService は閲覧履歴ハンドラーが必要とするサービスインターフェース。
type HistoryService interface {
	RecordView(ctx context.Context, userID string, snapshot model.ArticleSnapshot) error
	ListHistory(ctx context.Context, userID string) ([]*model.HistoryEntry, error)
}

// CollectionHandler はブックマーク・いいね・閲覧履歴のHTTPハンドラー。
type CollectionHandler struct {
	bookmarks BookmarkService
	likes     LikeService
	history   HistoryService
}

// NewCollectionHandler はCollectionHandlerを生成する。
func NewCollectionHandler(bookmarks BookmarkService, likes LikeService, history HistoryService) *CollectionHandler {
	return &CollectionHandler{bookmarks: bookmarks, likes: likes, history: history}
}

type likeRequest struct {
	ArticleData *articleInput `json:"articleData"`
}

type historyRequest struct {
	Article *articleInput `json:"article"`
}

// ListBookmarks はブックマーク一覧を返す。
// GET /api/bookmarks/user
func (h *CollectionHandler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	bookmarks, err := h.bookmarks.ListBookmarks(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	data := make([]bookmarkResponse, 0, len(bookmarks))
	for _, b := range bookmarks {
		data = append(data, bookmarkResponse{
			ID:        b.ID,
			Article:   toArticleResponse(&b.Article),
			CreatedAt: b.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

// AddBookmark は記事をブックマークする。
// POST /api/bookmarks
func (h *CollectionHandler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req articleInput
	if apiErr := decodeJSON(w, r, 0, &req); apiErr != nil {
		middleware.WriteErrorResponse(w, r, http.StatusBadRequest, apiErr)
		return
	}

	result, err := h.bookmarks.AddBookmark(r.Context(), userID, model.ArticlePayload{
		Title:   req.Title,
		Content: req.Content,
		Image:   req.Image,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":    true,
		"bookmarkId": result.BookmarkID,
		"article":    toArticleResponse(result.Article),
	})
}

// RemoveBookmark はブックマークを削除する。
// DELETE /api/bookmarks/{id}
func (h *CollectionHandler) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.bookmarks.RemoveBookmark(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": i18n.FromContext(r.Context()).Text(i18n.KeyBookmarkRemoved, "Bookmark removed successfully"),
	})
}

// ListLikedArticles はいいねした記事の一覧を返す。
// GET /api/liked-articles
func (h *CollectionHandler) ListLikedArticles(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	articles, err := h.likes.ListLikedArticles(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	liked := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		liked = append(liked, toArticleResponse(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "likedArticles": liked})
}

// ToggleLike はいいね状態を反転する。
// POST /api/like-article
func (h *CollectionHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req likeRequest
	if apiErr := decodeJSON(w, r, 0, &req); apiErr != nil {
		middleware.WriteErrorResponse(w, r, http.StatusBadRequest, apiErr)
		return
	}

	liked, err := h.likes.ToggleLike(r.Context(), userID, req.ArticleData.forLike())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "liked": liked})
}

// ListHistory は閲覧履歴を返す。
// GET /api/reading-history
func (h *CollectionHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	entries, err := h.history.ListHistory(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	history := make([]historyResponse, 0, len(entries))
	for _, e := range entries {
		history = append(history, toHistoryResponse(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "readingHistory": history})
}

// RecordHistory は記事の閲覧を記録する。
// POST /api/reading-history
func (h *CollectionHandler) RecordHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req historyRequest
	if apiErr := decodeJSON(w, r, 0, &req); apiErr != nil {
		middleware.WriteErrorResponse(w, r, http.StatusBadRequest, apiErr)
		return
	}

	if err := h.history.RecordView(r.Context(), userID, req.Article.forHistory()); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": i18n.FromContext(r.Context()).Text(i18n.KeyHistoryRecorded, "Added to reading history"),
	})
}
