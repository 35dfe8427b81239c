package handler

import (
	"strings"
	"time"

	"github.com/hitoshi/newsman/internal/model"
)

// articleInput はクライアントが送る記事データ。
// ニュースAPIの形式（description、urlToImage）と保存済み記事の形式の両方を受け付ける。
type articleInput struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Description string `json:"description"`
	Image       string `json:"image"`
	URLToImage  string `json:"urlToImage"`
}

// forLike はいいね用のペイロードに変換する。本文は概要を優先する。
func (a *articleInput) forLike() model.ArticlePayload {
	if a == nil {
		return model.ArticlePayload{}
	}
	return model.ArticlePayload{
		Title:   a.Title,
		Content: firstNonBlank(a.Description, a.Content),
		Image:   firstNonBlank(a.Image, a.URLToImage),
	}
}

// forHistory は閲覧履歴用のスナップショットに変換する。本文は本文を優先する。
func (a *articleInput) forHistory() model.ArticleSnapshot {
	if a == nil {
		return model.ArticleSnapshot{}
	}
	return model.ArticleSnapshot{
		Title:       a.Title,
		Content:     firstNonBlank(a.Content, a.Description),
		Image:       firstNonBlank(a.Image, a.URLToImage),
		Description: a.Description,
	}
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// articleResponse は保存済み記事のJSON表現。
type articleResponse struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
}

func toArticleResponse(a *model.Article) articleResponse {
	return articleResponse{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		Image:     a.Image,
		CreatedAt: a.CreatedAt,
	}
}

type bookmarkResponse struct {
	ID        string          `json:"_id"`
	Article   articleResponse `json:"article"`
	CreatedAt time.Time       `json:"createdAt"`
}

type snapshotResponse struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

type historyResponse struct {
	ID        string           `json:"_id"`
	Article   snapshotResponse `json:"article"`
	ReadAt    time.Time        `json:"readAt"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

func toHistoryResponse(e *model.HistoryEntry) historyResponse {
	return historyResponse{
		ID: e.ID,
		Article: snapshotResponse{
			Title:       e.Article.Title,
			Content:     e.Article.Content,
			Image:       e.Article.Image,
			Description: e.Article.Description,
		},
		ReadAt:    e.ReadAt,
		ExpiresAt: e.ExpiresAt,
	}
}

type userResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type profileResponse struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage"`
}
