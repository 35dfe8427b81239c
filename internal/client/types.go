package client

import (
	"time"

	"github.com/hitoshi/newsman/internal/model"
)

// Article はサーバーに保存された記事。
type Article struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
}

// Bookmark はブックマーク1件。
type Bookmark struct {
	ID        string    `json:"_id"`
	Article   Article   `json:"article"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot は閲覧履歴に保存された記事のコピー。
type Snapshot struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

// HistoryEntry は閲覧履歴1件。
type HistoryEntry struct {
	ID        string    `json:"_id"`
	Article   Snapshot  `json:"article"`
	ReadAt    time.Time `json:"readAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ArticleData はいいね・閲覧履歴・ブックマークで送る記事データ。
type ArticleData struct {
	Title       string `json:"title"`
	Content     string `json:"content,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	URLToImage  string `json:"urlToImage,omitempty"`
}

// FromNormalized はニュース一覧の記事を送信用のArticleDataに変換する。
func FromNormalized(a model.NormalizedArticle) ArticleData {
	return ArticleData{
		Title:       a.Title,
		Content:     a.Content,
		Description: a.Description,
		Image:       a.Image,
	}
}

// User はログイン応答に含まれるユーザー情報。
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Profile はプロフィール情報。
type Profile struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage"`
}

// LoginResult はログイン結果。
type LoginResult struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"` // 秒
	User      User   `json:"user"`
}

// AddBookmarkResult はブックマーク追加結果。
type AddBookmarkResult struct {
	BookmarkID string  `json:"bookmarkId"`
	Article    Article `json:"article"`
}

// NewsResult はニュース一覧の取得結果。
// Retryableがtrueの場合、すべての配信元が失敗しており時間を置いて再取得すべきことを表す。
type NewsResult struct {
	Articles  []model.NormalizedArticle `json:"articles"`
	Retryable bool                      `json:"retryable"`
}
