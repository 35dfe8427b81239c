package model

import "time"

// Article は正規化済みの記事レコードを表す。
// Titleがビジネスキーで、同一タイトルの記事は1件しか存在しない。
type Article struct {
	ID        string
	Title     string
	Content   string
	Image     string
	CreatedAt time.Time
}

// ArticlePayload はクライアントやフィードから渡される記事データ。
// ContentとImageは未指定時に空文字として扱う。
type ArticlePayload struct {
	Title   string
	Content string
	Image   string
}

// NormalizedArticle はニュースプロバイダのレスポンスを共通形式に正規化した記事。
type NormalizedArticle struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	Image       string     `json:"image"`
	PublishedAt *time.Time `json:"publishedAt"`
	Source      string     `json:"source"`
	Content     string     `json:"content"`
}
