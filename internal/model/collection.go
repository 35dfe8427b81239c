package model

import "time"

// Bookmark はユーザーと記事のブックマーク関係を表す。
type Bookmark struct {
	ID        string
	UserID    string
	ArticleID string
	CreatedAt time.Time
}

// BookmarkWithArticle はブックマークと記事を結合したモデル。
// ブックマーク一覧の取得時に使用する。
type BookmarkWithArticle struct {
	ID        string
	Article   Article
	CreatedAt time.Time
}

// Like はユーザーと記事のいいね関係を表す。
type Like struct {
	ID        string
	UserID    string
	ArticleID string
	CreatedAt time.Time
}

// ArticleSnapshot は閲覧履歴に保存する記事のコピー。
// 正規化済み記事を参照せず、閲覧時点の値を保持する。
type ArticleSnapshot struct {
	Title       string
	Content     string
	Image       string
	Description string
}

// HistoryEntry はユーザーの閲覧履歴1件を表す。
// (UserID, Article.Title)につき1件で、ExpiresAtを過ぎると一覧に現れない。
type HistoryEntry struct {
	ID        string
	UserID    string
	Article   ArticleSnapshot
	ReadAt    time.Time
	ExpiresAt time.Time
}
