// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/newsman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。メールアドレスが重複する場合はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error

	// UpdatePassword はパスワードハッシュを更新する。
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error

	// UpdateProfileImage はプロフィール画像を更新する。
	UpdateProfileImage(ctx context.Context, id, image string, updatedAt time.Time) error
}

// ArticleRepository は正規化済み記事の永続化インターフェース。
// 記事は作成のみで、更新・削除は行わない。
type ArticleRepository interface {
	// FindByTitle はタイトル完全一致で記事を検索する。見つからない場合はnilを返す。
	FindByTitle(ctx context.Context, title string) (*model.Article, error)

	// FindByTitleContentImage は(title, content, image)の組で記事を検索する。
	// 見つからない場合はnilを返す。
	FindByTitleContentImage(ctx context.Context, title, content, image string) (*model.Article, error)

	// InsertIfAbsent は同一タイトルの記事が無い場合のみ挿入し、保存済みの記事を返す。
	// createdは今回の呼び出しで挿入した場合にtrueとなる。
	InsertIfAbsent(ctx context.Context, article *model.Article) (stored *model.Article, created bool, err error)
}

// BookmarkRepository はブックマークの永続化インターフェース。
type BookmarkRepository interface {
	// ListByUser はユーザーのブックマークを記事付きでcreated_at降順に取得する。
	ListByUser(ctx context.Context, userID string) ([]*model.BookmarkWithArticle, error)

	// FindByUserAndTitle はユーザーのブックマークのうち記事タイトルが一致するものを取得する。
	// 見つからない場合はnilを返す。
	FindByUserAndTitle(ctx context.Context, userID, title string) (*model.Bookmark, error)

	// Create はブックマークを作成する。(user, article)が重複する場合はErrDuplicateを返す。
	Create(ctx context.Context, bookmark *model.Bookmark) error

	// DeleteByIDAndUser はユーザー所有のブックマークを削除する。
	// 対象が存在しない、または他ユーザーの所有である場合はfalseを返す。
	DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error)
}

// LikeRepository はいいねの永続化インターフェース。
type LikeRepository interface {
	// FindByUserAndArticle は(user, article)のいいねを取得する。見つからない場合はnilを返す。
	FindByUserAndArticle(ctx context.Context, userID, articleID string) (*model.Like, error)

	// Create はいいねを作成する。(user, article)が重複する場合はErrDuplicateを返す。
	Create(ctx context.Context, like *model.Like) error

	// DeleteByID はいいねを削除する。
	DeleteByID(ctx context.Context, id string) error

	// ListArticlesByUser はユーザーがいいねした記事をいいね日時の降順で取得する。
	ListArticlesByUser(ctx context.Context, userID string) ([]*model.Article, error)
}

// HistoryRepository は閲覧履歴の永続化インターフェース。
type HistoryRepository interface {
	// Upsert は(user, title)をキーに閲覧履歴を登録する。
	// 既存エントリはread_atとexpires_atのみ更新する。
	Upsert(ctx context.Context, entry *model.HistoryEntry) error

	// ListByUser はread_atがreadAfterより新しいエントリをread_at降順で取得する。
	ListByUser(ctx context.Context, userID string, readAfter time.Time) ([]*model.HistoryEntry, error)
}
