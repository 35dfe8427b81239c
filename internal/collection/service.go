// Package collection はユーザーごとのコレクション（ブックマーク・いいね・閲覧履歴）を管理する。
package collection

import (
	"context"
	"time"

	"github.com/hitoshi/newsman/internal/model"
)

// DefaultHistoryTTL は閲覧履歴の保持期間。
const DefaultHistoryTTL = 30 * 24 * time.Hour

// ArticleResolver は記事ペイロードを正規化済み記事に解決するインターフェース。
type ArticleResolver interface {
	ResolveOrCreate(ctx context.Context, payload model.ArticlePayload) (*model.Article, error)
	ResolveForBookmark(ctx context.Context, payload model.ArticlePayload) (*model.Article, error)
}

// requireUser はユーザーIDが解決済みであることを検証する。
// 未解決の場合は空の結果ではなく認証エラーとして扱う。
func requireUser(userID string) error {
	if userID == "" {
		return model.NewUnauthenticatedError()
	}
	return nil
}

func clockOrDefault(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}
