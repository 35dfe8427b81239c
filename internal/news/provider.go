// Package news は複数のニュースAPIから記事を並行取得し、共通形式にまとめる。
package news

import (
	"context"
	"fmt"

	"github.com/hitoshi/newsman/internal/model"
)

// Provider はニュースの取得元1件を表す。
// Fetchは正規化前のフィールドをそのまま詰めた記事を返し、
// サニタイズと欠損記事の除外はAggregatorが行う。
type Provider interface {
	Name() string
	Fetch(ctx context.Context, category string) ([]model.NormalizedArticle, error)
}

// StatusError はプロバイダが2xx以外のステータスを返したことを表す。
type StatusError struct {
	Provider   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.StatusCode)
}

// DecodeError はレスポンスボディを解釈できなかったことを表す。
type DecodeError struct {
	Provider string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Provider, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
