package news

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hitoshi/newsman/internal/model"
)

// DefaultCacheTTL はキャッシュの既定の有効期間。
const DefaultCacheTTL = 10 * time.Minute

// Fetcher はカテゴリの記事を取得する。Aggregatorが実装する。
type Fetcher interface {
	FetchArticles(ctx context.Context, category string) ([]model.NormalizedArticle, error)
}

// Result はニュース取得の結果。
// Retryableは全プロバイダが失敗して空の結果になったときにtrueとなる。
type Result struct {
	Articles  []model.NormalizedArticle
	Retryable bool
}

// Service はキャッシュとAggregatorを組み合わせてニュース一覧を返す。
type Service struct {
	fetcher Fetcher
	cache   Cache
	ttl     time.Duration
}

// NewService はServiceを生成する。cacheがnilの場合は毎回プロバイダに問い合わせる。
func NewService(fetcher Fetcher, cache Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{fetcher: fetcher, cache: cache, ttl: ttl}
}

// Latest はカテゴリの記事一覧を返し、queryが指定されていればタイトルで絞り込む。
// キャッシュの障害は記録するだけで取得処理は継続する。
func (s *Service) Latest(ctx context.Context, category, query string) (*Result, error) {
	category, err := NormalizeCategory(category)
	if err != nil {
		return nil, err
	}

	articles, err := s.load(ctx, category)
	if err != nil {
		if errors.Is(err, ErrAllProvidersFailed) {
			return &Result{Articles: []model.NormalizedArticle{}, Retryable: true}, nil
		}
		return nil, err
	}
	return &Result{Articles: Search(articles, query)}, nil
}

// Refresh はプロバイダから取得し直してキャッシュを更新する。
// 取得に失敗した場合は既存のキャッシュを残す。
func (s *Service) Refresh(ctx context.Context, category string) (int, error) {
	category, err := NormalizeCategory(category)
	if err != nil {
		return 0, err
	}
	articles, err := s.fetcher.FetchArticles(ctx, category)
	if err != nil {
		return 0, err
	}
	s.store(ctx, category, articles)
	return len(articles), nil
}

func (s *Service) load(ctx context.Context, category string) ([]model.NormalizedArticle, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, category)
		if err != nil {
			slog.Warn("news cache lookup failed",
				slog.String("category", category),
				slog.String("error", err.Error()),
			)
		} else if ok {
			return cached, nil
		}
	}

	articles, err := s.fetcher.FetchArticles(ctx, category)
	if err != nil {
		return nil, err
	}
	s.store(ctx, category, articles)
	return articles, nil
}

func (s *Service) store(ctx context.Context, category string, articles []model.NormalizedArticle) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, category, articles, s.ttl); err != nil {
		slog.Warn("news cache store failed",
			slog.String("category", category),
			slog.String("error", err.Error()),
		)
	}
}
