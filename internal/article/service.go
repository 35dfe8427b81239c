// Package article は記事の正規化（同一記事の解決と作成）を提供する。
package article

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/newsman/internal/model"
	"github.com/hitoshi/newsman/internal/repository"
)

// Service は記事ペイロードを正規化済み記事に解決するサービス。
// 記事はタイトルをキーに1件へ集約され、既存記事の内容は更新しない。
type Service struct {
	repo repository.ArticleRepository
	now  func() time.Time
}

// NewService はServiceを生成する。nowがnilの場合はtime.Nowを使用する。
func NewService(repo repository.ArticleRepository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

// normalizePayload はタイトルを検証し、前後の空白を取り除く。
func normalizePayload(p model.ArticlePayload) (model.ArticlePayload, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return p, model.NewTitleRequiredError()
	}
	return p, nil
}

// ResolveOrCreate はタイトル完全一致で既存記事を返し、無ければ作成する。
// いいね・フィード取り込みで使用する。
func (s *Service) ResolveOrCreate(ctx context.Context, payload model.ArticlePayload) (*model.Article, error) {
	p, err := normalizePayload(payload)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByTitle(ctx, p.Title)
	if err != nil {
		return nil, fmt.Errorf("resolve article: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	return s.insert(ctx, p)
}

// ResolveForBookmark はブックマーク作成用の解決処理。
// (title, content, image)の組で検索し、無ければタイトルのみで再検索してから作成する。
func (s *Service) ResolveForBookmark(ctx context.Context, payload model.ArticlePayload) (*model.Article, error) {
	p, err := normalizePayload(payload)
	if err != nil {
		return nil, err
	}

	exact, err := s.repo.FindByTitleContentImage(ctx, p.Title, p.Content, p.Image)
	if err != nil {
		return nil, fmt.Errorf("resolve article by tuple: %w", err)
	}
	if exact != nil {
		return exact, nil
	}

	byTitle, err := s.repo.FindByTitle(ctx, p.Title)
	if err != nil {
		return nil, fmt.Errorf("resolve article by title: %w", err)
	}
	if byTitle != nil {
		return byTitle, nil
	}

	return s.insert(ctx, p)
}

func (s *Service) insert(ctx context.Context, p model.ArticlePayload) (*model.Article, error) {
	stored, _, err := s.repo.InsertIfAbsent(ctx, &model.Article{
		ID:        uuid.NewString(),
		Title:     p.Title,
		Content:   p.Content,
		Image:     p.Image,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return stored, nil
}
