package collection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/newsman/internal/model"
	"github.com/hitoshi/newsman/internal/repository"
)

// LikeService はいいねのトグルと一覧を提供する。
type LikeService struct {
	articles ArticleResolver
	likes    repository.LikeRepository
	now      func() time.Time
}

// NewLikeService はLikeServiceを生成する。
func NewLikeService(articles ArticleResolver, likes repository.LikeRepository, now func() time.Time) *LikeService {
	return &LikeService{
		articles: articles,
		likes:    likes,
		now:      clockOrDefault(now),
	}
}

// ToggleLike は記事のいいね状態を反転し、反転後の状態を返す。
func (s *LikeService) ToggleLike(ctx context.Context, userID string, payload model.ArticlePayload) (bool, error) {
	if err := requireUser(userID); err != nil {
		return false, err
	}

	article, err := s.articles.ResolveOrCreate(ctx, payload)
	if err != nil {
		return false, err
	}

	existing, err := s.likes.FindByUserAndArticle(ctx, userID, article.ID)
	if err != nil {
		return false, fmt.Errorf("find like: %w", err)
	}

	if existing != nil {
		if err := s.likes.DeleteByID(ctx, existing.ID); err != nil {
			return false, fmt.Errorf("delete like: %w", err)
		}
		return false, nil
	}

	err = s.likes.Create(ctx, &model.Like{
		ID:        uuid.NewString(),
		UserID:    userID,
		ArticleID: article.ID,
		CreatedAt: s.now(),
	})
	if errors.Is(err, repository.ErrDuplicate) {
		// 同時リクエストが先に作成した
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("create like: %w", err)
	}
	return true, nil
}

// ListLikedArticles はいいねした記事をいいね日時の降順で返す。
func (s *LikeService) ListLikedArticles(ctx context.Context, userID string) ([]*model.Article, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	articles, err := s.likes.ListArticlesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list liked articles: %w", err)
	}
	return articles, nil
}
