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

// BookmarkService はブックマークの追加・削除・一覧を提供する。
type BookmarkService struct {
	articles  ArticleResolver
	bookmarks repository.BookmarkRepository
	now       func() time.Time
}

// NewBookmarkService はBookmarkServiceを生成する。
func NewBookmarkService(articles ArticleResolver, bookmarks repository.BookmarkRepository, now func() time.Time) *BookmarkService {
	return &BookmarkService{
		articles:  articles,
		bookmarks: bookmarks,
		now:       clockOrDefault(now),
	}
}

// AddBookmarkResult はAddBookmarkの戻り値。
type AddBookmarkResult struct {
	BookmarkID string
	Article    *model.Article
}

// ListBookmarks はユーザーのブックマークを作成日時の降順で返す。
func (s *BookmarkService) ListBookmarks(ctx context.Context, userID string) ([]*model.BookmarkWithArticle, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	bookmarks, err := s.bookmarks.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return bookmarks, nil
}

// AddBookmark は記事を解決（必要なら作成）してブックマークする。
// 同じタイトルの記事を既にブックマークしている場合は重複エラーを返す。
func (s *BookmarkService) AddBookmark(ctx context.Context, userID string, payload model.ArticlePayload) (*AddBookmarkResult, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	article, err := s.articles.ResolveForBookmark(ctx, payload)
	if err != nil {
		return nil, err
	}

	existing, err := s.bookmarks.FindByUserAndTitle(ctx, userID, article.Title)
	if err != nil {
		return nil, fmt.Errorf("check bookmark: %w", err)
	}
	if existing != nil {
		return nil, model.NewBookmarkExistsError(existing.ID)
	}

	bookmark := &model.Bookmark{
		ID:        uuid.NewString(),
		UserID:    userID,
		ArticleID: article.ID,
		CreatedAt: s.now(),
	}
	if err := s.bookmarks.Create(ctx, bookmark); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, s.duplicateFromRace(ctx, userID, article.Title)
		}
		return nil, fmt.Errorf("create bookmark: %w", err)
	}

	return &AddBookmarkResult{BookmarkID: bookmark.ID, Article: article}, nil
}

// duplicateFromRace は同時登録で一意制約に負けた場合に、勝った側のIDで重複エラーを組み立てる。
func (s *BookmarkService) duplicateFromRace(ctx context.Context, userID, title string) error {
	winner, err := s.bookmarks.FindByUserAndTitle(ctx, userID, title)
	if err != nil || winner == nil {
		return model.NewBookmarkExistsError("")
	}
	return model.NewBookmarkExistsError(winner.ID)
}

// RemoveBookmark はユーザー所有のブックマークを削除する。
// 存在しない、不正なID、他ユーザー所有のいずれも同じNotFoundとして扱う。
func (s *BookmarkService) RemoveBookmark(ctx context.Context, userID, bookmarkID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	// urn:uuid:形式や大文字表記も正規形に揃えてから渡す
	parsed, err := uuid.Parse(bookmarkID)
	if err != nil {
		return model.NewBookmarkNotFoundError()
	}

	deleted, err := s.bookmarks.DeleteByIDAndUser(ctx, parsed.String(), userID)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	if !deleted {
		return model.NewBookmarkNotFoundError()
	}
	return nil
}
