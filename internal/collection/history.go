package collection

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/newsman/internal/model"
	"github.com/hitoshi/newsman/internal/repository"
)

// HistoryService は閲覧履歴の記録と一覧を提供する。
// エントリはread_atからttl経過後に一覧から消え、cleanupジョブで物理削除される。
type HistoryService struct {
	repo repository.HistoryRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewHistoryService はHistoryServiceを生成する。ttlが0以下の場合は30日を使用する。
func NewHistoryService(repo repository.HistoryRepository, ttl time.Duration, now func() time.Time) *HistoryService {
	if ttl <= 0 {
		ttl = DefaultHistoryTTL
	}
	return &HistoryService{
		repo: repo,
		ttl:  ttl,
		now:  clockOrDefault(now),
	}
}

// RecordView は記事の閲覧を記録する。
// 同じタイトルの履歴があればread_atを更新し、無ければスナップショットを保存する。
func (s *HistoryService) RecordView(ctx context.Context, userID string, snapshot model.ArticleSnapshot) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	snapshot.Title = strings.TrimSpace(snapshot.Title)
	if snapshot.Title == "" {
		return model.NewTitleRequiredError()
	}

	readAt := s.now()
	entry := &model.HistoryEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Article:   snapshot,
		ReadAt:    readAt,
		ExpiresAt: readAt.Add(s.ttl),
	}
	if err := s.repo.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	return nil
}

// ListHistory は保持期間内の閲覧履歴をread_at降順で返す。
func (s *HistoryService) ListHistory(ctx context.Context, userID string) ([]*model.HistoryEntry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	entries, err := s.repo.ListByUser(ctx, userID, s.now().Add(-s.ttl))
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}
