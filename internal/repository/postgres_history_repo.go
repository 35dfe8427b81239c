package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/newsman/internal/model"
)

// PostgresHistoryRepo はPostgreSQLを使用した閲覧履歴リポジトリ。
type PostgresHistoryRepo struct {
	db *sql.DB
}

// NewPostgresHistoryRepo はPostgresHistoryRepoを生成する。
func NewPostgresHistoryRepo(db *sql.DB) *PostgresHistoryRepo {
	return &PostgresHistoryRepo{db: db}
}

// Upsert は(user, title)をキーに閲覧履歴を登録する。
// 既存エントリのスナップショットは変更せず、read_atとexpires_atのみ更新する。
func (r *PostgresHistoryRepo) Upsert(ctx context.Context, entry *model.HistoryEntry) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO reading_history (id, user_id, title, content, image, description, read_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id, title) DO UPDATE
		 SET read_at = EXCLUDED.read_at, expires_at = EXCLUDED.expires_at
		 RETURNING id`,
		entry.ID, entry.UserID, entry.Article.Title, entry.Article.Content,
		entry.Article.Image, entry.Article.Description, entry.ReadAt, entry.ExpiresAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert reading history: %w", err)
	}
	return nil
}

// ListByUser はread_atがreadAfterより新しいエントリをread_at降順で取得する。
// 削除ジョブ未実行の期限切れエントリもここで除外される。
func (r *PostgresHistoryRepo) ListByUser(ctx context.Context, userID string, readAfter time.Time) ([]*model.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, content, image, description, read_at, expires_at
		 FROM reading_history
		 WHERE user_id = $1 AND read_at > $2
		 ORDER BY read_at DESC, id DESC`,
		userID, readAfter,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reading history: %w", err)
	}
	defer rows.Close()

	var entries []*model.HistoryEntry
	for rows.Next() {
		e := &model.HistoryEntry{}
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Article.Title, &e.Article.Content,
			&e.Article.Image, &e.Article.Description, &e.ReadAt, &e.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reading history: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reading history: %w", err)
	}
	return entries, nil
}

// compile-time interface check
var _ HistoryRepository = (*PostgresHistoryRepo)(nil)
