// Package cleanup は保持期間を過ぎた閲覧履歴の物理削除ジョブを提供する。
// 一覧取得時にも保持期間で絞り込むため、このジョブが遅れても期限切れの履歴は返らない。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// PurgeRecorder は削除件数を記録する。metrics.Collectorが実装する。
type PurgeRecorder interface {
	RecordHistoryPurged(count int64)
}

const purgeQuery = `DELETE FROM reading_history WHERE expires_at < $1`

// HistoryCleanupJob はexpires_atを過ぎた閲覧履歴を削除するジョブ。
// 冪等で、削除対象がなくてもエラーにならない。
type HistoryCleanupJob struct {
	db       Executor
	logger   *slog.Logger
	recorder PurgeRecorder
	now      func() time.Time
}

// NewHistoryCleanupJob はHistoryCleanupJobを生成する。recorderはnilでもよい。
func NewHistoryCleanupJob(db Executor, logger *slog.Logger, recorder PurgeRecorder) *HistoryCleanupJob {
	return &HistoryCleanupJob{
		db:       db,
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
	}
}

// Start はintervalごとにRunを実行する。起動直後にも1回実行する。
// コンテキストがキャンセルされるまで実行を継続する。
func (j *HistoryCleanupJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("history cleanup job started", slog.Duration("interval", interval))

	j.runLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("history cleanup job stopped")
			return
		case <-ticker.C:
			j.runLogged(ctx)
		}
	}
}

func (j *HistoryCleanupJob) runLogged(ctx context.Context) {
	if _, err := j.Run(ctx); err != nil && ctx.Err() == nil {
		j.logger.Error("history cleanup cycle failed", slog.String("error", err.Error()))
	}
}

// Run は期限切れの閲覧履歴を削除し、削除件数を返す。
func (j *HistoryCleanupJob) Run(ctx context.Context) (int64, error) {
	start := time.Now()
	cutoff := j.now().UTC()

	result, err := j.db.ExecContext(ctx, purgeQuery, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge reading history: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge reading history rows affected: %w", err)
	}

	if j.recorder != nil {
		j.recorder.RecordHistoryPurged(deleted)
	}
	j.logger.Info("history cleanup completed",
		slog.Int64("deleted_count", deleted),
		slog.Time("cutoff", cutoff),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return deleted, nil
}
