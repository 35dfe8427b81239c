// Package prefetch はニュースカテゴリのキャッシュを定期的に温めるスケジューラを提供する。
package prefetch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Refresher はカテゴリのニュースを取得し直してキャッシュに保存する。news.Serviceが実装する。
type Refresher interface {
	Refresh(ctx context.Context, category string) (int, error)
}

// Recorder はプリフェッチ結果を記録する。metrics.Collectorが実装する。
type Recorder interface {
	RecordPrefetch(ok bool)
}

// Scheduler はカテゴリごとのプリフェッチを並列数を制限しながら定期実行する。
type Scheduler struct {
	refresher      Refresher
	recorder       Recorder
	logger         *slog.Logger
	categories     []string
	maxConcurrency int
}

// NewScheduler はSchedulerを生成する。
// maxConcurrencyが0以下の場合は2を使用する。recorderはnilでもよい。
func NewScheduler(
	refresher Refresher,
	recorder Recorder,
	logger *slog.Logger,
	categories []string,
	maxConcurrency int,
) *Scheduler {
	if maxConcurrency <= 0 {
		maxConcurrency = 2
	}
	return &Scheduler{
		refresher:      refresher,
		recorder:       recorder,
		logger:         logger,
		categories:     append([]string(nil), categories...),
		maxConcurrency: maxConcurrency,
	}
}

// Start はintervalごとにRunOnceを実行する。起動直後にも1回実行する。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("prefetch scheduler started",
		slog.Duration("interval", interval),
		slog.Int("categories", len(s.categories)),
		slog.Int("max_concurrency", s.maxConcurrency),
	)

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("prefetch scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce は全カテゴリを1回ずつ取得し直し、成功したカテゴリ数を返す。
// 1カテゴリの失敗は他のカテゴリに影響しない。
func (s *Scheduler) RunOnce(ctx context.Context) int {
	start := time.Now()

	sem := make(chan struct{}, s.maxConcurrency)
	var wg sync.WaitGroup
	var succeeded atomic.Int64

loop:
	for _, category := range s.categories {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break loop
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(category string) {
			defer wg.Done()
			defer func() { <-sem }()

			n, err := s.refresher.Refresh(ctx, category)
			if s.recorder != nil {
				s.recorder.RecordPrefetch(err == nil)
			}
			if err != nil {
				s.logger.Warn("prefetch failed",
					slog.String("category", categoryLabel(category)),
					slog.String("error", err.Error()),
				)
				return
			}
			succeeded.Add(1)
			s.logger.Debug("prefetch completed",
				slog.String("category", categoryLabel(category)),
				slog.Int("articles", n),
			)
		}(category)
	}

	wg.Wait()

	ok := int(succeeded.Load())
	s.logger.Info("prefetch cycle completed",
		slog.Int("categories", len(s.categories)),
		slog.Int("succeeded", ok),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return ok
}

func categoryLabel(category string) string {
	if category == "" {
		return "general"
	}
	return category
}
