package news

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/newsman/internal/model"
	"github.com/hitoshi/newsman/internal/security"
)

// DefaultProviderTimeout はSource.Timeout未指定時のプロバイダごとのタイムアウト。
const DefaultProviderTimeout = 8 * time.Second

// ErrAllProvidersFailed は有効な全プロバイダの取得に失敗したことを表す。
// 一部でも成功した場合は返らない。
var ErrAllProvidersFailed = errors.New("all news providers failed")

// Recorder はプロバイダ呼び出しの結果を記録する。metrics.Collectorが実装する。
type Recorder interface {
	RecordProviderSuccess(provider string, articles int)
	RecordProviderFailure(provider, reason string)
	RecordProviderLatency(provider string, d time.Duration)
	RecordMerge(merged, dropped int)
}

type nopRecorder struct{}

func (nopRecorder) RecordProviderSuccess(string, int)           {}
func (nopRecorder) RecordProviderFailure(string, string)        {}
func (nopRecorder) RecordProviderLatency(string, time.Duration) {}
func (nopRecorder) RecordMerge(int, int)                        {}

// Source はAggregatorに登録するプロバイダと個別のタイムアウト。
// 登録順がマージ時の優先順位になる。
type Source struct {
	Provider Provider
	Timeout  time.Duration
}

// Aggregator は複数のプロバイダから並行に記事を取得して1つのリストにまとめる。
type Aggregator struct {
	sources  []Source
	text     *security.TextSanitizer
	recorder Recorder
	backoff  *backoffTracker
	logger   *slog.Logger
}

// NewAggregator はAggregatorを生成する。recorderとloggerはnil可。
func NewAggregator(sources []Source, recorder Recorder, logger *slog.Logger) *Aggregator {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		sources:  sources,
		text:     security.NewTextSanitizer(),
		recorder: recorder,
		backoff:  newBackoffTracker(time.Now),
		logger:   logger,
	}
}

// ProviderNames は登録順のプロバイダ名を返す。
func (a *Aggregator) ProviderNames() []string {
	names := make([]string, len(a.sources))
	for i, s := range a.sources {
		names[i] = s.Provider.Name()
	}
	return names
}

// FetchArticles はカテゴリの記事を全プロバイダから取得し、
// サニタイズ・欠損除外・重複除外を行った結果を返す。
// 失敗したプロバイダは結果に寄与しないだけで、全滅した場合のみErrAllProvidersFailedを返す。
func (a *Aggregator) FetchArticles(ctx context.Context, category string) ([]model.NormalizedArticle, error) {
	category, err := NormalizeCategory(category)
	if err != nil {
		return nil, err
	}

	groups := make([][]model.NormalizedArticle, len(a.sources))
	ok := make([]bool, len(a.sources))

	var wg sync.WaitGroup
	for i, src := range a.sources {
		name := src.Provider.Name()
		if !a.backoff.Ready(name) {
			a.logger.Debug("news provider in backoff, skipped",
				slog.String("provider", name),
				slog.String("category", category),
			)
			continue
		}

		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			groups[i], ok[i] = a.fetchOne(ctx, src, category)
		}(i, src)
	}
	wg.Wait()

	succeeded := 0
	for i := range ok {
		if ok[i] {
			succeeded++
			groups[i] = a.clean(groups[i])
		}
	}
	if succeeded == 0 {
		return nil, ErrAllProvidersFailed
	}

	merged, dropped := Merge(groups...)
	a.recorder.RecordMerge(len(merged), dropped)
	return merged, nil
}

func (a *Aggregator) fetchOne(ctx context.Context, src Source, category string) ([]model.NormalizedArticle, bool) {
	name := src.Provider.Name()
	timeout := src.Timeout
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}

	fctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	articles, err := src.Provider.Fetch(fctx, category)
	a.recorder.RecordProviderLatency(name, time.Since(start))

	if err == nil && fctx.Err() != nil {
		err = fctx.Err()
	}
	if err != nil {
		reason := failureReason(err)
		delay := a.backoff.Failure(name, err)
		a.recorder.RecordProviderFailure(name, reason)
		a.logger.Warn("news provider failed",
			slog.String("provider", name),
			slog.String("category", category),
			slog.String("reason", reason),
			slog.Duration("backoff", delay),
			slog.String("error", err.Error()),
		)
		return nil, false
	}

	a.backoff.Success(name)
	a.recorder.RecordProviderSuccess(name, len(articles))
	return articles, true
}

// clean はテキストをプレーン化し、タイトルかURLが欠けた記事を除く。
func (a *Aggregator) clean(articles []model.NormalizedArticle) []model.NormalizedArticle {
	out := articles[:0]
	for _, art := range articles {
		art.Title = a.text.PlainText(art.Title)
		art.URL = strings.TrimSpace(art.URL)
		if art.Title == "" || art.URL == "" {
			continue
		}
		art.Description = a.text.PlainText(art.Description)
		art.Content = a.text.PlainText(art.Content)
		art.Source = a.text.PlainText(art.Source)
		art.Image = a.text.ImageURL(art.Image)
		out = append(out, art)
	}
	return out
}
