// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "newsman"

// Collector はPrometheusメトリクスを収集する。
// news.Recorder、HTTPミドルウェア、ワーカーから利用する。
type Collector struct {
	providerRequests  *prometheus.CounterVec
	providerFailures  *prometheus.CounterVec
	providerArticles  *prometheus.CounterVec
	providerLatency   *prometheus.HistogramVec
	mergedArticles    prometheus.Counter
	duplicatesDropped prometheus.Counter
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	historyPurged     prometheus.Counter
	prefetchRuns      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "ニュースプロバイダ呼び出し回数（結果別）",
		}, []string{"provider", "result"}),
		providerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_failures_total",
			Help:      "ニュースプロバイダ呼び出し失敗数（理由別）",
		}, []string{"provider", "reason"}),
		providerArticles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_articles_total",
			Help:      "プロバイダから取得した記事数",
		}, []string{"provider"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_latency_seconds",
			Help:      "ニュースプロバイダ呼び出しのレイテンシ（秒）",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		mergedArticles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merged_articles_total",
			Help:      "マージ後に返した記事数",
		}),
		duplicatesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_articles_dropped_total",
			Help:      "タイトル重複で除外した記事数",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTPリクエスト数",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTPリクエストの処理時間（秒）",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		historyPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reading_history_purged_total",
			Help:      "期限切れで物理削除した閲覧履歴数",
		}),
		prefetchRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prefetch_runs_total",
			Help:      "カテゴリ別キャッシュ更新の実行回数",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.providerRequests,
		c.providerFailures,
		c.providerArticles,
		c.providerLatency,
		c.mergedArticles,
		c.duplicatesDropped,
		c.httpRequests,
		c.httpDuration,
		c.historyPurged,
		c.prefetchRuns,
	)

	return c
}

// RecordProviderSuccess はプロバイダ呼び出しの成功と取得件数を記録する。
func (c *Collector) RecordProviderSuccess(provider string, articles int) {
	c.providerRequests.WithLabelValues(provider, "success").Inc()
	c.providerArticles.WithLabelValues(provider).Add(float64(articles))
}

// RecordProviderFailure はプロバイダ呼び出しの失敗を記録する。
func (c *Collector) RecordProviderFailure(provider, reason string) {
	c.providerRequests.WithLabelValues(provider, "failure").Inc()
	c.providerFailures.WithLabelValues(provider, reason).Inc()
}

// RecordProviderLatency はプロバイダ呼び出しのレイテンシを記録する。
func (c *Collector) RecordProviderLatency(provider string, d time.Duration) {
	c.providerLatency.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordMerge はマージ後の件数と重複除外数を記録する。
func (c *Collector) RecordMerge(merged, dropped int) {
	c.mergedArticles.Add(float64(merged))
	c.duplicatesDropped.Add(float64(dropped))
}

// RecordHTTPRequest はHTTPリクエストの結果を記録する。routeはchiのルートパターン。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordHistoryPurged は物理削除した閲覧履歴数を記録する。
func (c *Collector) RecordHistoryPurged(count int64) {
	c.historyPurged.Add(float64(count))
}

// RecordPrefetch はキャッシュ更新1回の結果を記録する。
func (c *Collector) RecordPrefetch(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	c.prefetchRuns.WithLabelValues(result).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
