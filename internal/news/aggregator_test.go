package news

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/newsman/internal/model"
)

// mockProvider はProviderのモック。
type mockProvider struct {
	name    string
	fetchFn func(ctx context.Context, category string) ([]model.NormalizedArticle, error)

	mu    sync.Mutex
	calls int
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Fetch(ctx context.Context, category string) ([]model.NormalizedArticle, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.fetchFn(ctx, category)
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func returning(articles ...model.NormalizedArticle) func(context.Context, string) ([]model.NormalizedArticle, error) {
	return func(context.Context, string) ([]model.NormalizedArticle, error) {
		out := make([]model.NormalizedArticle, len(articles))
		copy(out, articles)
		return out, nil
	}
}

func failing(err error) func(context.Context, string) ([]model.NormalizedArticle, error) {
	return func(context.Context, string) ([]model.NormalizedArticle, error) {
		return nil, err
	}
}

// recordingRecorder はRecorderのテスト用実装。
type recordingRecorder struct {
	mu        sync.Mutex
	successes map[string]int
	failures  map[string]string
	merged    int
	dropped   int
}

func newRecordingRecorder() *recordingRecorder {
	return &recordingRecorder{successes: map[string]int{}, failures: map[string]string{}}
}

func (r *recordingRecorder) RecordProviderSuccess(p string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes[p] = n
}

func (r *recordingRecorder) RecordProviderFailure(p, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[p] = reason
}

func (r *recordingRecorder) RecordProviderLatency(string, time.Duration) {}

func (r *recordingRecorder) RecordMerge(merged, dropped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.merged, r.dropped = merged, dropped
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func art(title, url string) model.NormalizedArticle {
	return model.NormalizedArticle{Title: title, URL: url}
}

func TestAggregator_PartialFailure(t *testing.T) {
	var logs bytes.Buffer
	rec := newRecordingRecorder()

	good := &mockProvider{name: "good", fetchFn: returning(art("Satu", "https://g/1"), art("Dua", "https://g/2"))}
	bad := &mockProvider{name: "bad", fetchFn: failing(errors.New("connection refused"))}

	agg := NewAggregator([]Source{{Provider: bad}, {Provider: good}}, rec, newTestLogger(&logs))

	got, err := agg.FetchArticles(context.Background(), "business")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	assert.Equal(t, 2, rec.successes["good"])
	assert.Equal(t, "transport", rec.failures["bad"])
	assert.Contains(t, logs.String(), `"provider":"bad"`)
	assert.Contains(t, logs.String(), "news provider failed")
}

func TestAggregator_OneOfThreeFails_MergesRemainingWithDedup(t *testing.T) {
	a := &mockProvider{name: "a", fetchFn: returning(
		art("Berita &amp; Politik", "https://a.example/1"),
		art("", "https://a.example/no-title"),
		art("Olahraga Hari Ini", "https://a.example/2"),
	)}
	b := &mockProvider{name: "b", fetchFn: failing(&StatusError{Provider: "b", StatusCode: 502})}
	c := &mockProvider{name: "c", fetchFn: returning(
		art("Berita & Politik", "https://c.example/1"),
		art("Tanpa URL", ""),
		art("Ekonomi Pekan Ini", "https://c.example/2"),
	)}

	agg := NewAggregator([]Source{{Provider: a}, {Provider: b}, {Provider: c}}, nil, newTestLogger(&bytes.Buffer{}))

	got, err := agg.FetchArticles(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Berita & Politik", got[0].Title)
	assert.Equal(t, "https://a.example/1", got[0].URL, "first provider wins on duplicate titles")
	assert.Equal(t, "Olahraga Hari Ini", got[1].Title)
	assert.Equal(t, "Ekonomi Pekan Ini", got[2].Title)
}

func TestAggregator_AllFailed(t *testing.T) {
	a := &mockProvider{name: "a", fetchFn: failing(&StatusError{Provider: "a", StatusCode: 500})}
	b := &mockProvider{name: "b", fetchFn: failing(&DecodeError{Provider: "b", Err: errors.New("eof")})}

	agg := NewAggregator([]Source{{Provider: a}, {Provider: b}}, nil, newTestLogger(&bytes.Buffer{}))

	got, err := agg.FetchArticles(context.Background(), "")
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.Nil(t, got)
}

func TestAggregator_NoProviders(t *testing.T) {
	agg := NewAggregator(nil, nil, newTestLogger(&bytes.Buffer{}))
	_, err := agg.FetchArticles(context.Background(), "")
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestAggregator_EmptySuccessIsNotFailure(t *testing.T) {
	empty := &mockProvider{name: "empty", fetchFn: returning()}
	agg := NewAggregator([]Source{{Provider: empty}}, nil, newTestLogger(&bytes.Buffer{}))

	got, err := agg.FetchArticles(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

// 完了順ではなく登録順でマージされる。
func TestAggregator_PriorityOrderIndependentOfTiming(t *testing.T) {
	slow := &mockProvider{name: "slow", fetchFn: func(ctx context.Context, _ string) ([]model.NormalizedArticle, error) {
		time.Sleep(50 * time.Millisecond)
		return []model.NormalizedArticle{art("Berita Sama", "https://slow/1")}, nil
	}}
	fast := &mockProvider{name: "fast", fetchFn: returning(art("berita sama", "https://fast/1"), art("Lain", "https://fast/2"))}

	rec := newRecordingRecorder()
	agg := NewAggregator([]Source{{Provider: slow}, {Provider: fast}}, rec, newTestLogger(&bytes.Buffer{}))

	got, err := agg.FetchArticles(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "https://slow/1", got[0].URL)
	assert.Equal(t, "https://fast/2", got[1].URL)
	assert.Equal(t, 2, rec.merged)
	assert.Equal(t, 1, rec.dropped)
}

func TestAggregator_ProviderTimeout(t *testing.T) {
	hanging := &mockProvider{name: "hanging", fetchFn: func(ctx context.Context, _ string) ([]model.NormalizedArticle, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	quick := &mockProvider{name: "quick", fetchFn: returning(art("Cepat", "https://q/1"))}

	rec := newRecordingRecorder()
	agg := NewAggregator([]Source{
		{Provider: hanging, Timeout: 20 * time.Millisecond},
		{Provider: quick, Timeout: time.Second},
	}, rec, newTestLogger(&bytes.Buffer{}))

	start := time.Now()
	got, err := agg.FetchArticles(context.Background(), "")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Len(t, got, 1)
	assert.Equal(t, "timeout", rec.failures["hanging"])
}

func TestAggregator_CleansArticles(t *testing.T) {
	p := &mockProvider{name: "p", fetchFn: returning(
		model.NormalizedArticle{
			Title:       "<b>Judul</b> &amp; lainnya",
			URL:         " https://p/1 ",
			Description: "<p>Deskripsi\n\n panjang</p>",
			Image:       "javascript:alert(1)",
			Source:      "Sumber",
		},
		model.NormalizedArticle{Title: "Tanpa URL"},
		model.NormalizedArticle{Title: "   ", URL: "https://p/blank"},
		model.NormalizedArticle{Title: "<script>x()</script>", URL: "https://p/script"},
	)}

	agg := NewAggregator([]Source{{Provider: p}}, nil, newTestLogger(&bytes.Buffer{}))

	got, err := agg.FetchArticles(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Judul & lainnya", got[0].Title)
	assert.Equal(t, "https://p/1", got[0].URL)
	assert.Equal(t, "Deskripsi panjang", got[0].Description)
	assert.Empty(t, got[0].Image)
}

func TestAggregator_InvalidCategory(t *testing.T) {
	p := &mockProvider{name: "p", fetchFn: returning()}
	agg := NewAggregator([]Source{{Provider: p}}, nil, newTestLogger(&bytes.Buffer{}))

	_, err := agg.FetchArticles(context.Background(), "gossip")
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, model.ErrCodeInvalidCategory, apiErr.Code)
	assert.Zero(t, p.callCount())
}

func TestAggregator_BackoffSkipsProvider(t *testing.T) {
	limited := &mockProvider{name: "limited", fetchFn: failing(&StatusError{Provider: "limited", StatusCode: 429})}
	ok := &mockProvider{name: "ok", fetchFn: returning(art("A", "https://ok/a"))}

	agg := NewAggregator([]Source{{Provider: limited}, {Provider: ok}}, nil, newTestLogger(&bytes.Buffer{}))

	_, err := agg.FetchArticles(context.Background(), "")
	require.NoError(t, err)
	_, err = agg.FetchArticles(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, limited.callCount())
	assert.Equal(t, 2, ok.callCount())
}

func TestAggregator_ProviderNames(t *testing.T) {
	agg := NewAggregator([]Source{
		{Provider: &mockProvider{name: "x"}},
		{Provider: &mockProvider{name: "y"}},
	}, nil, nil)
	assert.Equal(t, []string{"x", "y"}, agg.ProviderNames())
}
