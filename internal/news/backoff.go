package news

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

// Outcome はプロバイダ呼び出し失敗の分類。
type Outcome int

const (
	// OutcomeRetry は次のリクエストでそのまま再試行してよい失敗。
	OutcomeRetry Outcome = iota
	// OutcomeBackoff はレート制限やサーバーエラーで、しばらく呼び出しを控える失敗。
	OutcomeBackoff
	// OutcomeRejected はAPIキー不正などで、長時間呼び出しを控える失敗。
	OutcomeRejected
)

const (
	initialBackoff = 30 * time.Second
	maxBackoff     = 10 * time.Minute
)

// Classify はプロバイダのエラーを分類する。
func Classify(err error) Outcome {
	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500:
			return OutcomeBackoff
		case se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden:
			return OutcomeRejected
		}
	}
	return OutcomeRetry
}

// failureReason はメトリクスのラベルに使う失敗理由を返す。
func failureReason(err error) string {
	var se *StatusError
	var de *DecodeError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &se):
		if se.StatusCode >= 500 {
			return "status_5xx"
		}
		return "status_4xx"
	case errors.As(err, &de):
		return "malformed"
	default:
		return "transport"
	}
}

// CalculateBackoff は連続失敗回数に応じた待機時間を返す。
// 初回30秒、以降2倍ずつ増やし、10分で頭打ちにする。
func CalculateBackoff(consecutiveErrors int) time.Duration {
	delay := initialBackoff
	for i := 0; i < consecutiveErrors; i++ {
		delay *= 2
		if delay > maxBackoff {
			return maxBackoff
		}
	}
	return delay
}

type providerState struct {
	consecutiveErrors int
	retryAt           time.Time
}

// backoffTracker はプロバイダごとの連続失敗と再開時刻を保持する。
type backoffTracker struct {
	mu     sync.Mutex
	states map[string]*providerState
	now    func() time.Time
}

func newBackoffTracker(now func() time.Time) *backoffTracker {
	if now == nil {
		now = time.Now
	}
	return &backoffTracker{states: make(map[string]*providerState), now: now}
}

// Ready はプロバイダを呼び出してよいかを返す。
func (t *backoffTracker) Ready(provider string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.states[provider]
	return !ok || !t.now().Before(st.retryAt)
}

// Success は連続失敗をリセットする。
func (t *backoffTracker) Success(provider string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, provider)
}

// Failure は失敗を記録し、分類に応じて再開時刻を設定する。
// 設定した待機時間を返す（待機しない場合は0）。
func (t *backoffTracker) Failure(provider string, err error) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.states[provider]
	if !ok {
		st = &providerState{}
		t.states[provider] = st
	}
	st.consecutiveErrors++

	var delay time.Duration
	switch Classify(err) {
	case OutcomeBackoff:
		delay = CalculateBackoff(st.consecutiveErrors - 1)
	case OutcomeRejected:
		delay = maxBackoff
	}
	st.retryAt = t.now().Add(delay)
	return delay
}
