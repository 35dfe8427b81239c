package client

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Error はAPI呼び出しの失敗を表す。
// Statusが0の場合はレスポンスを受け取れなかった（通信エラー・タイムアウト）ことを表す。
type Error struct {
	Status     int
	Code       string
	Message    string
	Category   string
	Details    map[string]string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	if e.Code != "" {
		return fmt.Sprintf("api error %d [%s]: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable は同じリクエストを再試行して成功しうるかを返す。
// 通信エラー、タイムアウト、429、5xxは再試行可能、それ以外の4xxは再試行しても結果は変わらない。
func (e *Error) Retryable() bool {
	switch {
	case e.Status == 0:
		return true
	case e.Status == http.StatusTooManyRequests:
		return true
	case e.Status >= 500:
		return true
	default:
		return false
	}
}

// IsRetryable はerrが再試行可能な*Errorかを返す。
func IsRetryable(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Retryable()
}

// CodeOf はerrに含まれるAPIエラーコードを返す。*Errorでなければ空文字。
func CodeOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
