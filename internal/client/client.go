// Package client はnewsman APIの型付きHTTPクライアントを提供する。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	// maxResponseBytes はレスポンスボディの読み取り上限。
	maxResponseBytes = 10 << 20
	defaultTimeout   = 15 * time.Second
	userAgent        = "newsman-client/1.0"
)

// Client はnewsman APIのクライアント。
// ログイン後はBearerトークンを保持し、認証が必要なリクエストに付与する。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    *url.URL

	mu    sync.RWMutex
	token string
}

// New はClientを生成する。httpClientがnilの場合はタイムアウト付きのクライアントを使う。
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https: %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{httpClient: httpClient, logger: logger, baseURL: u}, nil
}

// SetToken はアクセストークンを設定する。空文字でログアウト状態になる。
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token は現在のアクセストークンを返す。
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Signup はアカウントを作成する。
func (c *Client) Signup(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/signup", nil, body, nil)
}

// Login はログインし、取得したトークンをクライアントに設定する。
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", nil, body, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Logout はトークンを破棄する。サーバー側のセッションは持たない。
func (c *Client) Logout() {
	c.SetToken("")
}

// ChangePassword はパスワードを変更する。
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	return c.do(ctx, http.MethodPost, "/change-password", nil, body, nil)
}

// Profile はログインユーザーのプロフィールを取得する。
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var out struct {
		User Profile `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/profile", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// UploadProfileImage はdata URI形式の画像をアップロードし、保存先URLを返す。
func (c *Client) UploadProfileImage(ctx context.Context, dataURI string) (string, error) {
	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := c.do(ctx, http.MethodPost, "/upload-profile", nil, map[string]string{"image": dataURI}, &out); err != nil {
		return "", err
	}
	return out.ImageURL, nil
}

// Bookmarks はブックマーク一覧を取得する。
func (c *Client) Bookmarks(ctx context.Context) ([]Bookmark, error) {
	var out struct {
		Data []Bookmark `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/bookmarks/user", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// AddBookmark は記事をブックマークする。
// 既にブックマーク済みの場合はCode=BOOKMARK_EXISTSの*Errorを返し、Details["bookmarkId"]に既存IDが入る。
func (c *Client) AddBookmark(ctx context.Context, article ArticleData) (*AddBookmarkResult, error) {
	var out AddBookmarkResult
	body := map[string]string{"title": article.Title, "content": article.Content, "image": article.Image}
	if err := c.do(ctx, http.MethodPost, "/api/bookmarks", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveBookmark はブックマークを削除する。
func (c *Client) RemoveBookmark(ctx context.Context, bookmarkID string) error {
	return c.do(ctx, http.MethodDelete, "/api/bookmarks/"+url.PathEscape(bookmarkID), nil, nil, nil)
}

// LikedArticles はいいねした記事の一覧を取得する。
func (c *Client) LikedArticles(ctx context.Context) ([]Article, error) {
	var out struct {
		LikedArticles []Article `json:"likedArticles"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/liked-articles", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.LikedArticles, nil
}

// ToggleLike はいいね状態を反転し、反転後の状態を返す。
func (c *Client) ToggleLike(ctx context.Context, article ArticleData) (bool, error) {
	var out struct {
		Liked bool `json:"liked"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/like-article", nil, map[string]any{"articleData": article}, &out); err != nil {
		return false, err
	}
	return out.Liked, nil
}

// ReadingHistory は閲覧履歴を取得する。
func (c *Client) ReadingHistory(ctx context.Context) ([]HistoryEntry, error) {
	var out struct {
		ReadingHistory []HistoryEntry `json:"readingHistory"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/reading-history", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.ReadingHistory, nil
}

// RecordRead は記事の閲覧を記録する。
func (c *Client) RecordRead(ctx context.Context, article ArticleData) error {
	return c.do(ctx, http.MethodPost, "/api/reading-history", nil, map[string]any{"article": article}, nil)
}

// News はカテゴリのニュース一覧を取得する。queryを指定するとタイトルで絞り込む。
func (c *Client) News(ctx context.Context, category, query string) (*NewsResult, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if query != "" {
		q.Set("q", query)
	}
	var out NewsResult
	if err := c.do(ctx, http.MethodGet, "/api/news", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// errorEnvelope はAPIのエラーレスポンス形式。
type errorEnvelope struct {
	Error struct {
		Code     string            `json:"code"`
		Message  string            `json:"message"`
		Category string            `json:"category"`
		Details  map[string]string `json:"details"`
	} `json:"error"`
}

// do はリクエストを送信し、2xxならoutにデコードする。
// 失敗はすべて*Errorとして返す。
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqURL := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		reqURL.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return &Error{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{
			Status:     resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
		var env errorEnvelope
		if json.Unmarshal(data, &env) == nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Category = env.Error.Category
			apiErr.Details = env.Error.Details
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Status: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return nil
}
