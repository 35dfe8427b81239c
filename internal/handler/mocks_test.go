package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/newsman/internal/auth"
	"github.com/hitoshi/newsman/internal/collection"
	"github.com/hitoshi/newsman/internal/middleware"
	"github.com/hitoshi/newsman/internal/model"
	"github.com/hitoshi/newsman/internal/news"
)

// --- モック定義 ---

type mockAccountService struct {
	signupFn         func(ctx context.Context, in auth.SignupInput) (*model.User, error)
	loginFn          func(ctx context.Context, email, password string) (*auth.LoginResult, error)
	changePasswordFn func(ctx context.Context, userID, oldPassword, newPassword string) error
	getProfileFn     func(ctx context.Context, userID string) (*model.Profile, error)
	uploadFn         func(ctx context.Context, userID, dataURI string) (string, error)
}

func (m *mockAccountService) Signup(ctx context.Context, in auth.SignupInput) (*model.User, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, in)
	}
	return &model.User{}, nil
}

func (m *mockAccountService) Login(ctx context.Context, email, password string) (*auth.LoginResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAccountService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(ctx, userID, oldPassword, newPassword)
	}
	return nil
}

func (m *mockAccountService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	if m.getProfileFn != nil {
		return m.getProfileFn(ctx, userID)
	}
	return &model.Profile{}, nil
}

func (m *mockAccountService) UploadProfileImage(ctx context.Context, userID, dataURI string) (string, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, userID, dataURI)
	}
	return "", nil
}

type mockBookmarkService struct {
	listFn   func(ctx context.Context, userID string) ([]*model.BookmarkWithArticle, error)
	addFn    func(ctx context.Context, userID string, payload model.ArticlePayload) (*collection.AddBookmarkResult, error)
	removeFn func(ctx context.Context, userID, bookmarkID string) error
}

func (m *mockBookmarkService) ListBookmarks(ctx context.Context, userID string) ([]*model.BookmarkWithArticle, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockBookmarkService) AddBookmark(ctx context.Context, userID string, payload model.ArticlePayload) (*collection.AddBookmarkResult, error) {
	if m.addFn != nil {
		return m.addFn(ctx, userID, payload)
	}
	return nil, errors.New("not implemented")
}

func (m *mockBookmarkService) RemoveBookmark(ctx context.Context, userID, bookmarkID string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, userID, bookmarkID)
	}
	return nil
}

type mockLikeService struct {
	toggleFn func(ctx context.Context, userID string, payload model.ArticlePayload) (bool, error)
	listFn   func(ctx context.Context, userID string) ([]*model.Article, error)
}

func (m *mockLikeService) ToggleLike(ctx context.Context, userID string, payload model.ArticlePayload) (bool, error) {
	if m.toggleFn != nil {
		return m.toggleFn(ctx, userID, payload)
	}
	return false, nil
}

func (m *mockLikeService) ListLikedArticles(ctx context.Context, userID string) ([]*model.Article, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

type mockHistoryService struct {
	recordFn func(ctx context.Context, userID string, snapshot model.ArticleSnapshot) error
	listFn   func(ctx context.Context, userID string) ([]*model.HistoryEntry, error)
}

func (m *mockHistoryService) RecordView(ctx context.Context, userID string, snapshot model.ArticleSnapshot) error {
	if m.recordFn != nil {
		return m.recordFn(ctx, userID, snapshot)
	}
	return nil
}

func (m *mockHistoryService) ListHistory(ctx context.Context, userID string) ([]*model.HistoryEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

type mockNewsService struct {
	latestFn func(ctx context.Context, category, query string) (*news.Result, error)
}

func (m *mockNewsService) Latest(ctx context.Context, category, query string) (*news.Result, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, category, query)
	}
	return &news.Result{}, nil
}

// --- ヘルパー ---

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	return bytes.NewReader(b)
}

// authedRequest は認証済みユーザーのリクエストを作る。
func authedRequest(t *testing.T, method, target string, body any, userID string) *http.Request {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, jsonBody(t, body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(middleware.ContextWithUserID(req.Context(), userID))
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v\nraw: %s", err, w.Body.String())
	}
	return body
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v\nraw: %s", err, w.Body.String())
	}
	return body.Error.Code
}
