package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/newsman/internal/model"
)

func TestMapAPIErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *model.APIError
		want int
	}{
		{model.NewTokenMissingError(), http.StatusUnauthorized},
		{model.NewUnauthenticatedError(), http.StatusUnauthorized},
		{model.NewTokenInvalidError(), http.StatusForbidden},
		{model.NewValidationError("x"), http.StatusBadRequest},
		{model.NewTitleRequiredError(), http.StatusBadRequest},
		{model.NewUserNotFoundError(), http.StatusBadRequest},
		{model.NewInvalidPasswordError(), http.StatusBadRequest},
		{model.NewEmailTakenError(), http.StatusBadRequest},
		{model.NewBookmarkExistsError("b"), http.StatusBadRequest},
		{model.NewBookmarkNotFoundError(), http.StatusNotFound},
		{model.NewAccountNotFoundError(), http.StatusNotFound},
		{model.NewRateLimitedError(), http.StatusTooManyRequests},
		{model.NewStorageError(), http.StatusInternalServerError},
		{model.NewInternalError(), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			if got := mapAPIErrorToHTTPStatus(tt.err); got != tt.want {
				t.Errorf("mapAPIErrorToHTTPStatus(%s) = %d, want %d", tt.err.Code, got, tt.want)
			}
		})
	}
}

func TestHandleServiceError_WrappedAPIError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/bookmarks", nil)

	handleServiceError(w, r, fmt.Errorf("add: %w", model.NewBookmarkExistsError("bm-9")))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if code := errorCode(t, w); code != model.ErrCodeBookmarkExists {
		t.Errorf("code = %q", code)
	}
}

func TestHandleServiceError_HidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/liked-articles", nil)

	handleServiceError(w, r, errors.New("pq: connection refused to 10.0.0.5"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "10.0.0.5") {
		t.Errorf("internal error detail leaked: %s", w.Body.String())
	}
	if code := errorCode(t, w); code != model.ErrCodeStorage {
		t.Errorf("code = %q, want %q", code, model.ErrCodeStorage)
	}
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"image":"`+strings.Repeat("a", 64)+`"}`))

	var v uploadProfileRequest
	apiErr := decodeJSON(w, r, 16, &v)
	if apiErr == nil {
		t.Fatal("expected error for oversized body")
	}
	if apiErr.Details["reason"] != "request body is too large" {
		t.Errorf("reason = %q", apiErr.Details["reason"])
	}
}

func TestDecodeJSON_Malformed(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))

	var v articleInput
	if apiErr := decodeJSON(w, r, 0, &v); apiErr == nil || apiErr.Code != model.ErrCodeValidation {
		t.Errorf("apiErr = %v, want validation error", apiErr)
	}
}

func TestArticleInput_Normalization(t *testing.T) {
	in := &articleInput{
		Title:       "T",
		Content:     "full body",
		Description: "summary",
		URLToImage:  "https://img.example.com/a.jpg",
	}

	like := in.forLike()
	if like.Content != "summary" {
		t.Errorf("like content = %q, want description first", like.Content)
	}
	if like.Image != "https://img.example.com/a.jpg" {
		t.Errorf("like image = %q, want urlToImage fallback", like.Image)
	}

	hist := in.forHistory()
	if hist.Content != "full body" {
		t.Errorf("history content = %q, want content first", hist.Content)
	}
	if hist.Description != "summary" {
		t.Errorf("history description = %q", hist.Description)
	}

	var missing *articleInput
	if missing.forLike().Title != "" || missing.forHistory().Title != "" {
		t.Error("nil input should produce empty payloads")
	}
}
