package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/newsman/internal/i18n"
	"github.com/hitoshi/newsman/internal/model"
)

func TestWriteErrorResponse_UnifiedFormat(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/bookmarks", nil)

	WriteErrorResponse(w, r, http.StatusBadRequest, model.NewBookmarkExistsError("bm-1"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	got := decodeError(t, w)
	if got.Code != model.ErrCodeBookmarkExists {
		t.Errorf("code = %q", got.Code)
	}
	if got.Category != model.CategoryDuplicate {
		t.Errorf("category = %q", got.Category)
	}
	if got.Message == "" || got.Action == "" {
		t.Error("message and action must be present")
	}
	if got.Details["bookmarkId"] != "bm-1" {
		t.Errorf("details = %v", got.Details)
	}
}

func TestWriteErrorResponse_Localized(t *testing.T) {
	catalog := i18n.DefaultCatalog()
	handler := NewLocaleMiddleware(catalog)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteErrorResponse(w, r, http.StatusNotFound, model.NewBookmarkNotFoundError())
	}))

	req := httptest.NewRequest(http.MethodDelete, "/api/bookmarks/x", nil)
	req.Header.Set("Accept-Language", "id-ID,id;q=0.9")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Content-Language"); got != "id" {
		t.Errorf("Content-Language = %q, want id", got)
	}
	if got := decodeError(t, w); got.Message != "Bookmark tidak ditemukan." {
		t.Errorf("message = %q", got.Message)
	}
}

func TestWriteErrorResponse_DefaultEnglish(t *testing.T) {
	handler := NewLocaleMiddleware(i18n.DefaultCatalog())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteErrorResponse(w, r, http.StatusNotFound, model.NewBookmarkNotFoundError())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/bookmarks/x", nil))

	if got := decodeError(t, w); got.Message != "Bookmark not found." {
		t.Errorf("message = %q", got.Message)
	}
}

func TestWriteInternalServerError_Generic(t *testing.T) {
	w := httptest.NewRecorder()
	WriteInternalServerError(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if got := decodeError(t, w); got.Category != model.CategoryInternal {
		t.Errorf("category = %q", got.Category)
	}
}
