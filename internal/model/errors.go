// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, duplicate, not_found, storage, upstream
	Action   string // ユーザー向け対処方法

	// Details は重複時の既存ブックマークIDなど、クライアントが識別に使う補足情報。
	Details map[string]string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// エラーカテゴリ
const (
	CategoryAuth       = "auth"
	CategoryValidation = "validation"
	CategoryDuplicate  = "duplicate"
	CategoryNotFound   = "not_found"
	CategoryStorage    = "storage"
	CategoryUpstream   = "upstream"
	CategoryRateLimit  = "rate_limit"
	CategoryInternal   = "internal"
)

// 定義済みエラーコード
const (
	ErrCodeTokenMissing     = "TOKEN_MISSING"
	ErrCodeTokenInvalid     = "TOKEN_INVALID"
	ErrCodeUnauthenticated  = "UNAUTHENTICATED"
	ErrCodeValidation       = "VALIDATION_FAILED"
	ErrCodeTitleRequired    = "TITLE_REQUIRED"
	ErrCodeImageRequired    = "IMAGE_REQUIRED"
	ErrCodeInvalidImage     = "INVALID_IMAGE"
	ErrCodeInvalidCategory  = "INVALID_CATEGORY"
	ErrCodeEmailTaken       = "EMAIL_TAKEN"
	ErrCodeBookmarkExists   = "BOOKMARK_EXISTS"
	ErrCodeBookmarkNotFound = "BOOKMARK_NOT_FOUND"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeAccountNotFound  = "ACCOUNT_NOT_FOUND"
	ErrCodeInvalidPassword  = "INVALID_PASSWORD"
	ErrCodeWrongOldPassword = "WRONG_OLD_PASSWORD"
	ErrCodeStorage          = "STORAGE_ERROR"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// NewTokenMissingError は認証トークン未指定エラーを生成する。
func NewTokenMissingError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenMissing,
		Message:  "Access token is required.",
		Category: CategoryAuth,
		Action:   "Log in and retry the request.",
	}
}

// NewTokenInvalidError は無効または期限切れトークンのエラーを生成する。
func NewTokenInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenInvalid,
		Message:  "Access token is invalid or expired.",
		Category: CategoryAuth,
		Action:   "Log in again to obtain a new token.",
	}
}

// NewUnauthenticatedError はコンテキストにユーザーIDが無い場合のエラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "Authentication is required.",
		Category: CategoryAuth,
		Action:   "Log in and retry the request.",
	}
}

// NewValidationError は入力値不正エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("Invalid input: %s", reason),
		Category: CategoryValidation,
		Action:   "Check the submitted fields and try again.",
		Details:  map[string]string{"reason": reason},
	}
}

// NewTitleRequiredError は記事タイトル未指定エラーを生成する。
func NewTitleRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeTitleRequired,
		Message:  "Article title is required.",
		Category: CategoryValidation,
		Action:   "Include the article title in the request.",
	}
}

// NewImageRequiredError はプロフィール画像未指定エラーを生成する。
func NewImageRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeImageRequired,
		Message:  "No image provided.",
		Category: CategoryValidation,
		Action:   "Select an image and upload it again.",
	}
}

// NewInvalidImageError は画像データ不正エラーを生成する。
func NewInvalidImageError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidImage,
		Message:  fmt.Sprintf("Invalid image: %s", reason),
		Category: CategoryValidation,
		Action:   "Upload a JPEG, PNG or GIF image.",
		Details:  map[string]string{"reason": reason},
	}
}

// NewInvalidCategoryError は未対応のニュースカテゴリ指定エラーを生成する。
func NewInvalidCategoryError(category string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCategory,
		Message:  fmt.Sprintf("Unknown news category: %s", category),
		Category: CategoryValidation,
		Action:   "Use one of business, technology, health, science, sports, entertainment, world.",
		Details:  map[string]string{"category": category},
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "User already exists.",
		Category: CategoryDuplicate,
		Action:   "Log in with the existing account or use another email address.",
	}
}

// NewBookmarkExistsError はブックマーク重複エラーを生成する。
// 既存ブックマークIDをDetailsに含める。
func NewBookmarkExistsError(bookmarkID string) *APIError {
	return &APIError{
		Code:     ErrCodeBookmarkExists,
		Message:  "Article already bookmarked.",
		Category: CategoryDuplicate,
		Action:   "Open your bookmarks to find the article.",
		Details:  map[string]string{"bookmarkId": bookmarkID},
	}
}

// NewBookmarkNotFoundError はブックマーク未検出エラーを生成する。
// 他ユーザーのブックマークも同じエラーとして扱う。
func NewBookmarkNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeBookmarkNotFound,
		Message:  "Bookmark not found.",
		Category: CategoryNotFound,
		Action:   "Refresh your bookmarks and try again.",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found.",
		Category: CategoryValidation,
		Action:   "Check the email address or sign up.",
	}
}

// NewAccountNotFoundError は認証済みユーザーのアカウントが存在しない場合のエラーを生成する。
func NewAccountNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeAccountNotFound,
		Message:  "User not found.",
		Category: CategoryNotFound,
		Action:   "Log in again.",
	}
}

// NewInvalidPasswordError はログイン時のパスワード不一致エラーを生成する。
func NewInvalidPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPassword,
		Message:  "Invalid password.",
		Category: CategoryValidation,
		Action:   "Check your password and try again.",
	}
}

// NewWrongOldPasswordError はパスワード変更時の現パスワード不一致エラーを生成する。
func NewWrongOldPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeWrongOldPassword,
		Message:  "Old password is incorrect.",
		Category: CategoryValidation,
		Action:   "Enter your current password correctly.",
	}
}

// NewStorageError は永続化層の失敗を表すエラーを生成する。
// 内部エラーの詳細はメッセージに含めない。
func NewStorageError() *APIError {
	return &APIError{
		Code:     ErrCodeStorage,
		Message:  "An internal error occurred.",
		Category: CategoryStorage,
		Action:   "Please try again later.",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Too many requests.",
		Category: CategoryRateLimit,
		Action:   "Wait a moment and retry.",
	}
}

// NewInternalError は想定外の内部エラーを生成する。詳細はログにのみ残す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "An internal error occurred.",
		Category: CategoryInternal,
		Action:   "Please try again later.",
	}
}
