package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/newsman/internal/auth"
	"github.com/hitoshi/newsman/internal/i18n"
	"github.com/hitoshi/newsman/internal/middleware"
	"github.com/hitoshi/newsman/internal/model"
)

// AccountService はアカウントハンドラーが必要とするサービスインターフェース。
type AccountService interface {
	Signup(ctx context.Context, in auth.SignupInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	UploadProfileImage(ctx context.Context, userID, dataURI string) (string, error)
}

// AccountHandler は登録・ログイン・プロフィール関連のHTTPハンドラー。
type AccountHandler struct {
	service        AccountService
	uploadMaxBytes int64
}

// NewAccountHandler はAccountHandlerを生成する。
// uploadMaxBytesは画像アップロードのリクエストボディ上限。0以下なら既定値を使う。
func NewAccountHandler(service AccountService, uploadMaxBytes int64) *AccountHandler {
	return &AccountHandler{service: service, uploadMaxBytes: uploadMaxBytes}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type uploadProfileRequest struct {
	Image string `json:"image"`
}

// Signup はアカウントを作成する。
// POST /signup
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if apiErr := decodeJSON(w, r, 0, &req); apiErr != nil {
		middleware.WriteErrorResponse(w, r, http.StatusBadRequest, apiErr)
		return
	}

	if _, err := h.service.Signup(r.Context(), auth.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": i18n.FromContext(r.Context()).Text(i18n.KeySignupCreated, "User created successfully"),
	})
}

// Login は認証してアクセストークンを返す。
// POST /login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if apiErr := decodeJSON(w, r, 0, &req); apiErr != nil {
		middleware.WriteErrorResponse(w, r, http.StatusBadRequest, apiErr)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		middleware.WriteErrorResponse(w, r, http.StatusBadRequest, model.NewValidationError("email and password are required"))
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"token":     result.Token,
		"expiresIn": int64(result.ExpiresIn / time.Second),
		"user": userResponse{
			Name:  result.User.Name,
			Email: result.User.Email,
		},
	})
}

// ChangePassword はパスワードを変更する。
// POST /change-password
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req changePasswordRequest
	if apiErr := decodeJSON(w, r, 0, &req); apiErr != nil {
		middleware.WriteErrorResponse(w, r, http.StatusBadRequest, apiErr)
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		middleware.WriteErrorResponse(w, r, http.StatusBadRequest, model.NewValidationError("all fields are required"))
		return
	}

	if err := h.service.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": i18n.FromContext(r.Context()).Text(i18n.KeyPasswordChanged, "Password changed successfully"),
	})
}

// Profile はログインユーザーのプロフィールを返す。
// GET /profile
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": profileResponse{
			Name:         profile.Name,
			Email:        profile.Email,
			ProfileImage: profile.ProfileImage,
		},
	})
}

// UploadProfile はプロフィール画像を更新する。
// POST /upload-profile
func (h *AccountHandler) UploadProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req uploadProfileRequest
	if apiErr := decodeJSON(w, r, h.uploadMaxBytes, &req); apiErr != nil {
		middleware.WriteErrorResponse(w, r, http.StatusBadRequest, apiErr)
		return
	}

	imageURL, err := h.service.UploadProfileImage(r.Context(), userID, req.Image)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"imageUrl": imageURL,
		"message":  i18n.FromContext(r.Context()).Text(i18n.KeyProfileUploaded, "Profile image updated successfully"),
	})
}
