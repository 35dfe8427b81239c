// Package auth はアカウント登録、ログイン、アクセストークンの発行と検証を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hitoshi/newsman/internal/model"
	"github.com/hitoshi/newsman/internal/repository"
)

// ProfileImageProcessor はdata URIの画像を加工・保存し、参照用URLを返す。
type ProfileImageProcessor interface {
	Process(ctx context.Context, userID, dataURI string) (string, error)
}

// SignupInput はアカウント登録の入力値。
type SignupInput struct {
	Name     string `validate:"required,max=100"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=6,max=72"`
}

// LoginResult はログイン成功時の戻り値。
type LoginResult struct {
	Token     string
	ExpiresIn time.Duration // トークンの有効期間
	User      *model.User
}

type changePasswordInput struct {
	NewPassword string `validate:"required,min=6,max=72"`
}

// Service はアカウントに関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	tokens   *TokenManager
	images   ProfileImageProcessor
	validate *validator.Validate
	now      func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	tokens *TokenManager,
	images ProfileImageProcessor,
	now func() time.Time,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
		images:   images,
		validate: validator.New(),
		now:      now,
	}
}

// normalizeEmail はメールアドレスを前後空白除去・小文字化する。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup はアカウントを作成する。メールアドレスが登録済みの場合は重複エラーを返す。
func (s *Service) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	existing, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailTakenError()
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewEmailTakenError()
		}
		return nil, fmt.Errorf("signup: %w", err)
	}

	slog.Info("user signed up", slog.String("user_id", user.ID))
	return user, nil
}

// Login はメールアドレスとパスワードを検証し、アクセストークンを発行する。
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, model.NewValidationError("email and password are required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, model.NewInvalidPasswordError()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &LoginResult{Token: token, ExpiresIn: s.tokens.TTL(), User: user}, nil
}

// ChangePassword は現在のパスワードを確認してから新しいパスワードに更新する。
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if userID == "" {
		return model.NewUnauthenticatedError()
	}
	if err := s.validate.Struct(changePasswordInput{NewPassword: newPassword}); err != nil {
		return validationError(err)
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if !CheckPassword(user.PasswordHash, oldPassword) {
		return model.NewWrongOldPasswordError()
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash, s.now()); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// GetProfile はユーザーのプロフィールを返す。
func (s *Service) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	if userID == "" {
		return nil, model.NewUnauthenticatedError()
	}
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.Profile{
		Name:         user.Name,
		Email:        user.Email,
		ProfileImage: user.ProfileImage,
	}, nil
}

// UploadProfileImage はプロフィール画像を加工・保存し、保存先URLを返す。
func (s *Service) UploadProfileImage(ctx context.Context, userID, dataURI string) (string, error) {
	if userID == "" {
		return "", model.NewUnauthenticatedError()
	}
	if strings.TrimSpace(dataURI) == "" {
		return "", model.NewImageRequiredError()
	}
	if _, err := s.findUser(ctx, userID); err != nil {
		return "", err
	}

	imageURL, err := s.images.Process(ctx, userID, dataURI)
	if err != nil {
		return "", err
	}

	if err := s.userRepo.UpdateProfileImage(ctx, userID, imageURL, s.now()); err != nil {
		return "", fmt.Errorf("update profile image: %w", err)
	}
	return imageURL, nil
}

func (s *Service) findUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, model.NewAccountNotFoundError()
	}
	return user, nil
}

// validationError はvalidatorのエラーを入力値不正のAPIErrorに変換する。
func validationError(err error) *model.APIError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return model.NewValidationError(err.Error())
	}
	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			reasons = append(reasons, field+" is required")
		case "email":
			reasons = append(reasons, field+" must be a valid email address")
		case "min":
			reasons = append(reasons, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			reasons = append(reasons, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			reasons = append(reasons, field+" is invalid")
		}
	}
	return model.NewValidationError(strings.Join(reasons, ", "))
}
