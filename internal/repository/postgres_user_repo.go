package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/newsman/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `id, name, email, password_hash, profile_image, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	user := &model.User{}
	var profileImage sql.NullString
	if err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&profileImage, &user.CreatedAt, &user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.ProfileImage = nullStringValue(profileImage)
	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// Create はユーザーを作成する。メールアドレスが重複する場合はErrDuplicateを返す。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, profile_image, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Name, user.Email, user.PasswordHash,
		nullString(user.ProfileImage), user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// UpdatePassword はパスワードハッシュを更新する。
func (r *PostgresUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	return r.updateColumn(ctx, "password_hash", id, passwordHash, updatedAt)
}

// UpdateProfileImage はプロフィール画像を更新する。
func (r *PostgresUserRepo) UpdateProfileImage(ctx context.Context, id, image string, updatedAt time.Time) error {
	return r.updateColumn(ctx, "profile_image", id, image, updatedAt)
}

// updateColumn は固定のカラム名に対してのみ呼び出すこと。
func (r *PostgresUserRepo) updateColumn(ctx context.Context, column, id, value string, updatedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET `+column+` = $2, updated_at = $3 WHERE id = $1`,
		id, value, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", column, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
