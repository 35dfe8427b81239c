package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/newsman/internal/model"
)

// PostgresLikeRepo はPostgreSQLを使用したいいねリポジトリ。
type PostgresLikeRepo struct {
	db *sql.DB
}

// NewPostgresLikeRepo はPostgresLikeRepoを生成する。
func NewPostgresLikeRepo(db *sql.DB) *PostgresLikeRepo {
	return &PostgresLikeRepo{db: db}
}

// FindByUserAndArticle は(user, article)のいいねを取得する。見つからない場合はnilを返す。
func (r *PostgresLikeRepo) FindByUserAndArticle(ctx context.Context, userID, articleID string) (*model.Like, error) {
	l := &model.Like{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, article_id, created_at FROM likes WHERE user_id = $1 AND article_id = $2`,
		userID, articleID,
	).Scan(&l.ID, &l.UserID, &l.ArticleID, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find like: %w", err)
	}
	return l, nil
}

// Create はいいねを作成する。(user, article)が重複する場合はErrDuplicateを返す。
func (r *PostgresLikeRepo) Create(ctx context.Context, like *model.Like) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO likes (id, user_id, article_id, created_at) VALUES ($1, $2, $3, $4)`,
		like.ID, like.UserID, like.ArticleID, like.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert like: %w", err)
	}
	return nil
}

// DeleteByID はいいねを削除する。既に削除済みでもエラーにしない。
func (r *PostgresLikeRepo) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM likes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}
	return nil
}

// ListArticlesByUser はユーザーがいいねした記事をいいね日時の降順で取得する。
func (r *PostgresLikeRepo) ListArticlesByUser(ctx context.Context, userID string) ([]*model.Article, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.title, a.content, a.image, a.created_at
		 FROM likes l
		 INNER JOIN articles a ON a.id = l.article_id
		 WHERE l.user_id = $1
		 ORDER BY l.created_at DESC, l.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list liked articles: %w", err)
	}
	defer rows.Close()

	var articles []*model.Article
	for rows.Next() {
		a := &model.Article{}
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Image, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan liked article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate liked articles: %w", err)
	}
	return articles, nil
}

// compile-time interface check
var _ LikeRepository = (*PostgresLikeRepo)(nil)
