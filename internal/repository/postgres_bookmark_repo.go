package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/newsman/internal/model"
)

// PostgresBookmarkRepo はPostgreSQLを使用したブックマークリポジトリ。
type PostgresBookmarkRepo struct {
	db *sql.DB
}

// NewPostgresBookmarkRepo はPostgresBookmarkRepoを生成する。
func NewPostgresBookmarkRepo(db *sql.DB) *PostgresBookmarkRepo {
	return &PostgresBookmarkRepo{db: db}
}

// ListByUser はユーザーのブックマークを記事付きでcreated_at降順に取得する。
func (r *PostgresBookmarkRepo) ListByUser(ctx context.Context, userID string) ([]*model.BookmarkWithArticle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.created_at,
		        a.id, a.title, a.content, a.image, a.created_at
		 FROM bookmarks b
		 INNER JOIN articles a ON a.id = b.article_id
		 WHERE b.user_id = $1
		 ORDER BY b.created_at DESC, b.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []*model.BookmarkWithArticle
	for rows.Next() {
		b := &model.BookmarkWithArticle{}
		if err := rows.Scan(
			&b.ID, &b.CreatedAt,
			&b.Article.ID, &b.Article.Title, &b.Article.Content, &b.Article.Image, &b.Article.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookmarks: %w", err)
	}
	return bookmarks, nil
}

// FindByUserAndTitle はユーザーのブックマークのうち記事タイトルが一致するものを取得する。
func (r *PostgresBookmarkRepo) FindByUserAndTitle(ctx context.Context, userID, title string) (*model.Bookmark, error) {
	b := &model.Bookmark{}
	err := r.db.QueryRowContext(ctx,
		`SELECT b.id, b.user_id, b.article_id, b.created_at
		 FROM bookmarks b
		 INNER JOIN articles a ON a.id = b.article_id
		 WHERE b.user_id = $1 AND a.title = $2`,
		userID, title,
	).Scan(&b.ID, &b.UserID, &b.ArticleID, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find bookmark by title: %w", err)
	}
	return b, nil
}

// Create はブックマークを作成する。(user, article)が重複する場合はErrDuplicateを返す。
func (r *PostgresBookmarkRepo) Create(ctx context.Context, bookmark *model.Bookmark) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bookmarks (id, user_id, article_id, created_at) VALUES ($1, $2, $3, $4)`,
		bookmark.ID, bookmark.UserID, bookmark.ArticleID, bookmark.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert bookmark: %w", err)
	}
	return nil
}

// DeleteByIDAndUser はユーザー所有のブックマークを削除する。
// 存在しない場合と他ユーザー所有の場合は区別せずfalseを返す。
func (r *PostgresBookmarkRepo) DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete bookmark: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ BookmarkRepository = (*PostgresBookmarkRepo)(nil)
