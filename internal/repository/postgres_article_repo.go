package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/newsman/internal/model"
)

// PostgresArticleRepo はPostgreSQLを使用した記事リポジトリ。
type PostgresArticleRepo struct {
	db *sql.DB
}

// NewPostgresArticleRepo はPostgresArticleRepoを生成する。
func NewPostgresArticleRepo(db *sql.DB) *PostgresArticleRepo {
	return &PostgresArticleRepo{db: db}
}

const articleColumns = `id, title, content, image, created_at`

func (r *PostgresArticleRepo) findOne(ctx context.Context, query string, args ...any) (*model.Article, error) {
	a := &model.Article{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&a.ID, &a.Title, &a.Content, &a.Image, &a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FindByTitle はタイトル完全一致で記事を検索する。見つからない場合はnilを返す。
func (r *PostgresArticleRepo) FindByTitle(ctx context.Context, title string) (*model.Article, error) {
	a, err := r.findOne(ctx, `SELECT `+articleColumns+` FROM articles WHERE title = $1`, title)
	if err != nil {
		return nil, fmt.Errorf("failed to find article by title: %w", err)
	}
	return a, nil
}

// FindByTitleContentImage は(title, content, image)の組で記事を検索する。
func (r *PostgresArticleRepo) FindByTitleContentImage(ctx context.Context, title, content, image string) (*model.Article, error) {
	a, err := r.findOne(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE title = $1 AND content = $2 AND image = $3`,
		title, content, image,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find article by tuple: %w", err)
	}
	return a, nil
}

// InsertIfAbsent は同一タイトルの記事が無い場合のみ挿入し、保存済みの記事を返す。
// 同時挿入と競合した場合は先に挿入された記事を返す。
func (r *PostgresArticleRepo) InsertIfAbsent(ctx context.Context, article *model.Article) (*model.Article, bool, error) {
	inserted, err := r.findOne(ctx,
		`INSERT INTO articles (id, title, content, image, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (title) DO NOTHING
		 RETURNING `+articleColumns,
		article.ID, article.Title, article.Content, article.Image, article.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert article: %w", err)
	}
	if inserted != nil {
		return inserted, true, nil
	}

	existing, err := r.FindByTitle(ctx, article.Title)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("article %q vanished after conflict", article.Title)
	}
	return existing, false, nil
}

// compile-time interface check
var _ ArticleRepository = (*PostgresArticleRepo)(nil)
