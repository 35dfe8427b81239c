// Package database はデータベース接続とマイグレーション管理を提供する。
package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// users, articles, bookmarks, likes, reading_history の各テーブルを定義する。
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrDirtySchema は前回のマイグレーションが途中で失敗し、手動での復旧が必要な状態を表す。
var ErrDirtySchema = errors.New("database schema is dirty")

// NewMigrator は埋め込みSQLを読み込むmigrateインスタンスを生成する。
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, nil
}

// RunMigrations は未適用のマイグレーションをすべて適用し、適用後のスキーマバージョンを返す。
// すでに最新の場合はエラーなしで現在のバージョンを返す。
// dirty状態のスキーマには何もせずErrDirtySchemaを返す。
func RunMigrations(databaseURL string) (uint, error) {
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return 0, err
	}
	defer m.Close()

	if _, dirty, err := m.Version(); err == nil && dirty {
		return 0, ErrDirtySchema
	} else if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
