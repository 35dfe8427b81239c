package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicate は一意制約違反を表す。
// 同時リクエストによる二重登録はこのエラーとして呼び出し元に返る。
var ErrDuplicate = errors.New("duplicate key")

// pgUniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const pgUniqueViolation = "23505"

// isUniqueViolation はエラーが一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	return false
}

// nullString は空文字列をNULLとして扱うsql.NullStringを生成する。
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullStringValue はsql.NullStringから文字列を取得する。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
