// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュで、平文パスワードは保持しない。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	ProfileImage string // data URIまたはオブジェクトストレージのURL
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile はGET /profileで返す公開可能なユーザー情報。
type Profile struct {
	Name         string
	Email        string
	ProfileImage string
}
