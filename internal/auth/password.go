package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost はパスワードハッシュのコスト。
const bcryptCost = 10

// HashPassword はパスワードをbcryptでハッシュ化する。
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword はパスワードがハッシュと一致するかを返す。
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
