package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL はアクセストークンの有効期間。リフレッシュトークンは発行しない。
const DefaultTokenTTL = time.Hour

var (
	// ErrSecretRequired は署名鍵が未設定の場合に返る。
	ErrSecretRequired = errors.New("token signing secret is not configured")
	// ErrInvalidToken は署名不正・期限切れ・形式不正のトークンを表す。
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims はアクセストークンのペイロード。
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenManager はHS256署名のアクセストークンを発行・検証する。
// サーバー側にセッション状態は持たない。
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager はTokenManagerを生成する。
// secretが空の場合は既定値にフォールバックせずErrSecretRequiredを返す。
func NewTokenManager(secret string, ttl time.Duration, now func() time.Time) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrSecretRequired
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: now}, nil
}

// Issue はユーザーIDに紐づくアクセストークンを発行する。
func (m *TokenManager) Issue(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("issue token: empty user id")
	}
	now := m.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、紐づくユーザーIDを返す。
// HMAC以外のアルゴリズム、期限切れ、userId欠落はすべてErrInvalidTokenとなる。
func (m *TokenManager) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// TTL はトークンの有効期間を返す。
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}
