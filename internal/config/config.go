package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// minJWTSecretLength はHS256署名鍵として受け入れる最小バイト数。
const minJWTSecretLength = 32

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// News
	NewsProvidersFile string
	ProviderTimeout   time.Duration
	GNewsAPIKey       string
	MediastackAPIKey  string
	RapidAPIKey       string
	NewsCacheTTL      time.Duration
	RedisURL          string

	// Worker
	PrefetchInterval      time.Duration
	PrefetchMaxConcurrent int
	CleanupInterval       time.Duration

	// Collections
	HistoryTTL time.Duration

	// Rate Limit
	RateLimitGeneral int
	RateLimitLogin   int

	// Profile image
	ProfileImageMaxBytes int64
	S3Bucket             string
	S3Region             string
	S3Endpoint           string
	S3AccessKeyID        string
	S3SecretAccessKey    string
	S3PublicBaseURL      string

	// Logging
	LogLevel string

	// Server
	ServerPort string
	BaseURL    string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
// JWT_SECRETが未設定または短すぎる場合も起動を拒否する。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	if len(cfg.JWTSecret) < minJWTSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d bytes", minJWTSecretLength)
	}

	// Optional fields with defaults
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", time.Hour)
	cfg.NewsProvidersFile = getEnvString("NEWS_PROVIDERS_FILE", "")
	cfg.ProviderTimeout = getEnvDuration("PROVIDER_TIMEOUT", 8*time.Second)
	cfg.GNewsAPIKey = getEnvString("GNEWS_API_KEY", "")
	cfg.MediastackAPIKey = getEnvString("MEDIASTACK_API_KEY", "")
	cfg.RapidAPIKey = getEnvString("RAPIDAPI_KEY", "")
	cfg.NewsCacheTTL = getEnvDuration("NEWS_CACHE_TTL", 10*time.Minute)
	cfg.RedisURL = getEnvString("REDIS_URL", "")
	cfg.PrefetchInterval = getEnvDuration("PREFETCH_INTERVAL", 10*time.Minute)
	cfg.PrefetchMaxConcurrent = getEnvInt("PREFETCH_MAX_CONCURRENT", 2)
	cfg.CleanupInterval = getEnvDuration("CLEANUP_INTERVAL", time.Hour)
	cfg.HistoryTTL = getEnvDuration("HISTORY_TTL", 30*24*time.Hour)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitLogin = getEnvInt("RATE_LIMIT_LOGIN", 10)
	cfg.ProfileImageMaxBytes = getEnvInt64("PROFILE_IMAGE_MAX_BYTES", 5242880)
	cfg.S3Bucket = getEnvString("S3_BUCKET", "")
	cfg.S3Region = getEnvString("S3_REGION", "us-east-1")
	cfg.S3Endpoint = getEnvString("S3_ENDPOINT", "")
	cfg.S3AccessKeyID = getEnvString("S3_ACCESS_KEY_ID", "")
	cfg.S3SecretAccessKey = getEnvString("S3_SECRET_ACCESS_KEY", "")
	cfg.S3PublicBaseURL = getEnvString("S3_PUBLIC_BASE_URL", "")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:"+cfg.ServerPort)
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "*")

	return cfg, nil
}

// S3Enabled はプロフィール画像をオブジェクトストレージに保存するかを返す。
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
