package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/newsman/internal/model"
)

// Cache はカテゴリ別のマージ済み記事を保持する。
type Cache interface {
	Get(ctx context.Context, category string) ([]model.NormalizedArticle, bool, error)
	Set(ctx context.Context, category string, articles []model.NormalizedArticle, ttl time.Duration) error
}

const cacheKeyPrefix = "newsman:news:"

// RedisCache はRedisに記事リストをJSONで保存するCache実装。
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache はREDIS_URL形式のURLから接続し、疎通を確認する。
func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func cacheKey(category string) string {
	if category == "" {
		category = "general"
	}
	return cacheKeyPrefix + category
}

// Get はキャッシュ済みの記事を返す。未キャッシュの場合はfalseを返す。
func (c *RedisCache) Get(ctx context.Context, category string) ([]model.NormalizedArticle, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(category)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get news from Redis: %w", err)
	}

	var articles []model.NormalizedArticle
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached news: %w", err)
	}
	return articles, true, nil
}

// Set は記事をTTL付きで保存する。
func (c *RedisCache) Set(ctx context.Context, category string, articles []model.NormalizedArticle, ttl time.Duration) error {
	data, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("failed to encode news: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(category), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store news in Redis: %w", err)
	}
	return nil
}

// Ping はRedisへの疎通を確認する。
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close は接続を閉じる。
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)
