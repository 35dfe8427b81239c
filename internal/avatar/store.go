package avatar

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Store は加工済み画像を保存し、参照用URLを返す。
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// InlineStore は画像をdata URIとしてそのまま返す。
// オブジェクトストレージ未設定時に使用し、URLはusersテーブルに格納される。
type InlineStore struct{}

// Put はdata URIを返す。
func (InlineStore) Put(_ context.Context, _ string, data []byte, contentType string) (string, error) {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// objectPutter はs3.ClientのPutObjectのみを抜き出したインターフェース。
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config はS3互換ストレージの接続設定。
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // MinIOなどS3互換ストレージのURL。空ならAWS
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string // 公開URLのベース。空ならエンドポイントから組み立てる
}

// S3Store はS3互換ストレージに画像を保存する。
type S3Store struct {
	client  objectPutter
	bucket  string
	baseURL string
}

// NewS3Store はS3クライアントを初期化してS3Storeを生成する。
// アクセスキーが未指定の場合はAWS SDKの既定の認証情報チェーンを使う。
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is not configured")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	slog.Info("avatar store initialized", slog.String("bucket", cfg.Bucket))
	return newS3Store(client, cfg), nil
}

func newS3Store(client objectPutter, cfg S3Config) *S3Store {
	base := cfg.PublicBaseURL
	if base == "" {
		if cfg.Endpoint != "" {
			base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return &S3Store{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(base, "/"),
	}
}

// Put はオブジェクトをアップロードし、公開URLを返す。
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

var (
	_ Store = InlineStore{}
	_ Store = (*S3Store)(nil)
)
