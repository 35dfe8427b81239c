package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hitoshi/newsman/internal/article"
	"github.com/hitoshi/newsman/internal/auth"
	"github.com/hitoshi/newsman/internal/avatar"
	"github.com/hitoshi/newsman/internal/collection"
	"github.com/hitoshi/newsman/internal/config"
	"github.com/hitoshi/newsman/internal/database"
	"github.com/hitoshi/newsman/internal/handler"
	"github.com/hitoshi/newsman/internal/i18n"
	"github.com/hitoshi/newsman/internal/logger"
	"github.com/hitoshi/newsman/internal/metrics"
	"github.com/hitoshi/newsman/internal/middleware"
	"github.com/hitoshi/newsman/internal/news"
	"github.com/hitoshi/newsman/internal/repository"
	"github.com/hitoshi/newsman/internal/security"
	"github.com/hitoshi/newsman/internal/worker/cleanup"
	"github.com/hitoshi/newsman/internal/worker/prefetch"
)

const (
	shutdownTimeout = 30 * time.Second
	healthTimeout   = 3 * time.Second
)

// Init はアプリケーションの初期化を行う。
// .envファイルを読み込み、JSON構造化ログをセットアップしてから環境変数のConfigを読み込む。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer, envFile string) (*config.Config, error) {
	// 1. .envの読み込み（既存の環境変数は上書きしない）
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	// 2. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, os.Getenv("LOG_LEVEL"))

	// 3. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(w)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// runCommand は設定を読み込んで指定モードを実行する。
func runCommand(cmd *cobra.Command, w io.Writer, opts *rootOptions, mode Command) error {
	cfg, err := Init(w, opts.envFile)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(mode)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch mode {
	case CommandWorker:
		return runWorker(ctx, cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(ctx, cfg)
	}
}

// newsStack はAPIサーバーとワーカーが共有するニュース取得の構成要素。
type newsStack struct {
	service *news.Service
	cache   *news.RedisCache
}

func (s *newsStack) Close() {
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			slog.Warn("failed to close news cache", slog.String("error", err.Error()))
		}
	}
}

// buildNewsStack はプロバイダカタログからAggregatorを組み立て、
// REDIS_URLが設定されていればキャッシュを接続する。
func buildNewsStack(ctx context.Context, cfg *config.Config, collector *metrics.Collector) (*newsStack, error) {
	catalog, err := config.LoadProviderCatalog(cfg.NewsProvidersFile)
	if err != nil {
		return nil, err
	}

	guard := security.NewOutboundGuard()
	sources, err := news.BuildSources(
		catalog,
		news.Credentials{
			GNewsAPIKey:      cfg.GNewsAPIKey,
			MediastackAPIKey: cfg.MediastackAPIKey,
			RapidAPIKey:      cfg.RapidAPIKey,
		},
		cfg.ProviderTimeout,
		guard.NewClient(cfg.ProviderTimeout),
		guard,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build news sources: %w", err)
	}
	aggregator := news.NewAggregator(sources, collector, slog.Default())
	if names := aggregator.ProviderNames(); len(names) == 0 {
		slog.Warn("no news provider is configured; headlines will always be empty")
	} else {
		slog.Info("news providers enabled", slog.Any("providers", names))
	}

	stack := &newsStack{}
	var cache news.Cache
	if cfg.RedisURL != "" {
		rc, err := news.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect news cache: %w", err)
		}
		stack.cache = rc
		cache = rc
		slog.Info("news cache enabled", slog.Duration("ttl", cfg.NewsCacheTTL))
	}

	stack.service = news.NewService(aggregator, cache, cfg.NewsCacheTTL)
	return stack, nil
}

// buildAvatarStore はS3_BUCKETが設定されていればS3互換ストレージを、
// それ以外ではデータURIをそのまま保存するストアを返す。
func buildAvatarStore(ctx context.Context, cfg *config.Config) (avatar.Store, error) {
	if !cfg.S3Enabled() {
		return avatar.InlineStore{}, nil
	}
	store, err := avatar.NewS3Store(ctx, avatar.S3Config{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize profile image storage: %w", err)
	}
	return store, nil
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされる（SIGINT/SIGTERM）とグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL, database.DefaultPoolConfig())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	articleRepo := repository.NewPostgresArticleRepo(db)
	bookmarkRepo := repository.NewPostgresBookmarkRepo(db)
	likeRepo := repository.NewPostgresLikeRepo(db)
	historyRepo := repository.NewPostgresHistoryRepo(db)

	// 3. メトリクス
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. ドメインサービスの初期化
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}

	store, err := buildAvatarStore(ctx, cfg)
	if err != nil {
		return err
	}
	accounts := auth.NewService(userRepo, tokens, avatar.NewPipeline(store, cfg.ProfileImageMaxBytes), nil)

	articles := article.NewService(articleRepo, nil)
	bookmarks := collection.NewBookmarkService(articles, bookmarkRepo, nil)
	likes := collection.NewLikeService(articles, likeRepo, nil)
	history := collection.NewHistoryService(historyRepo, cfg.HistoryTTL, nil)

	headlines, err := buildNewsStack(ctx, cfg, collector)
	if err != nil {
		return err
	}
	defer headlines.Close()

	// 5. ヘルスチェック
	checks := []handler.HealthCheck{{Name: "database", Check: db.PingContext}}
	if headlines.cache != nil {
		checks = append(checks, handler.HealthCheck{Name: "cache", Check: headlines.cache.Ping})
	}

	// 6. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.RateLimiterConfigPerMinute(cfg.RateLimitGeneral, cfg.RateLimitLogin),
	)
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		HTTPRecorder:      collector,
		TokenVerifier:     tokens,
		Catalog:           i18n.DefaultCatalog(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,

		Accounts:       accounts,
		UploadMaxBytes: cfg.ProfileImageMaxBytes,

		Bookmarks: bookmarks,
		Likes:     likes,
		History:   history,

		News: headlines.service,

		HealthChecks:   checks,
		HealthTimeout:  healthTimeout,
		MetricsHandler: metrics.Handler(registry),
	})

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// ニュースのプリフェッチと期限切れ閲覧履歴の削除を定期実行する。
// ctxがキャンセルされるとシャットダウンする。
func runWorker(ctx context.Context, cfg *config.Config) error {
	// 1. DB接続
	// ワーカーの接続はクリーンアップジョブだけが使う
	db, err := database.Open(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. メトリクス（ワーカーはエンドポイントを公開しないがRecorderとして使う）
	collector := metrics.NewCollector(prometheus.NewRegistry())

	// 3. ニュース取得
	headlines, err := buildNewsStack(ctx, cfg, collector)
	if err != nil {
		return err
	}
	defer headlines.Close()

	if headlines.cache == nil {
		slog.Warn("REDIS_URL is not set; prefetched headlines are not shared with the API server")
	}

	scheduler := prefetch.NewScheduler(
		headlines.service, collector, slog.Default(), news.PrefetchCategories(), cfg.PrefetchMaxConcurrent,
	)

	// 4. クリーンアップジョブ
	cleanupJob := cleanup.NewHistoryCleanupJob(db, slog.Default(), collector)

	slog.Info("worker starting",
		slog.Duration("prefetch_interval", cfg.PrefetchInterval),
		slog.Int("max_concurrent", cfg.PrefetchMaxConcurrent),
		slog.Duration("cleanup_interval", cfg.CleanupInterval),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		cleanupJob.Start(ctx, cfg.CleanupInterval)
	}()

	// プリフェッチスケジューラをメインgoroutineで実行（ブロッキング）
	scheduler.Start(ctx, cfg.PrefetchInterval)
	<-done

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully", slog.Uint64("version", uint64(version)))
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// /health エンドポイントにHTTPリクエストを送り、200以外ならエラーを返す。
func runHealthcheck(ctx context.Context, port string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	url := fmt.Sprintf("http://localhost:%s/health", port)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
