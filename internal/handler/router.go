package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/newsman/internal/i18n"
	"github.com/hitoshi/newsman/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	HTTPRecorder      middleware.HTTPRecorder
	TokenVerifier     middleware.TokenVerifier
	Catalog           *i18n.Catalog
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// アカウント
	Accounts       AccountService
	UploadMaxBytes int64

	// コレクション
	Bookmarks BookmarkService
	Likes     LikeService
	History   HistoryService

	// ニュース
	News NewsService

	// 運用
	HealthChecks   []HealthCheck
	HealthTimeout  time.Duration
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → RealIP → Logging → Recovery → SecurityHeaders → CORS → Locale
//
// 認証が必要なルートではさらに BearerAuth → RateLimit(General) を通る。
// /signup と /login はIP単位のログイン用レート制限を使う。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	catalog := deps.Catalog
	if catalog == nil {
		catalog = i18n.DefaultCatalog()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewLoggingMiddleware(logger, deps.HTTPRecorder))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLocaleMiddleware(catalog))

	accountHandler := NewAccountHandler(deps.Accounts, deps.UploadMaxBytes)
	collectionHandler := NewCollectionHandler(deps.Bookmarks, deps.Likes, deps.History)
	newsHandler := NewNewsHandler(deps.News)

	// --- 認証不要のルート ---
	r.Get("/health", NewHealthHandler(deps.HealthChecks, deps.HealthTimeout))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.LoginMiddleware())
		r.Post("/signup", accountHandler.Signup)
		r.Post("/login", accountHandler.Login)
	})

	r.With(deps.RateLimiter.GeneralMiddleware()).Get("/api/news", newsHandler.Latest)

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewBearerAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Post("/change-password", accountHandler.ChangePassword)
		r.Get("/profile", accountHandler.Profile)
		r.Post("/upload-profile", accountHandler.UploadProfile)

		r.Get("/api/bookmarks/user", collectionHandler.ListBookmarks)
		r.Post("/api/bookmarks", collectionHandler.AddBookmark)
		r.Delete("/api/bookmarks/{id}", collectionHandler.RemoveBookmark)

		r.Get("/api/liked-articles", collectionHandler.ListLikedArticles)
		r.Post("/api/like-article", collectionHandler.ToggleLike)

		r.Get("/api/reading-history", collectionHandler.ListHistory)
		r.Post("/api/reading-history", collectionHandler.RecordHistory)
	})

	return r
}
