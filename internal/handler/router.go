package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/pitchboard/internal/metrics"
	"github.com/hitoshi/pitchboard/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	UserFinder        middleware.UserFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// ヘルスチェック・メトリクス
	HealthChecker HealthChecker
	Environment   string
	Gatherer      prometheus.Gatherer
	Collector     *metrics.Collector

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ピッチ
	PitchService PitchServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → SessionMiddleware → RateLimit
//
// 認証ルート（/auth/*）、/health、/metricsはセッションミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.Collector != nil {
		r.Use(deps.Collector.Middleware())
	}

	var authMetrics AuthMetrics
	if deps.Collector != nil {
		authMetrics = deps.Collector
	}
	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, authMetrics)
	pitchHandler := NewPitchHandler(deps.PitchService)

	// --- 認証不要のルート ---

	r.Get("/health", NewHealthHandler(deps.HealthChecker, deps.Environment))

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		// 全デバイスからのログアウト（プリンシパルの解決が必要）
		r.With(middleware.NewSessionMiddleware(deps.SessionFinder, deps.UserFinder)).
			Post("/logout-all", authHandler.LogoutAll)
		r.Get("/me", authHandler.Me)
		r.Get("/status", authHandler.Status)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder, deps.UserFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// ピッチ管理
		r.Route("/api/pitches", func(r chi.Router) {
			r.Get("/", pitchHandler.ListPitches)
			// POST /api/pitches - ピッチ作成（作成専用レート制限を追加）
			r.With(deps.RateLimiter.PitchCreationMiddleware()).Post("/", pitchHandler.CreatePitch)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", pitchHandler.GetPitch)
				r.Put("/", pitchHandler.UpdatePitch)
				r.Delete("/", pitchHandler.DeletePitch)
			})
		})
	})

	return r
}
