package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/cryptodash/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	// TrustProxyHeaders が true の場合のみ X-Forwarded-For 等でRemoteAddrを書き換える。
	// リバースプロキシ配下以外で有効にするとIP単位のレート制限を回避される。
	TrustProxyHeaders bool
	Logger            *slog.Logger

	// サービス
	AuthService       AuthServiceInterface
	UserService       UserServiceInterface
	PreferenceService PreferenceServiceInterface
	DashboardService  DashboardServiceInterface
	VoteService       VoteServiceInterface

	// 運用
	DB             Pinger
	MetricsHandler http.Handler // nilの場合は/metricsを公開しない
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → RealIP（TrustProxyHeaders時のみ）
//	  公開ルート: /health, /metrics, /api/auth/*（IP単位のレート制限）
//	  保護ルート: Auth(Bearer) → RateLimit(General)
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}

	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService)
	onboardingHandler := NewOnboardingHandler(deps.PreferenceService)
	dashboardHandler := NewDashboardHandler(deps.DashboardService)
	voteHandler := NewVoteHandler(deps.VoteService)

	// --- 認証不要のルート ---
	r.Get("/health", NewHealthHandler(deps.DB))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(deps.RateLimiter.AuthMiddleware())
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
	})

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/me", userHandler.Me)
		r.Delete("/api/users/me", userHandler.Withdraw)

		r.Post("/api/onboarding", onboardingHandler.Save)
		r.Get("/api/onboarding/preferences", onboardingHandler.Get)

		r.Get("/api/dashboard", dashboardHandler.Get)

		r.Post("/api/votes", voteHandler.SetVote)
		r.Delete("/api/votes", voteHandler.ClearVote)
	})

	return r
}
