package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/cryptodash/internal/auth"
	"github.com/hitoshi/cryptodash/internal/coingecko"
	"github.com/hitoshi/cryptodash/internal/config"
	"github.com/hitoshi/cryptodash/internal/cryptopanic"
	"github.com/hitoshi/cryptodash/internal/dashboard"
	"github.com/hitoshi/cryptodash/internal/database"
	"github.com/hitoshi/cryptodash/internal/handler"
	"github.com/hitoshi/cryptodash/internal/insight"
	"github.com/hitoshi/cryptodash/internal/logger"
	"github.com/hitoshi/cryptodash/internal/meme"
	"github.com/hitoshi/cryptodash/internal/metrics"
	"github.com/hitoshi/cryptodash/internal/middleware"
	"github.com/hitoshi/cryptodash/internal/openrouter"
	"github.com/hitoshi/cryptodash/internal/preference"
	"github.com/hitoshi/cryptodash/internal/provider"
	"github.com/hitoshi/cryptodash/internal/repository"
	"github.com/hitoshi/cryptodash/internal/rssnews"
	"github.com/hitoshi/cryptodash/internal/security"
	"github.com/hitoshi/cryptodash/internal/user"
	"github.com/hitoshi/cryptodash/internal/vote"
	"github.com/hitoshi/cryptodash/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, os.Getenv("LOG_LEVEL"))

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再構成する
	logger.SetupDefault(w, cfg.LogLevel)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	if cmd == CommandHelp {
		_, err := io.WriteString(w, Usage)
		return err
	}

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("news_provider", cfg.NewsProvider),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// openDB はDB接続を開き、疎通を確認する。
func openDB(databaseURL string) (*sql.DB, error) {
	db, err := database.Open(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := openDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established")

	// 2. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 3. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.RateLimiterConfigPerMinute(cfg.RateLimitGeneral, cfg.RateLimitAuth),
	)
	defer rateLimiter.Stop()

	deps, err := buildRouterDeps(cfg, db, collector, slog.Default())
	if err != nil {
		return err
	}
	deps.RateLimiter = rateLimiter
	deps.MetricsHandler = metrics.Handler(registry)

	router := handler.NewRouter(deps)

	// 4. HTTPサーバーの起動
	// WriteTimeoutはプロバイダタイムアウトより長くとる
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ProviderTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// buildRouterDeps はリポジトリ・外部プロバイダ・ドメインサービスを組み立て、
// ルーターの依存関係を返す。RateLimiterとMetricsHandlerは呼び出し側で設定する。
func buildRouterDeps(cfg *config.Config, db *sql.DB, mc metrics.MetricsCollector, log *slog.Logger) (*handler.RouterDeps, error) {
	// 1. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	prefRepo := repository.NewPostgresPreferenceRepo(db)
	voteRepo := repository.NewPostgresVoteRepo(db)
	insightRepo := repository.NewPostgresInsightRepo(db)

	// 2. セキュリティサービスの初期化
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewTextSanitizer()
	httpClient := ssrfGuard.NewSafeClient(cfg.ProviderTimeout)

	newCaller := func(name string) *provider.Caller {
		return provider.NewCaller(name, httpClient, log, mc, cfg.ProviderMaxResponseSize)
	}

	// 3. 外部プロバイダの初期化
	prices := coingecko.NewClient(newCaller(coingecko.ProviderName), cfg.CoinGeckoBaseURL)
	news := buildNewsProvider(cfg, newCaller, sanitizer)
	generator := openrouter.NewClient(newCaller(openrouter.ProviderName), openrouter.Config{
		BaseURL: cfg.OpenRouterBaseURL,
		APIKey:  cfg.OpenRouterAPIKey,
		Model:   cfg.OpenRouterModel,
		SiteURL: cfg.OpenRouterSiteURL,
		AppName: cfg.OpenRouterAppName,
	})
	if cfg.OpenRouterAPIKey == "" {
		log.Warn("OPENROUTER_API_KEY が未設定のため、インサイトはプレースホルダーを返します")
	}

	memePool, err := buildMemePool(cfg, ssrfGuard, log)
	if err != nil {
		return nil, err
	}

	// 4. ドメインサービスの初期化
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := auth.NewService(userRepo, tokens, auth.ServiceConfig{})
	userService := user.NewService(userRepo, prefRepo, voteRepo, insightRepo)
	prefService := preference.NewService(prefRepo)
	voteService := vote.NewService(voteRepo, mc)
	insightService := insight.NewService(insightRepo, generator, sanitizer, mc, log)

	aggregator := dashboard.NewAggregator(
		prefRepo, prices, news, insightService, memePool, voteService, log,
		dashboard.Config{
			ProviderTimeout: cfg.ProviderTimeout,
			NewsLimit:       cfg.NewsLimit,
		},
	)

	// 5. ハンドラーアダプタの構築
	return &handler.RouterDeps{
		TokenVerifier:     authService,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		TrustProxyHeaders: cfg.TrustedProxy,
		Logger:            log,

		AuthService:       handler.NewAuthServiceAdapter(authService),
		UserService:       handler.NewUserServiceAdapter(userService),
		PreferenceService: handler.NewPreferenceServiceAdapter(prefService),
		DashboardService:  handler.NewDashboardServiceAdapter(aggregator),
		VoteService:       handler.NewVoteServiceAdapter(voteService),

		DB: db,
	}, nil
}

// newsSanitizer はニュースプロバイダが必要とするサニタイザ。
type newsSanitizer interface {
	Plain(raw string) string
}

// buildNewsProvider は設定に応じたニュースプロバイダを返す。
func buildNewsProvider(cfg *config.Config, newCaller func(name string) *provider.Caller, sanitizer newsSanitizer) dashboard.NewsProvider {
	if cfg.NewsProvider == config.NewsProviderRSS {
		return rssnews.NewClient(newCaller(rssnews.ProviderName), sanitizer, cfg.NewsRSSURL)
	}
	if cfg.CryptoPanicToken == "" {
		slog.Warn("CRYPTOPANIC_TOKEN が未設定のため、ニュースは空になります")
	}
	return cryptopanic.NewClient(newCaller(cryptopanic.ProviderName), sanitizer, cfg.CryptoPanicBaseURL, cfg.CryptoPanicToken)
}

// buildMemePool はミームプールを構築する。MEME_POOL_PATHが未設定の場合は組み込みプールを使う。
func buildMemePool(cfg *config.Config, validator meme.ImageURLValidator, log *slog.Logger) (*meme.Pool, error) {
	if cfg.MemePoolPath == "" {
		return meme.NewPool(nil), nil
	}
	items, err := meme.LoadFile(cfg.MemePoolPath, validator, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load meme pool: %w", err)
	}
	log.Info("meme pool loaded",
		slog.String("path", cfg.MemePoolPath),
		slog.Int("count", len(items)),
	)
	return meme.NewPool(items), nil
}

// runWorker はワーカーモードで起動する。
// DB接続を開き、インサイトのクリーンアップジョブを定期実行する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := openDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established (worker)")

	// 2. クリーンアップジョブの初期化
	cleanupJob := cleanup.NewCleanupJob(repository.NewPostgresInsightRepo(db), slog.Default())
	if cfg.InsightRetentionDays > 0 {
		cleanupJob.RetentionDays = cfg.InsightRetentionDays
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("cleanup_interval", cfg.CleanupInterval),
		slog.Int("retention_days", cleanupJob.RetentionDays),
	)

	// クリーンアップジョブをメインgoroutineで実行（ブロッキング）
	cleanupJob.RunEvery(ctx, cfg.CleanupInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
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
