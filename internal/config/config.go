package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ニュースプロバイダの種別。
const (
	NewsProviderCryptoPanic = "cryptopanic"
	NewsProviderRSS         = "rss"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Provider
	ProviderTimeout         time.Duration
	ProviderMaxResponseSize int64

	// CoinGecko
	CoinGeckoBaseURL string

	// News
	NewsProvider       string
	NewsLimit          int
	CryptoPanicBaseURL string
	CryptoPanicToken   string
	NewsRSSURL         string

	// OpenRouter
	OpenRouterBaseURL string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterSiteURL string
	OpenRouterAppName string

	// Meme
	MemePoolPath string

	// Rate Limit
	RateLimitGeneral int
	RateLimitAuth    int

	// Cleanup
	InsightRetentionDays int
	CleanupInterval      time.Duration

	// Server
	ServerPort string
	// TrustedProxy が true の場合のみ X-Forwarded-For / X-Real-IP をクライアントIPとして扱う
	TrustedProxy bool
	LogLevel   string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに .env があれば先に読み込むが、既存の環境変数は上書きしない。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	_ = godotenv.Load()

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

	// Optional fields with defaults
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 168*time.Hour)
	cfg.ProviderTimeout = getEnvDuration("PROVIDER_TIMEOUT", 8*time.Second)
	cfg.ProviderMaxResponseSize = getEnvInt64("PROVIDER_MAX_RESPONSE_SIZE", 2097152)
	cfg.CoinGeckoBaseURL = getEnvString("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3")
	cfg.NewsProvider = strings.ToLower(getEnvString("NEWS_PROVIDER", NewsProviderCryptoPanic))
	cfg.NewsLimit = getEnvInt("NEWS_LIMIT", 10)
	cfg.CryptoPanicBaseURL = getEnvString("CRYPTOPANIC_BASE_URL", "https://cryptopanic.com/api/developer/v2/posts/")
	cfg.CryptoPanicToken = os.Getenv("CRYPTOPANIC_TOKEN")
	cfg.NewsRSSURL = getEnvString("NEWS_RSS_URL", "https://www.coindesk.com/arc/outboundfeeds/rss/")
	cfg.OpenRouterBaseURL = getEnvString("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1")
	cfg.OpenRouterAPIKey = os.Getenv("OPENROUTER_API_KEY")
	cfg.OpenRouterModel = getEnvString("OPENROUTER_MODEL", "deepseek/deepseek-r1:free")
	cfg.OpenRouterSiteURL = os.Getenv("OPENROUTER_SITE_URL")
	cfg.OpenRouterAppName = os.Getenv("OPENROUTER_APP_NAME")
	cfg.MemePoolPath = os.Getenv("MEME_POOL_PATH")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitAuth = getEnvInt("RATE_LIMIT_AUTH", 10)
	cfg.InsightRetentionDays = getEnvInt("INSIGHT_RETENTION_DAYS", 90)
	cfg.CleanupInterval = getEnvDuration("CLEANUP_INTERVAL", 24*time.Hour)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.TrustedProxy = getEnvBool("TRUSTED_PROXY", false)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:5173")

	if cfg.NewsProvider != NewsProviderCryptoPanic && cfg.NewsProvider != NewsProviderRSS {
		return nil, fmt.Errorf("unsupported NEWS_PROVIDER: %q", cfg.NewsProvider)
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
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
