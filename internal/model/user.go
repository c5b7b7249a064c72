// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュで、APIレスポンスには含めない。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Preference はユーザーのダッシュボード設定（オンボーディング結果）を表す。
// レコードが存在すること自体がオンボーディング完了を意味する。
type Preference struct {
	UserID       string
	Assets       []string // CoinGeckoのコインID（例: "bitcoin"）
	InvestorType string
	ContentTypes []string // "prices", "news", "insight"(別名 "ai"), "meme"
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
