package model

import "time"

// InsightDateLayout は日次インサイトの日付書式（UTC暦日）。
const InsightDateLayout = "2006-01-02"

// DailyInsight はユーザーごと・暦日ごとに1件生成されるAIインサイト。
// (UserID, Date) で一意で、最初に保存されたテキストが採用される。
type DailyInsight struct {
	ID        string
	UserID    string
	Date      string // YYYY-MM-DD（UTC）
	Text      string
	CreatedAt time.Time

	// Fallback はAIプロバイダー失敗時の代替テキストであることを示す。
	// 代替テキストは永続化されない。
	Fallback bool
}

// InsightPrompt はAIプロバイダへ渡すインサイト生成の入力。
type InsightPrompt struct {
	Assets       []string
	InvestorType string
	ContentTypes []string
	Date         string // YYYY-MM-DD（UTC）
}
