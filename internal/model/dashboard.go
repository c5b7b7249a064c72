package model

// 各セクションのアイテムIDプレフィックス。
const (
	ItemPrefixPrice   = "price:"
	ItemPrefixNews    = "news:"
	ItemPrefixInsight = "insight:"
	ItemPrefixMeme    = "meme:"
)

// PriceItem はコイン価格1件を表す。USDはプロバイダーが値を返さなかった場合nil。
type PriceItem struct {
	ItemID string
	CoinID string
	USD    *float64
	MyVote *VoteValue
}

// NewsItem はニュース見出し1件を表す。
type NewsItem struct {
	ItemID      string
	Title       string
	URL         string
	Source      string
	PublishedAt string // RFC3339
	Snippet     string
	MyVote      *VoteValue
}

// InsightItem は日次AIインサイトを表す。
type InsightItem struct {
	ItemID string
	Date   string
	Text   string
	MyVote *VoteValue
}

// MemeItem はミーム1件を表す。
type MemeItem struct {
	ItemID   string
	Title    string
	ImageURL string
	MyVote   *VoteValue
}

// Sections はダッシュボードの集約結果。
// 無効化・取得失敗のセクションは空スライスまたはnilとなり、キー自体は省略しない。
type Sections struct {
	News    []NewsItem
	Prices  []PriceItem
	Insight *InsightItem
	Meme    *MemeItem
}
