// Package cryptopanic はCryptoPanicのニュースAPIクライアントを提供する。
package cryptopanic

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/hitoshi/cryptodash/internal/model"
	"github.com/hitoshi/cryptodash/internal/provider"
)

const (
	// ProviderName はメトリクスとログで使うプロバイダ名。
	ProviderName = "cryptopanic"
	// DefaultBaseURL はCryptoPanic投稿APIのURL。
	DefaultBaseURL = "https://cryptopanic.com/api/developer/v2/posts/"
	// maxCurrencies は1リクエストで指定するティッカーの上限。
	maxCurrencies = 50
	// untitled はタイトルが無い投稿の表示名。
	untitled = "Untitled"
)

// coinSymbols はCoinGeckoのコインIDからCryptoPanicのティッカーへの対応表。
var coinSymbols = map[string]string{
	"bitcoin":   "BTC",
	"ethereum":  "ETH",
	"solana":    "SOL",
	"ripple":    "XRP",
	"dogecoin":  "DOGE",
	"cardano":   "ADA",
	"polkadot":  "DOT",
	"litecoin":  "LTC",
	"chainlink": "LINK",
	"avalanche": "AVAX",
	"tron":      "TRX",
	"toncoin":   "TON",
}

// Sanitizer は外部テキストのHTML除去を行う。
type Sanitizer interface {
	Plain(raw string) string
}

// Client はCryptoPanicの投稿一覧を取得するクライアント。
type Client struct {
	caller    *provider.Caller
	sanitizer Sanitizer
	baseURL   string // テスト用に差し替え可能
	token     string
	now       func() time.Time
}

// NewClient はClientの新しいインスタンスを生成する。
// tokenが空の場合、FetchNewsは常に空リストを返す。
func NewClient(caller *provider.Caller, sanitizer Sanitizer, baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		caller:    caller,
		sanitizer: sanitizer,
		baseURL:   baseURL,
		token:     token,
		now:       time.Now,
	}
}

// FetchNews は対象コインに関する公開ニュースを最大limit件取得する。
func (c *Client) FetchNews(ctx context.Context, coinIDs []string, limit int) ([]model.NewsItem, error) {
	if c.token == "" {
		c.caller.Logger().Debug("CryptoPanicのトークンが未設定のためニュースを取得しません")
		return []model.NewsItem{}, nil
	}

	reqURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}
	q := reqURL.Query()
	q.Set("auth_token", c.token)
	if symbols := Symbols(coinIDs); len(symbols) > 0 {
		q.Set("currencies", strings.Join(symbols, ","))
	}
	q.Set("public", "true")
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.caller.Do(req)
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		err := fmt.Errorf("不正なJSONです")
		c.caller.ParseFailed(err)
		return nil, err
	}
	results := gjson.GetBytes(body, "results")
	if !results.IsArray() {
		err := fmt.Errorf("resultsが配列ではありません")
		c.caller.ParseFailed(err)
		return nil, err
	}

	items := make([]model.NewsItem, 0, max(limit, 0))
	for _, post := range results.Array() {
		if limit > 0 && len(items) >= limit {
			break
		}
		item, ok := c.toNewsItem(post)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	c.caller.Succeeded()
	return items, nil
}

// toNewsItem は投稿をNewsItemに変換する。識別子を導出できない投稿はfalseを返す。
func (c *Client) toNewsItem(post gjson.Result) (model.NewsItem, bool) {
	id, ok := postID(post)
	if !ok {
		return model.NewsItem{}, false
	}

	title := c.sanitizer.Plain(post.Get("title").String())
	if title == "" {
		title = untitled
	}

	link := firstNonEmpty(post.Get("url").String(), post.Get("original_url").String())
	source := firstNonEmpty(post.Get("source.title").String(), post.Get("source.domain").String())

	return model.NewsItem{
		ItemID:      model.ItemPrefixNews + id,
		Title:       title,
		URL:         link,
		Source:      source,
		PublishedAt: c.publishedAt(post),
		Snippet:     c.sanitizer.Plain(post.Get("description").String()),
	}, true
}

// postID は id、slug の順に投稿の識別子を返す。
// どちらも無い場合はURLまたはタイトルから安定したIDを導出する。
func postID(post gjson.Result) (string, bool) {
	if id := firstNonEmpty(post.Get("id").String(), post.Get("slug").String()); id != "" {
		return id, true
	}
	key := firstNonEmpty(
		post.Get("url").String(),
		post.Get("original_url").String(),
		strings.TrimSpace(post.Get("title").String()),
	)
	if key == "" {
		return "", false
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String(), true
}

// publishedAt は published_at、created_at、現在時刻の順に採用しRFC3339で返す。
func (c *Client) publishedAt(post gjson.Result) string {
	raw := firstNonEmpty(post.Get("published_at").String(), post.Get("created_at").String())
	if raw == "" {
		return c.now().UTC().Format(time.RFC3339)
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC().Format(time.RFC3339)
	}
	return raw
}

// Symbols はコインIDを重複なしのティッカー一覧に変換する。
// 対応表に無いIDは無視し、最大50件までに切り詰める。
func Symbols(coinIDs []string) []string {
	seen := make(map[string]struct{})
	symbols := make([]string, 0, len(coinIDs))
	for _, id := range coinIDs {
		sym, ok := coinSymbols[strings.ToLower(strings.TrimSpace(id))]
		if !ok {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		symbols = append(symbols, sym)
		if len(symbols) == maxCurrencies {
			break
		}
	}
	return symbols
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
