// Package coingecko はCoinGeckoの簡易価格APIクライアントを提供する。
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hitoshi/cryptodash/internal/model"
	"github.com/hitoshi/cryptodash/internal/provider"
)

const (
	// ProviderName はメトリクスとログで使うプロバイダ名。
	ProviderName = "coingecko"
	// DefaultBaseURL はCoinGecko APIのベースURL。
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
)

// Client はCoinGeckoの /simple/price を呼び出すクライアント。
type Client struct {
	caller  *provider.Caller
	baseURL string // テスト用に差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。baseURLが空の場合は既定値を使う。
func NewClient(caller *provider.Caller, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{caller: caller, baseURL: strings.TrimRight(baseURL, "/")}
}

// FetchPrices は指定コインIDのUSD価格を取得する。
// IDはトリム・小文字化し、空要素は除外する。結果は入力順を保持し、
// 価格が数値で返らなかったコインはUSDがnilとなる。
func (c *Client) FetchPrices(ctx context.Context, coinIDs []string) ([]model.PriceItem, error) {
	ids := normalizeIDs(coinIDs)
	if len(ids) == 0 {
		return []model.PriceItem{}, nil
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")
	reqURL := c.baseURL + "/simple/price?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.caller.Do(req)
	if err != nil {
		return nil, err
	}

	var result map[string]map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		c.caller.ParseFailed(err)
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	items := make([]model.PriceItem, 0, len(ids))
	for _, id := range ids {
		item := model.PriceItem{
			ItemID: model.ItemPrefixPrice + id,
			CoinID: id,
		}
		if quote, ok := result[id]; ok {
			if usd, ok := quote["usd"].(float64); ok {
				v := usd
				item.USD = &v
			}
		}
		items = append(items, item)
	}

	c.caller.Succeeded()
	return items, nil
}

// normalizeIDs は重複を除いたトリム・小文字化済みのIDを入力順で返す。
func normalizeIDs(coinIDs []string) []string {
	seen := make(map[string]struct{}, len(coinIDs))
	ids := make([]string, 0, len(coinIDs))
	for _, raw := range coinIDs {
		id := strings.ToLower(strings.TrimSpace(raw))
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
