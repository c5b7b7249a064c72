// Package rssnews はRSS/Atomフィードをニュースプロバイダとして利用するクライアントを提供する。
// CryptoPanicのトークンを用意できない環境向けの代替実装。
package rssnews

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/cryptodash/internal/model"
	"github.com/hitoshi/cryptodash/internal/provider"
)

const (
	// ProviderName はメトリクスとログで使うプロバイダ名。
	ProviderName = "rss"
	// DefaultFeedURL は既定のニュースフィード。
	DefaultFeedURL = "https://www.coindesk.com/arc/outboundfeeds/rss/"
)

// Sanitizer は外部テキストのHTML除去を行う。
type Sanitizer interface {
	Plain(raw string) string
}

// Client はRSSフィードを取得してニュース見出しに変換する。
type Client struct {
	caller    *provider.Caller
	sanitizer Sanitizer
	feedURL   string
	now       func() time.Time
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(caller *provider.Caller, sanitizer Sanitizer, feedURL string) *Client {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	return &Client{
		caller:    caller,
		sanitizer: sanitizer,
		feedURL:   feedURL,
		now:       time.Now,
	}
}

// FetchNews はフィードの先頭から最大limit件のニュースを返す。
// フィードはコインで絞り込めないため、coinIDsは使用しない。
func (c *Client) FetchNews(ctx context.Context, _ []string, limit int) ([]model.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}

	body, err := c.caller.Do(req)
	if err != nil {
		return nil, err
	}

	// gofeedでフィードをパース
	parser := gofeed.NewParser()
	feed, err := parser.ParseString(string(body))
	if err != nil {
		c.caller.ParseFailed(err)
		return nil, fmt.Errorf("フィードのパースに失敗しました: %w", err)
	}

	source := c.sanitizer.Plain(feed.Title)
	items := make([]model.NewsItem, 0, max(limit, 0))
	for _, entry := range feed.Items {
		if limit > 0 && len(items) >= limit {
			break
		}
		if entry == nil {
			continue
		}
		items = append(items, c.toNewsItem(entry, source))
	}

	c.caller.Succeeded()
	return items, nil
}

func (c *Client) toNewsItem(entry *gofeed.Item, source string) model.NewsItem {
	title := c.sanitizer.Plain(entry.Title)
	if title == "" {
		title = "Untitled"
	}

	snippet := entry.Description
	if snippet == "" {
		snippet = entry.Content
	}

	return model.NewsItem{
		ItemID:      model.ItemPrefixNews + entryID(entry),
		Title:       title,
		URL:         entry.Link,
		Source:      source,
		PublishedAt: c.publishedAt(entry),
		Snippet:     c.sanitizer.Plain(snippet),
	}
}

// entryID はGUIDまたはリンクから安定したIDを導出する。
// 同じ記事は取得のたびに同じIDとなり、投票の対象を保てる。
func entryID(entry *gofeed.Item) string {
	key := entry.GUID
	if key == "" {
		key = entry.Link
	}
	if key == "" {
		key = entry.Title
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

func (c *Client) publishedAt(entry *gofeed.Item) string {
	switch {
	case entry.PublishedParsed != nil:
		return entry.PublishedParsed.UTC().Format(time.RFC3339)
	case entry.UpdatedParsed != nil:
		return entry.UpdatedParsed.UTC().Format(time.RFC3339)
	default:
		return c.now().UTC().Format(time.RFC3339)
	}
}
