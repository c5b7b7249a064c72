// Package dashboard はユーザーごとのダッシュボードを組み立てる。
// 有効なセクションのプロバイダを並行に呼び出し、結果に本人の投票を重ねる。
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/cryptodash/internal/model"
)

// DefaultNewsLimit はニュースの最大取得件数。
const DefaultNewsLimit = 10

// DefaultProviderTimeout は各プロバイダ呼び出しの既定タイムアウト。
const DefaultProviderTimeout = 8 * time.Second

// コンテンツ種別のキー。大文字小文字は区別しない。
const (
	ContentPrices    = "prices"
	ContentNews      = "news"
	ContentInsight   = "insight"
	ContentInsightAI = "ai"
	ContentMeme      = "meme"
)

// ニュース取得失敗時に差し込む代替アイテム。
const (
	NewsUnavailableID     = model.ItemPrefixNews + "unavailable"
	newsUnavailableTitle  = "News is temporarily unavailable"
	newsUnavailableSource = "system"
)

// PreferenceFinder はユーザー設定を取得する。
type PreferenceFinder interface {
	FindByUserID(ctx context.Context, userID string) (*model.Preference, error)
}

// PriceProvider はコイン価格を取得する。
type PriceProvider interface {
	FetchPrices(ctx context.Context, coinIDs []string) ([]model.PriceItem, error)
}

// NewsProvider はニュース見出しを取得する。
type NewsProvider interface {
	FetchNews(ctx context.Context, coinIDs []string, limit int) ([]model.NewsItem, error)
}

// InsightProvider は当日のインサイトを返す。
type InsightProvider interface {
	Today(ctx context.Context, userID string, pref *model.Preference) (*model.DailyInsight, error)
}

// MemeProvider はミームを1件返す。
type MemeProvider interface {
	Random() model.MemeItem
}

// VoteLookup は指定キーに対する本人の投票をまとめて取得する。
type VoteLookup interface {
	Lookup(ctx context.Context, userID string, keys []model.VoteKey) (map[model.VoteKey]model.VoteValue, error)
}

// Config はAggregatorの設定。
type Config struct {
	ProviderTimeout time.Duration
	NewsLimit       int
}

// Aggregator はダッシュボードの各セクションを集約する。
type Aggregator struct {
	prefs   PreferenceFinder
	prices  PriceProvider
	news    NewsProvider
	insight InsightProvider
	meme    MemeProvider
	votes   VoteLookup
	logger  *slog.Logger
	config  Config
	now     func() time.Time
}

// NewAggregator はAggregatorの新しいインスタンスを生成する。
func NewAggregator(
	prefs PreferenceFinder,
	prices PriceProvider,
	news NewsProvider,
	insight InsightProvider,
	meme MemeProvider,
	votes VoteLookup,
	logger *slog.Logger,
	config Config,
) *Aggregator {
	if config.ProviderTimeout <= 0 {
		config.ProviderTimeout = DefaultProviderTimeout
	}
	if config.NewsLimit <= 0 {
		config.NewsLimit = DefaultNewsLimit
	}
	return &Aggregator{
		prefs:   prefs,
		prices:  prices,
		news:    news,
		insight: insight,
		meme:    meme,
		votes:   votes,
		logger:  logger,
		config:  config,
		now:     time.Now,
	}
}

// EnabledSections は設定のコンテンツ種別から有効なセクションを判定する。
// 未知のキーは無視する。
func EnabledSections(contentTypes []string) map[model.Section]bool {
	enabled := make(map[model.Section]bool, 4)
	for _, ct := range contentTypes {
		switch strings.ToLower(strings.TrimSpace(ct)) {
		case ContentPrices:
			enabled[model.SectionPrices] = true
		case ContentNews:
			enabled[model.SectionNews] = true
		case ContentInsight, ContentInsightAI:
			enabled[model.SectionInsight] = true
		case ContentMeme:
			enabled[model.SectionMeme] = true
		}
	}
	return enabled
}

// Build はユーザーのダッシュボードを組み立てる。
// 設定が無い場合はONBOARDING_INCOMPLETEを返す。プロバイダの失敗はセクション単位で劣化させ、
// 全体のエラーにはしない。投票の取得失敗はストレージ障害としてエラーを返す。
func (a *Aggregator) Build(ctx context.Context, userID string) (*model.Sections, error) {
	pref, err := a.prefs.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("設定の取得に失敗しました: %w", err)
	}
	if pref == nil {
		return nil, model.NewOnboardingIncompleteError()
	}

	assets := pref.Assets
	if assets == nil {
		assets = []string{}
	}
	enabled := EnabledSections(pref.ContentTypes)

	sections := &model.Sections{
		News:   []model.NewsItem{},
		Prices: []model.PriceItem{},
	}

	var wg sync.WaitGroup
	if enabled[model.SectionPrices] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sections.Prices = a.fetchPrices(ctx, userID, assets)
		}()
	}
	if enabled[model.SectionNews] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sections.News = a.fetchNews(ctx, userID, assets)
		}()
	}
	if enabled[model.SectionInsight] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sections.Insight = a.fetchInsight(ctx, userID, pref)
		}()
	}
	if enabled[model.SectionMeme] {
		m := a.meme.Random()
		sections.Meme = &m
	}
	wg.Wait()

	if err := a.attachVotes(ctx, userID, sections); err != nil {
		return nil, err
	}
	return sections, nil
}

func (a *Aggregator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.config.ProviderTimeout)
}

func (a *Aggregator) fetchPrices(ctx context.Context, userID string, assets []string) []model.PriceItem {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	items, err := a.prices.FetchPrices(ctx, assets)
	if err != nil {
		a.logger.Warn("価格の取得に失敗したためセクションを省略します",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return []model.PriceItem{}
	}
	if items == nil {
		return []model.PriceItem{}
	}
	return items
}

func (a *Aggregator) fetchNews(ctx context.Context, userID string, assets []string) []model.NewsItem {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	items, err := a.news.FetchNews(ctx, assets, a.config.NewsLimit)
	if err != nil {
		a.logger.Warn("ニュースの取得に失敗したため代替アイテムを返します",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return []model.NewsItem{a.newsUnavailable()}
	}
	if items == nil {
		return []model.NewsItem{}
	}
	if len(items) > a.config.NewsLimit {
		items = items[:a.config.NewsLimit]
	}
	return items
}

func (a *Aggregator) newsUnavailable() model.NewsItem {
	return model.NewsItem{
		ItemID:      NewsUnavailableID,
		Title:       newsUnavailableTitle,
		Source:      newsUnavailableSource,
		PublishedAt: a.now().UTC().Format(time.RFC3339),
	}
}

func (a *Aggregator) fetchInsight(ctx context.Context, userID string, pref *model.Preference) *model.InsightItem {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	insight, err := a.insight.Today(ctx, userID, pref)
	if err != nil || insight == nil {
		if err != nil {
			a.logger.Error("インサイトの取得に失敗しました",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}
	return &model.InsightItem{
		ItemID: model.ItemPrefixInsight + insight.Date,
		Date:   insight.Date,
		Text:   insight.Text,
	}
}

// attachVotes は全アイテムのキーで1回だけ投票を取得し、完全一致で付与する。
func (a *Aggregator) attachVotes(ctx context.Context, userID string, s *model.Sections) error {
	keys := CollectKeys(s)
	if len(keys) == 0 {
		return nil
	}

	votes, err := a.votes.Lookup(ctx, userID, keys)
	if err != nil {
		return fmt.Errorf("投票の取得に失敗しました: %w", err)
	}

	lookup := func(section model.Section, itemID string) *model.VoteValue {
		if v, ok := votes[model.VoteKey{Section: section, ItemID: itemID}]; ok {
			return &v
		}
		return nil
	}

	for i := range s.Prices {
		s.Prices[i].MyVote = lookup(model.SectionPrices, s.Prices[i].ItemID)
	}
	for i := range s.News {
		s.News[i].MyVote = lookup(model.SectionNews, s.News[i].ItemID)
	}
	if s.Insight != nil {
		s.Insight.MyVote = lookup(model.SectionInsight, s.Insight.ItemID)
	}
	if s.Meme != nil {
		s.Meme.MyVote = lookup(model.SectionMeme, s.Meme.ItemID)
	}
	return nil
}

// CollectKeys は集約結果に含まれる全アイテムの(section, itemId)を返す。
func CollectKeys(s *model.Sections) []model.VoteKey {
	keys := make([]model.VoteKey, 0, len(s.Prices)+len(s.News)+2)
	for _, p := range s.Prices {
		keys = append(keys, model.VoteKey{Section: model.SectionPrices, ItemID: p.ItemID})
	}
	for _, n := range s.News {
		keys = append(keys, model.VoteKey{Section: model.SectionNews, ItemID: n.ItemID})
	}
	if s.Insight != nil {
		keys = append(keys, model.VoteKey{Section: model.SectionInsight, ItemID: s.Insight.ItemID})
	}
	if s.Meme != nil {
		keys = append(keys, model.VoteKey{Section: model.SectionMeme, ItemID: s.Meme.ItemID})
	}
	return keys
}
