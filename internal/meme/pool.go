// Package meme はダッシュボードに表示するミームのプールを提供する。
package meme

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/hitoshi/cryptodash/internal/model"
)

// builtinPool は設定ファイルが無い場合に使う組み込みのミーム。
var builtinPool = []model.MemeItem{
	{ItemID: model.ItemPrefixMeme + "meme1", Title: "meme1", ImageURL: "https://web3.career/rails/active_storage/representations/proxy/eyJfcmFpbHMiOnsibWVzc2FnZSI6IkJBaHBBeVJOQWc9PSIsImV4cCI6bnVsbCwicHVyIjoiYmxvYl9pZCJ9fQ==--6b7470babffc39c8ae519b40f572e2fd4c3ed6a2/eyJfcmFpbHMiOnsibWVzc2FnZSI6IkJBaDdCem9MWm05eWJXRjBTU0lKYW5CbFp3WTZCa1ZVT2hSeVpYTnBlbVZmZEc5ZmJHbHRhWFJiQjJrQ0FBUnBBZ0FEIiwiZXhwIjpudWxsLCJwdXIiOiJ2YXJpYXRpb24ifX0=--bc95f1a645ed62d5320c353527cf266f294f1a71/remember%20all%20of%20that%20money%20we%20saved%20for%20the%20house.jpeg"},
	{ItemID: model.ItemPrefixMeme + "meme2", Title: "meme2", ImageURL: "https://web3.career/rails/active_storage/representations/proxy/eyJfcmFpbHMiOnsibWVzc2FnZSI6IkJBaHBBelZMQWc9PSIsImV4cCI6bnVsbCwicHVyIjoiYmxvYl9pZCJ9fQ==--3196ecb4f0aab7940872d67c96fff786d17fa261/eyJfcmFpbHMiOnsibWVzc2FnZSI6IkJBaDdCem9MWm05eWJXRjBTU0lJY0c1bkJqb0dSVlE2RkhKbGMybDZaVjkwYjE5c2FXMXBkRnNIYVFJQUJHa0NBQU09IiwiZXhwIjpudWxsLCJwdXIiOiJ2YXJpYXRpb24ifX0=--7512606fd1fa5b2ea27d1bd4c5f8aea3534c6eef/should%20I%20sell%20bitcoin.png"},
	{ItemID: model.ItemPrefixMeme + "meme3", Title: "meme3", ImageURL: "https://web3.career/rails/active_storage/representations/proxy/eyJfcmFpbHMiOnsibWVzc2FnZSI6IkJBaHBBMlhpQVE9PSIsImV4cCI6bnVsbCwicHVyIjoiYmxvYl9pZCJ9fQ==--43eae5f1dacd2d0d7eabacfcad73c45183e18295/eyJfcmFpbHMiOnsibWVzc2FnZSI6IkJBaDdCem9MWm05eWJXRjBTU0lJYW5CbkJqb0dSVlE2RkhKbGMybDZaVjkwYjE5c2FXMXBkRnNIYVFJQUJHa0NBQU09IiwiZXhwIjpudWxsLCJwdXIiOiJ2YXJpYXRpb24ifX0=--a22b0b81a52a2358112baff10d5dd874340abd9e/trading%20crypto.jpg"},
	{ItemID: model.ItemPrefixMeme + "meme4", Title: "meme4", ImageURL: "https://web3.career/rails/active_storage/representations/proxy/eyJfcmFpbHMiOnsibWVzc2FnZSI6IkJBaHBBd0VMQWc9PSIsImV4cCI6bnVsbCwicHVyIjoiYmxvYl9pZCJ9fQ==--c4bba20911f9431954eb6da34eff5996808cb240/eyJfcmFpbHMiOnsibWVzc2FnZSI6IkJBaDdCem9MWm05eWJXRjBTU0lJYW5CbkJqb0dSVlE2RkhKbGMybDZaVjkwYjE5c2FXMXBkRnNIYVFJQUJHa0NBQU09IiwiZXhwIjpudWxsLCJwdXIiOiJ2YXJpYXRpb24ifX0=--a22b0b81a52a2358112baff10d5dd874340abd9e/hodl%202025.jpg"},
	{ItemID: model.ItemPrefixMeme + "meme5", Title: "meme5", ImageURL: "https://lh7-us.googleusercontent.com/-LJUlX8BecLgbjFp8cvKpFCNu8l-8vH8GIESyDISlKZrmT0FW9nwR7wHja4y4tq2XeA0ac348DTWZXV3QycCH-n6vwWji0bAimDW0s6UPeAJyQgRcY0utp_mVdpwPzyH5ipVLNE-_P62O3kjyU0Eeno"},
}

// ImageURLValidator はミーム画像URLの安全性を検証する。
type ImageURLValidator interface {
	ValidateImageURL(rawURL string) error
}

// Pool は起動時に読み込んだミームから1件を一様ランダムに選ぶ。
// 外部呼び出しを伴わないため常に成功する。
type Pool struct {
	items []model.MemeItem
	intn  func(n int) int // math/rand/v2のトップレベル関数は並行利用に対して安全
}

// NewPool は指定ミームでPoolを生成する。itemsが空の場合は組み込みプールを使う。
func NewPool(items []model.MemeItem) *Pool {
	if len(items) == 0 {
		items = builtinPool
	}
	copied := make([]model.MemeItem, len(items))
	copy(copied, items)
	return &Pool{items: copied, intn: rand.IntN}
}

// Random はプールから1件を返す。MyVoteは常にnil。
func (p *Pool) Random() model.MemeItem {
	item := p.items[p.intn(len(p.items))]
	item.MyVote = nil
	return item
}

// Len はプール内のミーム数を返す。
func (p *Pool) Len() int {
	return len(p.items)
}

// fileEntry はミーム定義ファイルの1要素。
type fileEntry struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
}

// LoadFile はJSON配列形式のミーム定義ファイルを読み込む。
// 画像URLが検証に通らない要素や重複IDはログに記録して除外する。
// 有効な要素が1件も無い場合はエラーを返す。
func LoadFile(path string, validator ImageURLValidator, logger *slog.Logger) ([]model.MemeItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ミーム定義ファイルの読み込みに失敗しました: %w", err)
	}

	var entries []fileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("ミーム定義ファイルのパースに失敗しました: %w", err)
	}

	seen := make(map[string]struct{}, len(entries))
	items := make([]model.MemeItem, 0, len(entries))
	for _, e := range entries {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			logger.Warn("IDが空のミームを除外しました", slog.String("image_url", e.ImageURL))
			continue
		}
		if _, dup := seen[id]; dup {
			logger.Warn("重複したIDのミームを除外しました", slog.String("meme_id", id))
			continue
		}
		if err := validator.ValidateImageURL(e.ImageURL); err != nil {
			logger.Warn("画像URLが不正なミームを除外しました",
				slog.String("meme_id", id),
				slog.String("error", err.Error()),
			)
			continue
		}
		seen[id] = struct{}{}

		title := strings.TrimSpace(e.Title)
		if title == "" {
			title = id
		}
		items = append(items, model.MemeItem{
			ItemID:   model.ItemPrefixMeme + id,
			Title:    title,
			ImageURL: e.ImageURL,
		})
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("有効なミームがありません: %s", path)
	}
	return items, nil
}
