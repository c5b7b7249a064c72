// Package openrouter はOpenRouterのチャット補完APIを使ったインサイト生成クライアントを提供する。
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/hitoshi/cryptodash/internal/model"
	"github.com/hitoshi/cryptodash/internal/provider"
)

const (
	// ProviderName はメトリクスとログで使うプロバイダ名。
	ProviderName = "openrouter"
	// DefaultBaseURL はOpenRouter APIのベースURL。
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// DefaultModel は既定のモデル。
	DefaultModel = "deepseek/deepseek-r1:free"

	temperature    = 0.4
	maxTokens      = 220
	maxPromptAsset = 8

	systemPrompt = "You are an AI crypto advisor. Be cautious: no financial advice. " +
		"Provide general educational insight only. Be concise (3-5 bullets). " +
		"Mention risks. No price predictions."
)

// ErrEmptyCompletion はモデルが本文を返さなかった場合のエラー。
var ErrEmptyCompletion = errors.New("AIの応答が空です")

// Config はOpenRouterクライアントの設定。
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	SiteURL string // HTTP-Refererヘッダー（任意）
	AppName string // X-Titleヘッダー（任意）
}

// Client はOpenRouterでインサイト本文を生成するクライアント。
type Client struct {
	caller *provider.Caller
	cfg    Config
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(caller *provider.Caller, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Client{caller: caller, cfg: cfg}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// Generate はプロフィールに合わせた日次インサイトの本文を生成する。
// APIキーが未設定の場合は固定のプレースホルダーを正常な結果として返す。
func (c *Client) Generate(ctx context.Context, prompt model.InsightPrompt) (string, error) {
	if c.cfg.APIKey == "" {
		return Placeholder(prompt), nil
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: UserPrompt(prompt)},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("リクエストJSONの生成に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.SiteURL != "" {
		req.Header.Set("HTTP-Referer", c.cfg.SiteURL)
	}
	if c.cfg.AppName != "" {
		req.Header.Set("X-Title", c.cfg.AppName)
	}

	body, err := c.caller.Do(req)
	if err != nil {
		return "", err
	}

	content := gjson.GetBytes(body, "choices.0.message.content")
	if content.Type != gjson.String || strings.TrimSpace(content.String()) == "" {
		c.caller.ParseFailed(ErrEmptyCompletion)
		return "", ErrEmptyCompletion
	}

	c.caller.Succeeded()
	return strings.TrimSpace(content.String()), nil
}

// Placeholder はAPIキー未設定時に返す本文。
func Placeholder(prompt model.InsightPrompt) string {
	return fmt.Sprintf("No AI key configured. (Placeholder insight for %s on %s)", investorType(prompt), prompt.Date)
}

// UserPrompt はユーザーメッセージを組み立てる。
func UserPrompt(prompt model.InsightPrompt) string {
	assets := prompt.Assets
	if len(assets) > maxPromptAsset {
		assets = assets[:maxPromptAsset]
	}
	assetText := strings.Join(assets, ", ")
	if assetText == "" {
		assetText = "N/A"
	}

	return fmt.Sprintf("Date: %s\nInvestor type: %s\nAssets: %s\n\n"+
		"Write a short daily insight tailored to this profile. Format: 3-5 bullet points. "+
		"Include 1 risk warning. Avoid hype. No “buy/sell”.",
		prompt.Date, investorType(prompt), assetText)
}

func investorType(prompt model.InsightPrompt) string {
	if strings.TrimSpace(prompt.InvestorType) == "" {
		return "Unknown"
	}
	return prompt.InvestorType
}
