// Package provider は外部コンテンツプロバイダへのHTTP呼び出しの共通処理を提供する。
// ステータス判定、レスポンスサイズ制限、メトリクス記録を各クライアントで共有する。
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/cryptodash/internal/metrics"
)

// DefaultMaxResponseSize はレスポンスボディの既定上限（2MB）。
const DefaultMaxResponseSize int64 = 2 * 1024 * 1024

// UserAgent は外部プロバイダへのリクエストに付与するUser-Agent。
const UserAgent = "Cryptodash/1.0"

// 失敗理由のラベル。
const (
	ReasonTimeout    = "timeout"
	ReasonNetwork    = "network"
	ReasonHTTPStatus = "http_status"
	ReasonTooLarge   = "too_large"
	ReasonParse      = "parse"
)

// ErrResponseTooLarge はレスポンスボディが上限を超えた場合のエラー。
var ErrResponseTooLarge = errors.New("レスポンスサイズが上限を超えています")

// StatusError はプロバイダが200以外のステータスを返した場合のエラー。
type StatusError struct {
	Provider   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%sがステータス %d を返しました", e.Provider, e.StatusCode)
}

// Caller は1つのプロバイダへのHTTP呼び出しを実行する。
type Caller struct {
	name            string
	httpClient      *http.Client
	logger          *slog.Logger
	metrics         metrics.MetricsCollector
	maxResponseSize int64
}

// NewCaller はCallerの新しいインスタンスを生成する。
// mcがnilの場合はメトリクスを記録しない。maxResponseSizeが0以下の場合は既定値を使う。
func NewCaller(name string, httpClient *http.Client, logger *slog.Logger, mc metrics.MetricsCollector, maxResponseSize int64) *Caller {
	if mc == nil {
		mc = metrics.NopCollector{}
	}
	if maxResponseSize <= 0 {
		maxResponseSize = DefaultMaxResponseSize
	}
	return &Caller{
		name:            name,
		httpClient:      httpClient,
		logger:          logger,
		metrics:         mc,
		maxResponseSize: maxResponseSize,
	}
}

// Name はプロバイダ名を返す。
func (c *Caller) Name() string {
	return c.name
}

// Logger はプロバイダ名を付与したロガーを返す。
func (c *Caller) Logger() *slog.Logger {
	return c.logger.With(slog.String("provider", c.name))
}

// Do はリクエストを1回だけ実行し、200の場合にボディを返す。
// リトライは行わない。失敗はすべてメトリクスとログに記録する。
func (c *Caller) Do(req *http.Request) ([]byte, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		reason := ReasonNetwork
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(req.Context().Err(), context.DeadlineExceeded) {
			reason = ReasonTimeout
		}
		c.metrics.RecordProviderFailure(c.name, reason)
		c.logger.Error("外部プロバイダの呼び出しに失敗しました",
			slog.String("provider", c.name),
			slog.String("reason", reason),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%sの呼び出しに失敗しました: %w", c.name, err)
	}
	defer resp.Body.Close()

	c.metrics.RecordHTTPStatus(c.name, resp.StatusCode)
	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordProviderFailure(c.name, ReasonHTTPStatus)
		c.logger.Error("外部プロバイダがエラーステータスを返しました",
			slog.String("provider", c.name),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, &StatusError{Provider: c.name, StatusCode: resp.StatusCode}
	}

	// 上限+1バイトまで読み、超過を検出する
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize+1))
	if err != nil {
		c.metrics.RecordProviderFailure(c.name, ReasonNetwork)
		c.logger.Error("レスポンスボディの読み取りに失敗しました",
			slog.String("provider", c.name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}
	if int64(len(body)) > c.maxResponseSize {
		c.metrics.RecordProviderFailure(c.name, ReasonTooLarge)
		c.logger.Error("レスポンスサイズが上限を超えました",
			slog.String("provider", c.name),
			slog.Int64("max_bytes", c.maxResponseSize),
		)
		return nil, ErrResponseTooLarge
	}

	c.metrics.RecordProviderLatency(c.name, time.Since(start))
	return body, nil
}

// Succeeded はレスポンスの解釈まで成功したことを記録する。
func (c *Caller) Succeeded() {
	c.metrics.RecordProviderSuccess(c.name)
}

// ParseFailed はレスポンスの解釈に失敗したことを記録する。
func (c *Caller) ParseFailed(err error) {
	c.metrics.RecordProviderFailure(c.name, ReasonParse)
	c.logger.Error("外部プロバイダのレスポンスのパースに失敗しました",
		slog.String("provider", c.name),
		slog.String("error", err.Error()),
	)
}
