// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 外部プロバイダクライアントやサービス層から利用する。
type MetricsCollector interface {
	RecordProviderSuccess(provider string)
	RecordProviderFailure(provider string, reason string)
	RecordProviderLatency(provider string, duration time.Duration)
	RecordHTTPStatus(provider string, statusCode int)
	RecordInsightCache(hit bool)
	RecordInsightFallback()
	RecordVote(section string, cleared bool)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	providerSuccess *prometheus.CounterVec
	providerFail    *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	httpStatus      *prometheus.CounterVec
	insightCache    *prometheus.CounterVec
	insightFallback prometheus.Counter
	votes           *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		providerSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptodash_provider_success_total",
			Help: "外部プロバイダ呼び出し成功の合計数",
		}, []string{"provider"}),
		providerFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptodash_provider_fail_total",
			Help: "外部プロバイダ呼び出し失敗の合計数",
		}, []string{"provider", "reason"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cryptodash_provider_latency_seconds",
			Help:    "外部プロバイダ呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptodash_provider_http_status_total",
			Help: "外部プロバイダのHTTPステータスコード別レスポンス数",
		}, []string{"provider", "status_code"}),
		insightCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptodash_insight_cache_total",
			Help: "日次インサイトのキャッシュ参照結果",
		}, []string{"result"}),
		insightFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cryptodash_insight_fallback_total",
			Help: "代替テキストで応答した日次インサイトの合計数",
		}),
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cryptodash_votes_total",
			Help: "セクション別の投票操作数",
		}, []string{"section", "action"}),
	}

	reg.MustRegister(
		c.providerSuccess,
		c.providerFail,
		c.providerLatency,
		c.httpStatus,
		c.insightCache,
		c.insightFallback,
		c.votes,
	)

	return c
}

// RecordProviderSuccess はプロバイダ呼び出し成功を記録する。
func (c *Collector) RecordProviderSuccess(provider string) {
	c.providerSuccess.WithLabelValues(provider).Inc()
}

// RecordProviderFailure はプロバイダ呼び出し失敗を記録する。
func (c *Collector) RecordProviderFailure(provider string, reason string) {
	c.providerFail.WithLabelValues(provider, reason).Inc()
}

// RecordProviderLatency はプロバイダ呼び出しのレイテンシを記録する。
func (c *Collector) RecordProviderLatency(provider string, duration time.Duration) {
	c.providerLatency.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordHTTPStatus はプロバイダのHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(provider string, statusCode int) {
	c.httpStatus.WithLabelValues(provider, strconv.Itoa(statusCode)).Inc()
}

// RecordInsightCache は日次インサイトのキャッシュヒット/ミスを記録する。
func (c *Collector) RecordInsightCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.insightCache.WithLabelValues(result).Inc()
}

// RecordInsightFallback は代替テキストでの応答を記録する。
func (c *Collector) RecordInsightFallback() {
	c.insightFallback.Inc()
}

// RecordVote は投票の設定またはクリアを記録する。
func (c *Collector) RecordVote(section string, cleared bool) {
	action := "set"
	if cleared {
		action = "clear"
	}
	c.votes.WithLabelValues(section, action).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// NopCollector は何も記録しないMetricsCollector。テストやメトリクス無効時に使う。
type NopCollector struct{}

func (NopCollector) RecordProviderSuccess(string)                {}
func (NopCollector) RecordProviderFailure(string, string)        {}
func (NopCollector) RecordProviderLatency(string, time.Duration) {}
func (NopCollector) RecordHTTPStatus(string, int)                {}
func (NopCollector) RecordInsightCache(bool)                     {}
func (NopCollector) RecordInsightFallback()                      {}
func (NopCollector) RecordVote(string, bool)                     {}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)
