// Package insight はユーザーごと・暦日ごとのAIインサイトの生成とキャッシュを提供する。
package insight

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/cryptodash/internal/metrics"
	"github.com/hitoshi/cryptodash/internal/model"
	"github.com/hitoshi/cryptodash/internal/repository"
)

// Generator はAIプロバイダによる本文生成のインターフェース。
type Generator interface {
	Generate(ctx context.Context, prompt model.InsightPrompt) (string, error)
}

// Service は日次インサイトのキャッシュ参照・生成・保存を行う。
type Service struct {
	repo      repository.InsightRepository
	generator Generator
	sanitizer Sanitizer
	metrics   metrics.MetricsCollector
	logger    *slog.Logger
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.InsightRepository, generator Generator, sanitizer Sanitizer, mc metrics.MetricsCollector, logger *slog.Logger) *Service {
	if mc == nil {
		mc = metrics.NopCollector{}
	}
	return &Service{
		repo:      repo,
		generator: generator,
		sanitizer: sanitizer,
		metrics:   mc,
		logger:    logger,
		now:       time.Now,
	}
}

// Today は当日（UTC）のインサイトを返す。
// 保存済みであればそのまま返し、未保存ならAIで生成・整形して保存する。
// 生成に失敗した場合は固定テキストを返し、保存しないため次回のリクエストで再生成される。
// 同日に同時に生成された場合も最初に保存されたテキストを返す。
func (s *Service) Today(ctx context.Context, userID string, pref *model.Preference) (*model.DailyInsight, error) {
	date := s.now().UTC().Format(model.InsightDateLayout)

	cached, err := s.repo.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("インサイトキャッシュの参照に失敗しました: %w", err)
	}
	if cached != nil {
		s.metrics.RecordInsightCache(true)
		return cached, nil
	}
	s.metrics.RecordInsightCache(false)

	raw, err := s.generator.Generate(ctx, PromptFor(pref, date))
	if err != nil {
		s.metrics.RecordInsightFallback()
		s.logger.Warn("インサイトの生成に失敗したため固定テキストを返します",
			slog.String("user_id", userID),
			slog.String("date", date),
			slog.String("error", err.Error()),
		)
		return &model.DailyInsight{
			UserID:   userID,
			Date:     date,
			Text:     FallbackText,
			Fallback: true,
		}, nil
	}

	generated := &model.DailyInsight{
		UserID:    userID,
		Date:      date,
		Text:      Normalize(raw, s.sanitizer),
		CreatedAt: s.now().UTC(),
	}
	stored, err := s.repo.InsertIfAbsent(ctx, generated)
	if err != nil {
		return nil, fmt.Errorf("インサイトの保存に失敗しました: %w", err)
	}
	return stored, nil
}

// PromptFor は設定からAIプロバイダへの入力を組み立てる。
func PromptFor(pref *model.Preference, date string) model.InsightPrompt {
	prompt := model.InsightPrompt{Date: date}
	if pref != nil {
		prompt.Assets = pref.Assets
		prompt.InvestorType = pref.InvestorType
		prompt.ContentTypes = pref.ContentTypes
	}
	return prompt
}
