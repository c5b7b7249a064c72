// Package preference はダッシュボード設定（オンボーディング）のドメインロジックを提供する。
package preference

import (
	"context"
	"fmt"
	"strings"

	"github.com/hitoshi/cryptodash/internal/model"
	"github.com/hitoshi/cryptodash/internal/repository"
)

// Service は設定の保存と取得を行うサービス層。
type Service struct {
	repo repository.PreferenceRepository
}

// NewService はServiceを生成する。
func NewService(repo repository.PreferenceRepository) *Service {
	return &Service{repo: repo}
}

// Save は設定を検証してuser_idをキーにUPSERTする。
// 各要素は前後の空白を除去し、assetsはCoinGeckoのID形式に合わせて小文字化する。
func (s *Service) Save(ctx context.Context, userID string, assets []string, investorType string, contentTypes []string) (*model.Preference, error) {
	normAssets, err := normalizeList("assets", assets, true)
	if err != nil {
		return nil, err
	}
	normTypes, err := normalizeList("contentTypes", contentTypes, false)
	if err != nil {
		return nil, err
	}
	investorType = strings.TrimSpace(investorType)
	if investorType == "" {
		return nil, model.NewValidationError("investorType is required")
	}

	saved, err := s.repo.Upsert(ctx, &model.Preference{
		UserID:       userID,
		Assets:       normAssets,
		InvestorType: investorType,
		ContentTypes: normTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("設定の保存に失敗しました: %w", err)
	}
	return saved, nil
}

// Load は保存済みの設定を返す。未保存の場合はPREFERENCE_NOT_FOUNDを返す。
func (s *Service) Load(ctx context.Context, userID string) (*model.Preference, error) {
	pref, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("設定の取得に失敗しました: %w", err)
	}
	if pref == nil {
		return nil, model.NewPreferenceNotFoundError()
	}
	return pref, nil
}

func normalizeList(field string, in []string, lower bool) ([]string, error) {
	if len(in) == 0 {
		return nil, model.NewValidationError(field + " must not be empty")
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, model.NewValidationError(field + " must not contain empty values")
		}
		if lower {
			v = strings.ToLower(v)
		}
		out = append(out, v)
	}
	return out, nil
}
