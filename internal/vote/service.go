// Package vote はダッシュボードアイテムへの投票のドメインロジックを提供する。
package vote

import (
	"context"
	"fmt"

	"github.com/hitoshi/cryptodash/internal/metrics"
	"github.com/hitoshi/cryptodash/internal/model"
	"github.com/hitoshi/cryptodash/internal/repository"
)

// Service は投票の設定・取消・一括参照を行うサービス層。
type Service struct {
	repo    repository.VoteRepository
	metrics metrics.MetricsCollector
}

// NewService はServiceを生成する。mcがnilの場合はメトリクスを記録しない。
func NewService(repo repository.VoteRepository, mc metrics.MetricsCollector) *Service {
	if mc == nil {
		mc = metrics.NopCollector{}
	}
	return &Service{repo: repo, metrics: mc}
}

// SetVote はリクエスト値を検証して投票をUPSERTし、保存後の行を返す。
// 同じアイテムへの再投票は値を上書きする。
func (s *Service) SetVote(ctx context.Context, userID, rawSection, rawItemID string, rawValue any) (*model.Vote, error) {
	key, err := parseKey(rawSection, rawItemID)
	if err != nil {
		return nil, err
	}
	value, err := ParseVoteValue(rawValue)
	if err != nil {
		return nil, err
	}

	vote, err := s.repo.Upsert(ctx, userID, key, value)
	if err != nil {
		return nil, fmt.Errorf("投票の保存に失敗しました: %w", err)
	}

	s.metrics.RecordVote(string(key.Section), false)
	return vote, nil
}

// ClearVote は投票を取り消す。投票が存在しない場合も成功とする。
func (s *Service) ClearVote(ctx context.Context, userID, rawSection, rawItemID string) error {
	key, err := parseKey(rawSection, rawItemID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID, key); err != nil {
		return fmt.Errorf("投票の取消に失敗しました: %w", err)
	}

	s.metrics.RecordVote(string(key.Section), true)
	return nil
}

// GetVote は指定キーの投票値を返す。未投票の場合はnil。
func (s *Service) GetVote(ctx context.Context, userID string, key model.VoteKey) (*model.VoteValue, error) {
	v, err := s.repo.FindByUserAndKey(ctx, userID, key)
	if err != nil {
		return nil, fmt.Errorf("投票の取得に失敗しました: %w", err)
	}
	if v == nil {
		return nil, nil
	}
	value := v.Value
	return &value, nil
}

// Lookup は指定キー群の投票を1回のクエリで取得し、キーから値へのマップで返す。
// keysが空の場合はストレージを参照しない。
func (s *Service) Lookup(ctx context.Context, userID string, keys []model.VoteKey) (map[model.VoteKey]model.VoteValue, error) {
	result := make(map[model.VoteKey]model.VoteValue, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	votes, err := s.repo.ListByKeys(ctx, userID, keys)
	if err != nil {
		return nil, fmt.Errorf("投票の一括取得に失敗しました: %w", err)
	}
	for _, v := range votes {
		result[v.Key()] = v.Value
	}
	return result, nil
}

func parseKey(rawSection, rawItemID string) (model.VoteKey, error) {
	section, err := ParseSection(rawSection)
	if err != nil {
		return model.VoteKey{}, err
	}
	itemID, err := ParseItemID(rawItemID)
	if err != nil {
		return model.VoteKey{}, err
	}
	return model.VoteKey{Section: section, ItemID: itemID}, nil
}
