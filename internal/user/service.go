// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/cryptodash/internal/model"
	"github.com/hitoshi/cryptodash/internal/repository"
)

// VoteDeleter は投票の一括削除インターフェース。
type VoteDeleter interface {
	DeleteByUserID(ctx context.Context, userID string) error
}

// InsightDeleter は日次インサイトの一括削除インターフェース。
type InsightDeleter interface {
	DeleteByUserID(ctx context.Context, userID string) error
}

// PreferenceFinder はオンボーディング状態判定用の設定取得インターフェース。
type PreferenceFinder interface {
	FindByUserID(ctx context.Context, userID string) (*model.Preference, error)
}

// Profile は /api/me のレスポンスに相当するユーザー情報。
type Profile struct {
	User                *model.User
	OnboardingCompleted bool
}

// Service はユーザー管理のサービス層。
// プロフィール取得と退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo       repository.UserRepository
	prefFinder     PreferenceFinder
	voteDeleter    VoteDeleter
	insightDeleter InsightDeleter
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	prefFinder PreferenceFinder,
	voteDeleter VoteDeleter,
	insightDeleter InsightDeleter,
) *Service {
	return &Service{
		userRepo:       userRepo,
		prefFinder:     prefFinder,
		voteDeleter:    voteDeleter,
		insightDeleter: insightDeleter,
	}
}

// Me はユーザー情報とオンボーディング完了状態を返す。
// 設定レコードが存在すればオンボーディング完了とみなす。
func (s *Service) Me(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	pref, err := s.prefFinder.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("設定の取得に失敗しました: %w", err)
	}

	return &Profile{User: user, OnboardingCompleted: pref != nil}, nil
}

// Withdraw はユーザーの退会処理を実行する。
// 削除順序: votes → daily_insights → user（+ CASCADE: preferences）
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	slog.Info("退会処理を開始します",
		slog.String("user_id", userID),
	)

	// 1. 投票を削除
	if s.voteDeleter != nil {
		if err := s.voteDeleter.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("投票の削除に失敗しました: %w", err)
		}
	}

	// 2. 日次インサイトを削除
	if s.insightDeleter != nil {
		if err := s.insightDeleter.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("インサイトの削除に失敗しました: %w", err)
		}
	}

	// 3. ユーザーを削除（preferencesはCASCADE削除）
	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", userID),
	)

	return nil
}
