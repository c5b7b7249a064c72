// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/cryptodash/internal/model"
)

// ErrDuplicateEmail はメールアドレスのUNIQUE制約違反を表す。
var ErrDuplicateEmail = errors.New("email already exists")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は正規化済みメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。メールアドレスが重複した場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するpreferences、votes、daily_insightsはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// PreferenceRepository はダッシュボード設定の永続化インターフェース。
type PreferenceRepository interface {
	// FindByUserID はユーザーの設定を取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.Preference, error)

	// Upsert はuser_idをキーに設定を作成または上書きし、保存後の値を返す。
	Upsert(ctx context.Context, pref *model.Preference) (*model.Preference, error)
}

// VoteRepository は投票データの永続化インターフェース。
// 投票は常に (user_id, section, item_id) の完全一致でのみ参照する。
type VoteRepository interface {
	// FindByUserAndKey は指定キーの投票を取得する。見つからない場合はnilを返す。
	FindByUserAndKey(ctx context.Context, userID string, key model.VoteKey) (*model.Vote, error)

	// ListByKeys は指定キー群に一致する投票だけを1クエリで取得する。
	// keysが空の場合はクエリを発行せず空スライスを返す。
	ListByKeys(ctx context.Context, userID string, keys []model.VoteKey) ([]*model.Vote, error)

	// Upsert は投票を冪等にUPSERTし、保存後の行を返す。
	Upsert(ctx context.Context, userID string, key model.VoteKey, value model.VoteValue) (*model.Vote, error)

	// Delete は指定キーの投票を削除する。存在しない場合もエラーにしない。
	Delete(ctx context.Context, userID string, key model.VoteKey) error

	// DeleteByUserID はユーザーの全投票を削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// InsightRepository は日次インサイトの永続化インターフェース。
type InsightRepository interface {
	// FindByUserAndDate は指定日（YYYY-MM-DD）のインサイトを取得する。見つからない場合はnilを返す。
	FindByUserAndDate(ctx context.Context, userID, date string) (*model.DailyInsight, error)

	// InsertIfAbsent は (user_id, insight_date) が未登録の場合のみ保存し、
	// 同時実行で先に保存された行を含めて永続化済みの行を返す。
	InsertIfAbsent(ctx context.Context, insight *model.DailyInsight) (*model.DailyInsight, error)

	// DeleteOlderThan はbeforeより前の日付のインサイトを削除し、削除件数を返す。
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)

	// DeleteByUserID はユーザーの全インサイトを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}
